package model

import (
	"strings"
	"unicode/utf8"
)

// ObjectReplacement is used as text of inline content which has no
// alternate text.
const ObjectReplacement = "\uFFFC"

// Builder accumulates text and scoped formats. Zero value is ready to use.
type Builder struct {
	sb          strings.Builder
	length      int
	annotations []Annotation
	open        []int // indexes into annotations
}

// Len returns current text length in runes.
func (b *Builder) Len() int {
	return b.length
}

// Append adds plain text. Any pushed formats are extended over it.
func (b *Builder) Append(text string) *Builder {
	b.sb.WriteString(text)
	b.length += utf8.RuneCountInString(text)
	return b
}

// Push starts format at the current position. It stays open until the
// matching Pop.
func (b *Builder) Push(tag Tag) *Builder {
	b.annotations = append(b.annotations, Annotation{Range: Range{Start: b.length, End: b.length}, Tag: tag})
	b.open = append(b.open, len(b.annotations)-1)
	return b
}

// Pop closes the most recently pushed format. Pop without Push is ignored.
func (b *Builder) Pop() *Builder {
	if len(b.open) == 0 {
		return b
	}
	idx := b.open[len(b.open)-1]
	b.open = b.open[:len(b.open)-1]
	b.annotations[idx].End = b.length
	return b
}

// WithFormat applies tag to everything appended by fn.
func (b *Builder) WithFormat(tag Tag, fn func(*Builder)) *Builder {
	b.Push(tag)
	fn(b)
	return b.Pop()
}

// AppendInline adds inline content with alternate text, which is shown when
// nobody can render the object.
func (b *Builder) AppendInline(key, alternate string) *Builder {
	if alternate == "" {
		alternate = ObjectReplacement
	}
	return b.WithFormat(Inline(key), func(b *Builder) { b.Append(alternate) })
}

// Annotate adds annotation with explicit range, used for zero width markers
// and by converters which know offsets upfront.
func (b *Builder) Annotate(r Range, tag Tag) *Builder {
	b.annotations = append(b.annotations, Annotation{Range: r, Tag: tag})
	return b
}

// Build closes any formats still open and validates result.
func (b *Builder) Build() (*RichText, error) {
	for len(b.open) > 0 {
		b.Pop()
	}
	return New(b.sb.String(), b.annotations...)
}
