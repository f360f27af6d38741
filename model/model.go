// Package model defines immutable rich text: plain text plus a set of tagged
// half-open character ranges. All offsets are counted in runes.
package model

import (
	"fmt"
	"slices"
	"unicode/utf8"
)

// TagKind distinguishes annotation types.
type TagKind uint8

const (
	KindBold TagKind = iota + 1
	KindItalic
	KindUnderline
	KindStrikethrough
	KindCode
	KindLink
	KindInline
)

var kindNames = map[TagKind]string{
	KindBold:          "bold",
	KindItalic:        "italic",
	KindUnderline:     "underline",
	KindStrikethrough: "strikethrough",
	KindCode:          "code",
	KindLink:          "link",
	KindInline:        "inline",
}

func (k TagKind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// ParseTagKind is the reverse of String.
func ParseTagKind(name string) (TagKind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// Tag is the payload of an annotation. Destination is set for links, Key for
// inline content.
type Tag struct {
	Kind        TagKind
	Destination string
	Key         string
}

var (
	Bold          = Tag{Kind: KindBold}
	Italic        = Tag{Kind: KindItalic}
	Underline     = Tag{Kind: KindUnderline}
	Strikethrough = Tag{Kind: KindStrikethrough}
	Code          = Tag{Kind: KindCode}
)

// Link creates link tag.
func Link(destination string) Tag {
	return Tag{Kind: KindLink, Destination: destination}
}

// Inline creates inline content tag. The annotated text is replaced by an
// inline object identified by key when rendered.
func Inline(key string) Tag {
	return Tag{Kind: KindInline, Key: key}
}

func (t Tag) String() string {
	switch t.Kind {
	case KindLink:
		return "link(" + t.Destination + ")"
	case KindInline:
		return "inline(" + t.Key + ")"
	default:
		return t.Kind.String()
	}
}

// Range is the half-open rune interval [Start, End).
type Range struct {
	Start, End int
}

func (r Range) Len() int {
	return r.End - r.Start
}

func (r Range) Empty() bool {
	return r.End <= r.Start
}

// Contains reports inclusive start, exclusive end membership.
func (r Range) Contains(offset int) bool {
	return r.Start <= offset && offset < r.End
}

// Overlaps reports non-empty intersection.
func (r Range) Overlaps(o Range) bool {
	return max(r.Start, o.Start) < min(r.End, o.End)
}

// Annotation is a tagged range.
type Annotation struct {
	Range
	Tag Tag
}

// RichText is immutable text with annotations. Create it with New or Builder.
type RichText struct {
	text        string
	runes       []rune
	annotations []Annotation
}

// New validates annotations against text and returns rich text. Ranges outside
// of text, overlapping link and inline content and partially overlapping
// inline content are reported as errors, nothing is clamped. Inline content
// stacked on the same range is allowed, the first one is shown.
func New(text string, annotations ...Annotation) (*RichText, error) {
	length := utf8.RuneCountInString(text)
	for i, a := range annotations {
		if a.Start < 0 || a.Start > a.End || a.End > length {
			return nil, &InvalidRangeError{Index: i, Range: a.Range, Length: length}
		}
	}
	for i, a := range annotations {
		if a.Tag.Kind == KindInline && a.Tag.Key == "" {
			return nil, fmt.Errorf("annotation %d: %w", i, ErrEmptyKey)
		}
	}
	for i, a := range annotations {
		if a.Tag.Kind != KindLink {
			continue
		}
		for j, b := range annotations {
			if b.Tag.Kind == KindInline && a.Overlaps(b.Range) {
				return nil, &ConflictError{Link: i, Inline: j, Range: Range{Start: max(a.Start, b.Start), End: min(a.End, b.End)}}
			}
		}
	}
	for i, a := range annotations {
		if a.Tag.Kind != KindInline {
			continue
		}
		for j := i + 1; j < len(annotations); j++ {
			b := annotations[j]
			if b.Tag.Kind == KindInline && b.Range != a.Range && a.Overlaps(b.Range) {
				return nil, &OverlapError{First: i, Second: j, Range: Range{Start: max(a.Start, b.Start), End: min(a.End, b.End)}}
			}
		}
	}
	return &RichText{
		text:        text,
		runes:       []rune(text),
		annotations: slices.Clone(annotations),
	}, nil
}

// Text returns underlying plain text.
func (rt *RichText) Text() string {
	return rt.text
}

// Len returns text length in runes.
func (rt *RichText) Len() int {
	return len(rt.runes)
}

// Annotations returns copy of annotations in input order.
func (rt *RichText) Annotations() []Annotation {
	return slices.Clone(rt.annotations)
}

// Slice returns text covered by range. Range must be valid.
func (rt *RichText) Slice(r Range) string {
	return string(rt.runes[r.Start:r.End])
}

// TagsAt returns tags of annotations containing offset, in input order.
func (rt *RichText) TagsAt(offset int) []Tag {
	var tags []Tag
	for _, a := range rt.annotations {
		if a.Contains(offset) {
			tags = append(tags, a.Tag)
		}
	}
	return tags
}
