// Package style defines visual attributes of text runs and the mapping from
// rich text formats to style deltas.
package style

import (
	"strings"
)

// Attr is a set of boolean text attributes.
type Attr uint8

const (
	Bold Attr = 1 << iota
	Italic
	Underline
	Strikethrough
	Monospace
	Medium // medium font weight, ignored when Bold is present
)

var attrNames = []struct {
	a    Attr
	name string
}{
	{Bold, "bold"},
	{Italic, "italic"},
	{Underline, "underline"},
	{Strikethrough, "strikethrough"},
	{Monospace, "monospace"},
	{Medium, "medium"},
}

func (a Attr) Has(f Attr) bool {
	return a&f == f
}

func (a Attr) String() string {
	if a == 0 {
		return "none"
	}
	var parts []string
	for _, n := range attrNames {
		if a.Has(n.a) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// Delta is a partial style contributed by a single format. Nil colors mean
// "inherit".
type Delta struct {
	Attrs      Attr
	Color      *Color
	Background *Color
}

// Style is a fully resolved style of a text run. Zero Background means no
// background.
type Style struct {
	Attrs      Attr
	Color      Color
	Background Color
}

// Apply layers delta on top of the style. Attributes accumulate, colors are
// replaced when the delta specifies them.
func (s Style) Apply(d Delta) Style {
	s.Attrs |= d.Attrs
	if d.Color != nil {
		s.Color = *d.Color
	}
	if d.Background != nil {
		s.Background = *d.Background
	}
	return s
}

func (s Style) String() string {
	var sb strings.Builder
	sb.WriteString(s.Attrs.String())
	sb.WriteString(" fg=")
	sb.WriteString(s.Color.String())
	if !s.Background.IsZero() {
		sb.WriteString(" bg=")
		sb.WriteString(s.Background.String())
	}
	return sb.String()
}

// StringStyle maps rich text formats to their deltas. A nil field falls back
// to Default after ResolveDefaults.
type StringStyle struct {
	Bold          *Delta
	Italic        *Delta
	Underline     *Delta
	Strikethrough *Delta
	Code          *Delta
	Link          *Delta
}

func colorRef(c Color) *Color {
	return &c
}

// Default is the style used for formats nobody configured.
var Default = StringStyle{
	Bold:          &Delta{Attrs: Bold},
	Italic:        &Delta{Attrs: Italic},
	Underline:     &Delta{Attrs: Underline},
	Strikethrough: &Delta{Attrs: Strikethrough},
	Code: &Delta{
		Attrs:      Monospace | Medium,
		Background: colorRef(LightGray.WithAlpha(0.5)),
	},
	Link: &Delta{
		Attrs: Underline,
		Color: colorRef(Blue),
	},
}

// ResolveDefaults returns copy of style with every unset format taken from
// Default.
func (s StringStyle) ResolveDefaults() StringStyle {
	pick := func(v, def *Delta) *Delta {
		if v != nil {
			return v
		}
		return def
	}
	return StringStyle{
		Bold:          pick(s.Bold, Default.Bold),
		Italic:        pick(s.Italic, Default.Italic),
		Underline:     pick(s.Underline, Default.Underline),
		Strikethrough: pick(s.Strikethrough, Default.Strikethrough),
		Code:          pick(s.Code, Default.Code),
		Link:          pick(s.Link, Default.Link),
	}
}

// Merge overrides fields of s with fields set in other.
func (s StringStyle) Merge(other StringStyle) StringStyle {
	over := func(v, o *Delta) *Delta {
		if o != nil {
			return o
		}
		return v
	}
	return StringStyle{
		Bold:          over(s.Bold, other.Bold),
		Italic:        over(s.Italic, other.Italic),
		Underline:     over(s.Underline, other.Underline),
		Strikethrough: over(s.Strikethrough, other.Strikethrough),
		Code:          over(s.Code, other.Code),
		Link:          over(s.Link, other.Link),
	}
}

// Key returns canonical textual form of the style suitable for use as part of
// a memoization key.
func (s StringStyle) Key() string {
	var sb strings.Builder
	for _, d := range []*Delta{s.Bold, s.Italic, s.Underline, s.Strikethrough, s.Code, s.Link} {
		if d == nil {
			sb.WriteString("-;")
			continue
		}
		sb.WriteString(d.Attrs.String())
		if d.Color != nil {
			sb.WriteString(",fg=")
			sb.WriteString(d.Color.String())
		}
		if d.Background != nil {
			sb.WriteString(",bg=")
			sb.WriteString(d.Background.String())
		}
		sb.WriteByte(';')
	}
	return sb.String()
}
