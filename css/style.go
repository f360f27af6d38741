package css

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"rtx/style"
)

// format names and their html aliases
var formats = map[string]string{
	"bold":          "bold",
	"b":             "bold",
	"strong":        "bold",
	"italic":        "italic",
	"i":             "italic",
	"em":            "italic",
	"underline":     "underline",
	"u":             "underline",
	"strikethrough": "strikethrough",
	"s":             "strikethrough",
	"del":           "strikethrough",
	"code":          "code",
	"link":          "link",
	"a":             "link",
}

var namedColors = map[string]style.Color{
	"transparent": style.Transparent,
	"black":       style.Black,
	"white":       style.White,
	"blue":        style.Blue,
	"red":         style.RGB(0xFF, 0, 0),
	"green":       style.RGB(0, 0x80, 0),
	"gray":        style.RGB(0x80, 0x80, 0x80),
	"grey":        style.RGB(0x80, 0x80, 0x80),
	"lightgray":   style.LightGray,
	"lightgrey":   style.LightGray,
}

// StringStyle converts stylesheet rules to format deltas. Rules are applied on
// top of default deltas, formats not mentioned in the stylesheet stay unset.
// Problems are logged as warnings and offending declarations are skipped.
func (sheet *Stylesheet) StringStyle(log *zap.Logger) style.StringStyle {
	if log == nil {
		log = zap.NewNop()
	}
	for _, w := range sheet.Warnings {
		log.Warn("Stylesheet problem", zap.String("detail", w))
	}

	deltas := make(map[string]*style.Delta)
	for _, rule := range sheet.Rules {
		format, ok := formats[rule.Selector.Name()]
		if !ok {
			log.Warn("Unknown format in stylesheet", zap.String("selector", rule.Selector.Raw))
			continue
		}
		d, ok := deltas[format]
		if !ok {
			d = defaultDelta(format)
			deltas[format] = d
		}
		for _, name := range rule.Order {
			if err := apply(d, name, rule.Properties[name]); err != nil {
				log.Warn("Skipping declaration", zap.String("selector", rule.Selector.Raw), zap.String("property", name), zap.Error(err))
			}
		}
	}

	return style.StringStyle{
		Bold:          deltas["bold"],
		Italic:        deltas["italic"],
		Underline:     deltas["underline"],
		Strikethrough: deltas["strikethrough"],
		Code:          deltas["code"],
		Link:          deltas["link"],
	}
}

func apply(d *style.Delta, name string, v Value) error {
	set := func(flag style.Attr, on bool) {
		if on {
			d.Attrs |= flag
		} else {
			d.Attrs &^= flag
		}
	}

	switch name {
	case "color":
		c, err := parseColor(v)
		if err != nil {
			return err
		}
		d.Color = &c
	case "background-color", "background":
		c, err := parseColor(v)
		if err != nil {
			return err
		}
		d.Background = &c
	case "font-weight":
		switch {
		case v.Keyword == "bold" || v.Keyword == "bolder" || (v.Numeric && v.Number >= 700):
			set(style.Bold, true)
			set(style.Medium, false)
		case v.Numeric && v.Number >= 500:
			set(style.Medium, true)
			set(style.Bold, false)
		case v.Keyword == "normal" || v.Keyword == "lighter" || v.Numeric:
			set(style.Bold|style.Medium, false)
		default:
			return fmt.Errorf("unsupported font weight %q", v.Raw)
		}
	case "font-style":
		switch v.Keyword {
		case "italic", "oblique":
			set(style.Italic, true)
		case "normal":
			set(style.Italic, false)
		default:
			return fmt.Errorf("unsupported font style %q", v.Raw)
		}
	case "text-decoration", "text-decoration-line":
		words := strings.Fields(v.Keyword)
		if len(words) == 1 && words[0] == "none" {
			set(style.Underline|style.Strikethrough, false)
			return nil
		}
		for _, w := range words {
			switch w {
			case "underline":
				set(style.Underline, true)
			case "line-through":
				set(style.Strikethrough, true)
			default:
				return fmt.Errorf("unsupported text decoration %q", w)
			}
		}
	case "font-family":
		set(style.Monospace, strings.Contains(v.Keyword, "monospace"))
	default:
		return errors.New("unsupported property")
	}
	return nil
}

func parseColor(v Value) (style.Color, error) {
	if c, ok := namedColors[v.Keyword]; ok {
		return c, nil
	}
	switch v.Func {
	case "rgb", "rgba":
		if len(v.Args) < 3 {
			return style.Color{}, fmt.Errorf("bad color %q", v.Raw)
		}
		channel := func(f float64) uint8 {
			return uint8(math.Round(min(max(f, 0), 255)))
		}
		c := style.RGB(channel(v.Args[0]), channel(v.Args[1]), channel(v.Args[2]))
		if len(v.Args) > 3 {
			c = c.WithAlpha(v.Args[3])
		}
		return c, nil
	case "":
		return style.ParseColor(v.Keyword)
	}
	return style.Color{}, fmt.Errorf("unsupported color function %q", v.Func)
}

func defaultDelta(format string) *style.Delta {
	var d *style.Delta
	switch format {
	case "bold":
		d = style.Default.Bold
	case "italic":
		d = style.Default.Italic
	case "underline":
		d = style.Default.Underline
	case "strikethrough":
		d = style.Default.Strikethrough
	case "code":
		d = style.Default.Code
	case "link":
		d = style.Default.Link
	}
	if d == nil {
		return &style.Delta{}
	}
	cp := *d
	return &cp
}
