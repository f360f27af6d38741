package inline

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"rtx/style"
)

var (
	DefaultBadgeBackground = style.MustParseColor("#6B7280") // gray-500
	DefaultBadgeForeground = style.White
)

const (
	DefaultBadgeSize     = 20
	DefaultBadgeFontSize = 10
)

// BadgeOptions controls look of numbered resource badge.
type BadgeOptions struct {
	Size       int // density independent units
	FontSize   int
	Background style.Color
	Foreground style.Color
	// Label produces badge text, index is used when nil.
	Label *template.Template
}

// DefaultBadgeOptions returns small gray circle with white number.
func DefaultBadgeOptions() BadgeOptions {
	return BadgeOptions{
		Size:       DefaultBadgeSize,
		FontSize:   DefaultBadgeFontSize,
		Background: DefaultBadgeBackground,
		Foreground: DefaultBadgeForeground,
	}
}

// LabelValues are available to label template.
type LabelValues struct {
	Index int
	Type  string
	URI   string
}

// ParseLabel compiles label template, slim-sprig functions are available.
// Template is executed once against sample values so that references to
// unknown fields are reported here rather than during rendering.
func ParseLabel(text string) (*template.Template, error) {
	tmpl, err := template.New("badge").Funcs(sprig.FuncMap()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("unable to parse badge label template: %w", err)
	}
	if err := tmpl.Execute(io.Discard, LabelValues{Index: 1, Type: "document", URI: "sample"}); err != nil {
		return nil, fmt.Errorf("unable to execute badge label template: %w", err)
	}
	return tmpl, nil
}

func (o BadgeOptions) label(info Info) string {
	if o.Label == nil {
		return strconv.Itoa(info.Index)
	}
	var buf bytes.Buffer
	if err := o.Label.Execute(&buf, LabelValues{Index: info.Index, Type: info.ResourceType, URI: info.URI}); err != nil {
		return strconv.Itoa(info.Index)
	}
	return buf.String()
}

// Badge builds numbered badge content for resource.
func Badge(info Info, opts BadgeOptions, onClick func()) Content {
	return Content{
		Label:      opts.label(info),
		Foreground: opts.Foreground,
		Background: opts.Background,
		Attrs:      style.Medium,
		FontSize:   opts.FontSize,
		Shape:      ShapeCircle,
		Action:     onClick,
	}
}

// BadgeRenderer returns renderer drawing every resource as a badge.
func BadgeRenderer(opts BadgeOptions, onClick func(Info)) *Renderer {
	return &Renderer{
		InitialSize: func(d Density) Size {
			side := int(math.Round(float64(opts.Size) * float64(d)))
			return Size{Width: side, Height: side}
		},
		OnClick: onClick,
		Content: func(info Info, click func()) Content {
			return Badge(info, opts, click)
		},
	}
}
