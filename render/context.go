// Package render lays resolved rich text out through pluggable backends.
package render

import (
	"fmt"

	"go.uber.org/zap"

	"rtx/fade"
	"rtx/inline"
	"rtx/model"
	"rtx/resolve"
	"rtx/style"
)

// Context carries everything text rendering depends on. It is passed
// explicitly to every call and holds the memoized derivations, so it should
// live as long as the document it renders.
type Context struct {
	Style        style.StringStyle
	ContentColor style.Color
	Background   style.Color
	Inline       inline.Context
	Log          *zap.Logger

	cache      map[memoKey]*derived
	htmlWarned bool
}

// NewContext creates context with default string style, black text on white.
func NewContext(log *zap.Logger) *Context {
	if log == nil {
		log = zap.NewNop()
	}
	return &Context{
		Style:        style.Default,
		ContentColor: style.Black,
		Background:   style.White,
		Inline:       inline.Context{Density: 1},
		Log:          log,
		cache:        make(map[memoKey]*derived),
	}
}

type memoKey struct {
	rt         *model.RichText
	style      string
	content    style.Color
	fade       bool
	length     int
	multiplier float64
}

type derived struct {
	resolved *resolve.Resolved
	runs     []resolve.Run
	fade     fade.State
}

// Paragraph is rich text ready for layout.
type Paragraph struct {
	Source       *model.RichText
	Resolved     *resolve.Resolved
	Runs         []resolve.Run
	Fade         fade.State
	Placeholders []inline.Placeholder
}

// Text resolves rich text once per (text, style, content color, fade
// parameters) and binds inline content using current registry. Inline
// content is bound on every call since registry may change between passes.
func (c *Context) Text(rt *model.RichText, opts Options) (*Paragraph, error) {
	ss := c.Style.ResolveDefaults()
	key := memoKey{rt: rt, style: ss.Key(), content: c.ContentColor, fade: opts.FadeOutEffect}
	if opts.FadeOutEffect {
		key.length, key.multiplier = opts.FadeLength, opts.FadeMultiplier
	}
	if c.cache == nil {
		c.cache = make(map[memoKey]*derived)
	}

	d, ok := c.cache[key]
	if !ok {
		res := resolve.Resolve(rt, ss, c.ContentColor)
		d = &derived{resolved: res, runs: res.Runs}
		if opts.FadeOutEffect {
			d.fade = fade.Compute(res.DisplayText(), opts.FadeLength, opts.FadeMultiplier)
			runs, err := fade.Apply(res.Runs, d.fade, c.ContentColor)
			if err != nil {
				return nil, fmt.Errorf("unable to fade text: %w", err)
			}
			d.runs = runs
		}
		c.cache[key] = d
		c.logger().Debug("Resolved text",
			zap.Int("runs", len(d.runs)),
			zap.Int("placeholders", len(res.Placeholders)),
			zap.Bool("faded", !d.fade.Empty()))
	}

	return &Paragraph{
		Source:       rt,
		Resolved:     d.resolved,
		Runs:         d.runs,
		Fade:         d.fade,
		Placeholders: inline.Manage(d.resolved.Placeholders, c.Inline),
	}, nil
}

// Invalidate drops memoized derivations.
func (c *Context) Invalidate() {
	clear(c.cache)
}

func (c *Context) logger() *zap.Logger {
	if c.Log == nil {
		c.Log = zap.NewNop()
	}
	return c.Log
}

// HTMLBlock reports raw html block which is not interpreted and shown as
// literal text. Warning is issued once per context.
func (c *Context) HTMLBlock(raw string) string {
	if !c.htmlWarned {
		c.htmlWarned = true
		c.logger().Warn("HTML blocks are not supported, showing them as text", zap.Int("bytes", len(raw)))
	}
	return raw
}

// Placeholder returns managed inline object by key.
func (p *Paragraph) Placeholder(key string) (*inline.Placeholder, bool) {
	return inline.Find(p.Placeholders, key)
}

// Hit is the result of hit testing source offset.
type Hit struct {
	Link        string
	Placeholder *inline.Placeholder
}

// HitTest finds what is under source offset: inline object or the innermost
// link. Offsets are half-open, link end is not part of the link.
func (p *Paragraph) HitTest(offset int) (Hit, bool) {
	if r, ok := p.Resolved.RunAt(offset); ok && r.IsPlaceholder() {
		if ph, ok := p.Placeholder(r.Placeholder); ok {
			return Hit{Placeholder: ph}, true
		}
	}
	if a, ok := p.Resolved.LinkAt(offset); ok {
		return Hit{Link: a.Tag.Destination}, true
	}
	return Hit{}, false
}
