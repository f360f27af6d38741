package inline

import (
	"math"

	"rtx/resolve"
)

// Context carries everything inline objects need during a render pass.
type Context struct {
	Density  Density
	Catalog  Catalog
	Indices  Indices
	Registry *Registry
}

// Placeholder is a managed inline object ready for layout.
type Placeholder struct {
	Key  string
	Info Info
	Size Size
	// Content is nil when nobody could render the object, Fallback text is
	// shown instead.
	Content  *Content
	Fallback string
	Shown    bool
}

// Click dispatches click to the object, returns false when there is nothing
// clickable.
func (p *Placeholder) Click() bool {
	if p.Content == nil || p.Content.Action == nil {
		return false
	}
	p.Content.Action()
	return true
}

// Manage binds every resolved placeholder to renderer from the registry.
// Result preserves order of first occurrence and is keyed by the same stable
// keys.
func Manage(placeholders []resolve.Placeholder, ctx Context) []Placeholder {
	density := ctx.Density
	if density <= 0 {
		density = 1
	}

	out := make([]Placeholder, 0, len(placeholders))
	for _, ph := range placeholders {
		info, ok := ctx.Catalog[ph.Key]
		if !ok {
			info = Info{URI: ph.Key}
		}
		if idx, ok := ctx.Indices[info.URI]; ok {
			info.Index = idx
		}

		mp := Placeholder{Key: ph.Key, Info: info, Fallback: ph.Alternate, Shown: ph.Shown}
		renderer := ctx.Registry.Lookup(ph.Key)
		if renderer == nil || renderer.Content == nil {
			out = append(out, mp)
			continue
		}

		click := func() {}
		if renderer.OnClick != nil {
			onClick, clicked := renderer.OnClick, info
			click = func() { onClick(clicked) }
		}
		content := renderer.Content(info, click)
		if content.Action == nil {
			content.Action = click
		}
		mp.Content = &content

		switch {
		case renderer.InitialSize != nil:
			mp.Size = renderer.InitialSize(density)
		case content.Size != (Size{}):
			mp.Size = content.Size
		default:
			side := int(math.Ceil(float64(density)))
			mp.Size = Size{Width: side, Height: side}
		}
		out = append(out, mp)
	}
	return out
}

// Find returns managed placeholder by key.
func Find(placeholders []Placeholder, key string) (*Placeholder, bool) {
	for i := range placeholders {
		if placeholders[i].Key == key {
			return &placeholders[i], true
		}
	}
	return nil, false
}
