// Package inline bridges resolved placeholders to renderable inline objects,
// numbered resource badges in particular.
package inline

import (
	"strings"

	"github.com/google/uuid"

	"rtx/style"
)

// Density is number of device pixels (or terminal cells for text backends)
// per density independent unit.
type Density float64

// Size is measured size of inline object in device units.
type Size struct {
	Width, Height int
}

// Info describes resource referenced from text. Index is 1-based order of the
// first appearance of URI in the whole document, 0 when unknown.
type Info struct {
	ResourceType string
	URI          string
	Index        int
}

// namespace for placeholder keys of resource tags
var keySpace = uuid.MustParse("9b0f7c3a-54c1-4f7e-9d43-3a7f4e1b2c6d")

// Key returns stable placeholder key for resource. It depends only on the
// resource identity so edits elsewhere in text do not change it.
func Key(resourceType, uri string) string {
	return uuid.NewSHA1(keySpace, []byte(resourceType+"\x00"+uri)).String()
}

// Indices maps resource URI to its 1-based order of first appearance.
type Indices map[string]int

// Add records URI if it was not seen yet and returns its index.
func (ix Indices) Add(uri string) int {
	if idx, ok := ix[uri]; ok {
		return idx
	}
	ix[uri] = len(ix) + 1
	return ix[uri]
}

// Catalog maps placeholder keys to resources they stand for.
type Catalog map[string]Info

// Shape of inline content box.
type Shape int

const (
	ShapeRect Shape = iota
	ShapeCircle
)

// Content is a backend neutral description of an inline object: a box with
// a short label. Backends decide how to draw it.
type Content struct {
	Label      string
	Foreground style.Color
	Background style.Color
	Attrs      style.Attr
	FontSize   int // in density independent units, 0 - inherit
	Shape      Shape
	Size       Size
	Action     func()
}

// Renderer is supplied by the host for inline objects. Only Content is
// required.
type Renderer struct {
	// InitialSize is queried during layout, it must be a pure function of
	// density.
	InitialSize func(Density) Size
	// OnClick receives click events, the only observable side effect.
	OnClick func(Info)
	// Content builds the object, onClick must be attached to whatever the
	// backend treats as clickable.
	Content func(info Info, onClick func()) Content
}

// Registry maps placeholder keys to renderers. It is written by the host
// between render passes and only read during a pass.
type Registry struct {
	def       *Renderer
	overrides map[string]*Renderer
}

// NewRegistry creates registry with default renderer, which may be nil - then
// only explicitly registered keys are rendered.
func NewRegistry(def *Renderer) *Registry {
	return &Registry{def: def, overrides: make(map[string]*Renderer)}
}

// Register sets renderer for particular key, nil removes override.
func (r *Registry) Register(key string, renderer *Renderer) {
	if renderer == nil {
		delete(r.overrides, key)
		return
	}
	r.overrides[key] = renderer
}

// Lookup returns renderer for key or nil.
func (r *Registry) Lookup(key string) *Renderer {
	if r == nil {
		return nil
	}
	if rr, ok := r.overrides[key]; ok {
		return rr
	}
	return r.def
}

// ParseResource splits "resource:<type>/<uri>" destination. The uri part may
// contain slashes.
func ParseResource(scheme, destination string) (Info, bool) {
	rest, found := strings.CutPrefix(destination, scheme+":")
	if !found {
		return Info{}, false
	}
	typ, uri, found := strings.Cut(strings.TrimPrefix(rest, "//"), "/")
	if !found || typ == "" || uri == "" {
		return Info{}, false
	}
	return Info{ResourceType: typ, URI: uri}, true
}
