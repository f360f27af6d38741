package render

import (
	"cmp"
	"slices"
	"strings"

	"rtx/inline"
	"rtx/model"
)

// BlockKind is the kind of top level document block.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockListItem
	BlockCode
	BlockHTML
	BlockRule
)

var blockNames = [...]string{"paragraph", "heading", "list-item", "code", "html", "rule"}

func (k BlockKind) String() string {
	if int(k) < len(blockNames) {
		return blockNames[k]
	}
	return "unknown"
}

// Block is a single piece of document layout. Text blocks carry rich text,
// code and html blocks carry Raw source which is shown literally.
type Block struct {
	Kind BlockKind
	// Level is heading level or list nesting depth (1-based).
	Level int
	// Prefix is list marker ("• ", "3. ") for list items.
	Prefix string
	// Quote is blockquote nesting depth.
	Quote    int
	Text     *model.RichText
	Raw      string
	Language string
}

// IsText reports blocks whose content is rich text.
func (b *Block) IsText() bool {
	switch b.Kind {
	case BlockParagraph, BlockHeading, BlockListItem:
		return b.Text != nil
	}
	return false
}

// Document is a sequence of blocks together with the resources referenced
// from it.
type Document struct {
	Blocks  []Block
	Catalog inline.Catalog
	Indices inline.Indices
}

// Paragraphs wraps rich texts into a document of plain paragraphs. Inline
// content keys are cataloged in order of first appearance, keys of
// "<type>/<uri>" form carry resource type.
func Paragraphs(texts ...*model.RichText) *Document {
	doc := &Document{Catalog: inline.Catalog{}, Indices: inline.Indices{}}
	for _, rt := range texts {
		doc.Blocks = append(doc.Blocks, Block{Kind: BlockParagraph, Text: rt})
		doc.catalog(rt)
	}
	return doc
}

func (d *Document) catalog(rt *model.RichText) {
	var inlines []model.Annotation
	for _, a := range rt.Annotations() {
		if a.Tag.Kind == model.KindInline {
			inlines = append(inlines, a)
		}
	}
	slices.SortStableFunc(inlines, func(a, b model.Annotation) int {
		return cmp.Compare(a.Start, b.Start)
	})
	for _, a := range inlines {
		key := a.Tag.Key
		if _, ok := d.Catalog[key]; ok {
			continue
		}
		info := inline.Info{URI: key}
		if typ, uri, found := strings.Cut(key, "/"); found && typ != "" && uri != "" {
			info = inline.Info{ResourceType: typ, URI: uri}
		}
		info.Index = d.Indices.Add(info.URI)
		d.Catalog[key] = info
	}
}

// LastText returns index of the last text block or -1.
func (d *Document) LastText() int {
	for i := len(d.Blocks) - 1; i >= 0; i-- {
		if d.Blocks[i].IsText() {
			return i
		}
	}
	return -1
}
