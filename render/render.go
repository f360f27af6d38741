package render

import (
	"fmt"

	"go.uber.org/zap"
)

// Backend draws laid out blocks. Host UI engines are represented by
// implementations of this interface.
type Backend interface {
	Begin() error
	Text(ctx *Context, b *Block, p *Paragraph, opts Options) error
	Literal(ctx *Context, b *Block, text string, opts Options) error
	Rule(ctx *Context, b *Block, opts Options) error
	End() error
}

// Render lays document out through backend. Fade, when requested, is applied
// to the last text block only since this is where text grows. Document
// resources replace ones set in context.
func (c *Context) Render(doc *Document, be Backend, opts Options) error {
	c.bind(doc)

	if err := be.Begin(); err != nil {
		return err
	}
	last := doc.LastText()
	for i := range doc.Blocks {
		b := &doc.Blocks[i]
		var err error
		switch b.Kind {
		case BlockParagraph, BlockHeading, BlockListItem:
			if b.Text == nil {
				continue
			}
			o := blockOptions(opts, i, last)
			var p *Paragraph
			if p, err = c.Text(b.Text, o); err == nil {
				err = be.Text(c, b, p, o)
			}
		case BlockCode:
			err = be.Literal(c, b, b.Raw, opts)
		case BlockHTML:
			err = be.Literal(c, b, c.HTMLBlock(b.Raw), opts)
		case BlockRule:
			err = be.Rule(c, b, opts)
		default:
			c.logger().Warn("Skipping unknown block", zap.Stringer("kind", b.Kind))
		}
		if err != nil {
			return fmt.Errorf("unable to render block %d (%s): %w", i, b.Kind, err)
		}
	}
	return be.End()
}

// Paragraph prepares text block i of the document exactly as Render would.
func (c *Context) Paragraph(doc *Document, i int, opts Options) (*Paragraph, error) {
	if i < 0 || i >= len(doc.Blocks) {
		return nil, fmt.Errorf("block %d is out of range [0,%d)", i, len(doc.Blocks))
	}
	b := &doc.Blocks[i]
	if !b.IsText() {
		return nil, fmt.Errorf("block %d (%s) has no text", i, b.Kind)
	}
	c.bind(doc)
	return c.Text(b.Text, blockOptions(opts, i, doc.LastText()))
}

func (c *Context) bind(doc *Document) {
	if doc.Catalog != nil {
		c.Inline.Catalog = doc.Catalog
	}
	if doc.Indices != nil {
		c.Inline.Indices = doc.Indices
	}
}

func blockOptions(opts Options, i, last int) Options {
	opts.FadeOutEffect = opts.FadeOutEffect && i == last
	return opts
}
