// Package markdown adapts goldmark syntax tree to rich text document.
package markdown

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"rtx/inline"
	"rtx/model"
	"rtx/render"
)

// DefaultScheme marks links pointing to resources, "resource:<type>/<uri>".
const DefaultScheme = "resource"

const bullet = "• "

// Converter turns markdown source into render document.
type Converter struct {
	md     goldmark.Markdown
	scheme string
	log    *zap.Logger
}

func NewConverter(scheme string, log *zap.Logger) *Converter {
	if log == nil {
		log = zap.NewNop()
	}
	if scheme == "" {
		scheme = DefaultScheme
	}
	return &Converter{
		md:     goldmark.New(goldmark.WithExtensions(extension.Strikethrough, extension.Linkify)),
		scheme: scheme,
		log:    log.Named("markdown"),
	}
}

// state of a single conversion
type state struct {
	src []byte
	doc *render.Document
}

// Convert parses markdown and produces document. Resource links become inline
// content, their indices follow order of first appearance in the whole
// source.
func (c *Converter) Convert(src []byte) (*render.Document, error) {
	st := &state{
		src: norm.NFC.Bytes(src),
		doc: &render.Document{Catalog: inline.Catalog{}, Indices: inline.Indices{}},
	}
	root := c.md.Parser().Parse(text.NewReader(st.src))
	if err := c.blocks(st, root, 0, 0); err != nil {
		return nil, err
	}
	c.log.Debug("Converted markdown",
		zap.Int("bytes", len(src)),
		zap.Int("blocks", len(st.doc.Blocks)),
		zap.Int("resources", len(st.doc.Indices)))
	return st.doc, nil
}

func (c *Converter) blocks(st *state, parent ast.Node, quote, level int) error {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		if err := c.block(st, n, quote, level); err != nil {
			return err
		}
	}
	return nil
}

func (c *Converter) block(st *state, n ast.Node, quote, level int) error {
	switch n := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		return c.text(st, n, render.Block{Kind: render.BlockParagraph, Quote: quote})
	case *ast.Heading:
		return c.text(st, n, render.Block{Kind: render.BlockHeading, Level: n.Level, Quote: quote}, model.Bold)
	case *ast.ThematicBreak:
		st.doc.Blocks = append(st.doc.Blocks, render.Block{Kind: render.BlockRule, Quote: quote})
	case *ast.CodeBlock:
		st.doc.Blocks = append(st.doc.Blocks, render.Block{Kind: render.BlockCode, Quote: quote, Raw: lines(n, st.src)})
	case *ast.FencedCodeBlock:
		st.doc.Blocks = append(st.doc.Blocks, render.Block{
			Kind:     render.BlockCode,
			Quote:    quote,
			Raw:      lines(n, st.src),
			Language: string(n.Language(st.src)),
		})
	case *ast.HTMLBlock:
		raw := lines(n, st.src)
		if n.HasClosure() {
			raw += string(n.ClosureLine.Value(st.src))
		}
		st.doc.Blocks = append(st.doc.Blocks, render.Block{Kind: render.BlockHTML, Quote: quote, Raw: raw})
	case *ast.Blockquote:
		return c.blocks(st, n, quote+1, level)
	case *ast.List:
		return c.list(st, n, quote, level+1)
	default:
		c.log.Debug("Skipping unsupported block", zap.String("kind", n.Kind().String()))
	}
	return nil
}

func (c *Converter) list(st *state, list *ast.List, quote, level int) error {
	num := list.Start
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		marker := bullet
		if list.IsOrdered() {
			marker = strconv.Itoa(num) + string(list.Marker) + " "
			num++
		}
		for n := item.FirstChild(); n != nil; n = n.NextSibling() {
			switch n.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				if err := c.text(st, n, render.Block{Kind: render.BlockListItem, Level: level, Prefix: marker, Quote: quote}); err != nil {
					return err
				}
				// following paragraphs of the same item are aligned with the
				// first one
				marker = strings.Repeat(" ", len([]rune(marker)))
			default:
				if err := c.block(st, n, quote, level); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (c *Converter) text(st *state, n ast.Node, blk render.Block, formats ...model.Tag) error {
	var b model.Builder
	for _, f := range formats {
		b.Push(f)
	}
	c.inlines(st, &b, n)
	rt, err := b.Build()
	if err != nil {
		return fmt.Errorf("unable to build %s at block %d: %w", blk.Kind, len(st.doc.Blocks), err)
	}
	blk.Text = rt
	st.doc.Blocks = append(st.doc.Blocks, blk)
	return nil
}

func (c *Converter) inlines(st *state, b *model.Builder, parent ast.Node) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch n := n.(type) {
		case *ast.Text:
			b.Append(string(n.Segment.Value(st.src)))
			switch {
			case n.HardLineBreak():
				b.Append("\n")
			case n.SoftLineBreak():
				b.Append(" ")
			}
		case *ast.String:
			b.Append(string(n.Value))
		case *ast.CodeSpan:
			b.WithFormat(model.Code, func(b *model.Builder) { c.inlines(st, b, n) })
		case *ast.Emphasis:
			tag := model.Italic
			if n.Level >= 2 {
				tag = model.Bold
			}
			b.WithFormat(tag, func(b *model.Builder) { c.inlines(st, b, n) })
		case *east.Strikethrough:
			b.WithFormat(model.Strikethrough, func(b *model.Builder) { c.inlines(st, b, n) })
		case *ast.Link:
			dest := string(n.Destination)
			if info, ok := inline.ParseResource(c.scheme, dest); ok {
				c.resource(st, b, info, plainText(n, st.src))
				continue
			}
			b.WithFormat(model.Link(dest), func(b *model.Builder) { c.inlines(st, b, n) })
		case *ast.AutoLink:
			url := string(n.URL(st.src))
			if info, ok := inline.ParseResource(c.scheme, url); ok {
				c.resource(st, b, info, "")
				continue
			}
			b.WithFormat(model.Link(url), func(b *model.Builder) { b.Append(string(n.Label(st.src))) })
		case *ast.Image:
			// images are not rendered, alt text links to them
			b.WithFormat(model.Link(string(n.Destination)), func(b *model.Builder) { c.inlines(st, b, n) })
		case *ast.RawHTML:
			for i := range n.Segments.Len() {
				seg := n.Segments.At(i)
				b.Append(string(seg.Value(st.src)))
			}
		default:
			c.inlines(st, b, n)
		}
	}
}

func (c *Converter) resource(st *state, b *model.Builder, info inline.Info, alt string) {
	key := inline.Key(info.ResourceType, info.URI)
	info.Index = st.doc.Indices.Add(info.URI)
	st.doc.Catalog[key] = info
	b.AppendInline(key, alt)
}

func lines(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	l := n.Lines()
	for i := range l.Len() {
		seg := l.At(i)
		buf.Write(seg.Value(src))
	}
	return buf.String()
}

func plainText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Text:
			buf.Write(n.Segment.Value(src))
			if n.SoftLineBreak() || n.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(n.Value)
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}
