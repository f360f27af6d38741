package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"rtx/config"
	"rtx/inline"
	"rtx/resolve"
	"rtx/style"
)

var headings = [...]atom.Atom{atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6}

// HTML renders document into html fragment. Tree is accumulated and written
// at End.
type HTML struct {
	w    io.Writer
	root *html.Node
}

func NewHTML(w io.Writer) *HTML {
	return &HTML{w: w}
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

// declarations collects content of style attribute.
type declarations []string

func (d *declarations) add(prop, val string) {
	*d = append(*d, prop+":"+val)
}

func (d declarations) String() string {
	return strings.Join(d, ";")
}

func (h *HTML) Begin() error {
	h.root = element(atom.Div, attr("class", "rtx"))
	return nil
}

func (h *HTML) End() error {
	if h.root == nil {
		return nil
	}
	if err := html.Render(h.w, h.root); err != nil {
		return fmt.Errorf("unable to write html: %w", err)
	}
	_, err := io.WriteString(h.w, "\n")
	return err
}

// container wraps block into blockquotes and attaches it to the tree.
func (h *HTML) container(b *Block, n *html.Node) {
	if h.root == nil {
		h.root = element(atom.Div, attr("class", "rtx"))
	}
	parent := h.root
	for range b.Quote {
		q := element(atom.Blockquote)
		parent.AppendChild(q)
		parent = q
	}
	parent.AppendChild(n)
}

func (h *HTML) Text(ctx *Context, b *Block, p *Paragraph, opts Options) error {
	var n *html.Node
	switch b.Kind {
	case BlockHeading:
		n = element(headings[min(max(b.Level, 1), len(headings))-1])
	case BlockListItem:
		n = element(atom.P, attr("class", "rtx-li"))
	default:
		n = element(atom.P)
	}

	var css declarations
	css.add("color", ctx.ContentColor.CSS())
	if b.Kind == BlockListItem && b.Level > 1 {
		css.add("margin-left", strconv.Itoa((b.Level-1)*2)+"em")
	}
	layoutCSS(&css, opts)
	n.Attr = append(n.Attr, attr("style", css.String()))

	if b.Prefix != "" {
		n.AppendChild(textNode(b.Prefix))
	}

	var (
		link     *html.Node
		linkDest string
	)
	for _, r := range p.Runs {
		rn := h.run(ctx, p, r)
		if r.Link == "" {
			link = nil
			n.AppendChild(rn)
			continue
		}
		if link == nil || linkDest != r.Link {
			link, linkDest = element(atom.A, attr("href", r.Link)), r.Link
			n.AppendChild(link)
		}
		link.AppendChild(rn)
	}
	h.container(b, n)
	return nil
}

func (h *HTML) Literal(ctx *Context, b *Block, text string, opts Options) error {
	pre := element(atom.Pre)
	code := element(atom.Code)
	switch {
	case b.Kind == BlockHTML:
		pre.Attr = append(pre.Attr, attr("class", "rtx-html"))
	case b.Language != "":
		code.Attr = append(code.Attr, attr("class", "language-"+b.Language))
	}
	var css declarations
	if d := ctx.Style.ResolveDefaults().Code; d != nil && d.Background != nil {
		css.add("background-color", d.Background.CSS())
	}
	if opts.Width > 0 {
		css.add("max-width", strconv.Itoa(opts.Width)+"ch")
		css.add("overflow", "hidden")
	}
	if len(css) > 0 {
		pre.Attr = append(pre.Attr, attr("style", css.String()))
	}
	code.AppendChild(textNode(strings.TrimSuffix(text, "\n")))
	pre.AppendChild(code)
	h.container(b, pre)
	return nil
}

func (h *HTML) Rule(ctx *Context, b *Block, opts Options) error {
	h.container(b, element(atom.Hr))
	return nil
}

// layoutCSS maps wrapping, overflow and line limit to css.
func layoutCSS(css *declarations, opts Options) {
	if opts.Width > 0 {
		css.add("max-width", strconv.Itoa(opts.Width)+"ch")
	}
	if !opts.SoftWrap {
		css.add("white-space", "nowrap")
	}
	if opts.MaxLines > 0 {
		css.add("display", "-webkit-box")
		css.add("-webkit-box-orient", "vertical")
		css.add("-webkit-line-clamp", strconv.Itoa(opts.MaxLines))
	}
	if !opts.SoftWrap || opts.MaxLines > 0 {
		css.add("overflow", "hidden")
		if opts.Overflow == config.OverflowEllipsis {
			css.add("text-overflow", "ellipsis")
		}
	}
}

func runCSS(ctx *Context, s style.Style) declarations {
	var css declarations
	switch {
	case s.Attrs.Has(style.Bold):
		css.add("font-weight", "bold")
	case s.Attrs.Has(style.Medium):
		css.add("font-weight", "500")
	}
	if s.Attrs.Has(style.Italic) {
		css.add("font-style", "italic")
	}
	var deco []string
	if s.Attrs.Has(style.Underline) {
		deco = append(deco, "underline")
	}
	if s.Attrs.Has(style.Strikethrough) {
		deco = append(deco, "line-through")
	}
	if len(deco) > 0 {
		css.add("text-decoration", strings.Join(deco, " "))
	}
	if s.Attrs.Has(style.Monospace) {
		css.add("font-family", "monospace")
	}
	if !s.Color.IsZero() && s.Color != ctx.ContentColor {
		css.add("color", s.Color.CSS())
	}
	if !s.Background.IsZero() {
		css.add("background-color", s.Background.CSS())
	}
	return css
}

func (h *HTML) run(ctx *Context, p *Paragraph, r resolve.Run) *html.Node {
	if r.IsPlaceholder() {
		if ph, ok := p.Placeholder(r.Placeholder); ok && ph.Content != nil {
			return badgeNode(ph, r)
		}
	}

	css := runCSS(ctx, r.Style)
	n := element(atom.Span)
	if len(css) > 0 {
		n.Attr = append(n.Attr, attr("style", css.String()))
	}
	if r.IsPlaceholder() {
		n.Attr = append(n.Attr, attr("data-key", r.Placeholder))
	}
	for i, piece := range strings.Split(r.Text, "\n") {
		if i > 0 {
			n.AppendChild(element(atom.Br))
		}
		if piece != "" {
			n.AppendChild(textNode(piece))
		}
	}
	if len(css) == 0 && !r.IsPlaceholder() && n.FirstChild != nil && n.FirstChild == n.LastChild {
		// no need for span around bare text
		t := n.FirstChild
		n.RemoveChild(t)
		return t
	}
	return n
}

func badgeNode(ph *inline.Placeholder, r resolve.Run) *html.Node {
	c := ph.Content
	var css declarations
	css.add("display", "inline-flex")
	css.add("align-items", "center")
	css.add("justify-content", "center")
	css.add("vertical-align", "middle")
	if ph.Size.Width > 0 {
		css.add("width", strconv.Itoa(ph.Size.Width)+"px")
		css.add("height", strconv.Itoa(ph.Size.Height)+"px")
	}
	if c.Shape == inline.ShapeCircle {
		css.add("border-radius", "50%")
	}
	if !c.Background.IsZero() {
		css.add("background-color", c.Background.CSS())
	}
	if !c.Foreground.IsZero() {
		css.add("color", c.Foreground.CSS())
	}
	if c.FontSize > 0 {
		css.add("font-size", strconv.Itoa(c.FontSize)+"px")
	}
	if c.Attrs.Has(style.Medium) {
		css.add("font-weight", "500")
	}
	if r.Faded {
		css.add("opacity", strconv.FormatFloat(r.Style.Color.A, 'f', -1, 64))
	}

	attrs := []html.Attribute{
		attr("class", "rtx-inline"),
		attr("data-key", ph.Key),
		attr("style", css.String()),
	}
	if ph.Info.ResourceType != "" {
		attrs = append(attrs, attr("data-type", ph.Info.ResourceType))
	}
	if ph.Info.URI != "" {
		attrs = append(attrs, attr("data-uri", ph.Info.URI))
	}
	if ph.Info.Index > 0 {
		attrs = append(attrs, attr("data-index", strconv.Itoa(ph.Info.Index)))
	}
	n := element(atom.Span, attrs...)
	n.AppendChild(textNode(c.Label))
	return n
}
