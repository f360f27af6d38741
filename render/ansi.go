package render

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"rtx/config"
	"rtx/resolve"
	"rtx/style"
)

const (
	ellipsis     = "…"
	quotePrefix  = "│ "
	listIndent   = "  "
	codeIndent   = "    "
	defaultRule  = 40
	ruleSymbol   = "─"
	badgePadding = " "
)

// ANSI renders to terminal. Alpha is not available there so colors are
// composited over context background.
type ANSI struct {
	// Hyperlinks enables OSC 8 sequences for links.
	Hyperlinks bool

	w      io.Writer
	r      *lipgloss.Renderer
	blocks int
	last   BlockKind
}

// NewANSI creates terminal backend for the given color profile.
func NewANSI(w io.Writer, profile termenv.Profile) *ANSI {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(profile)
	return &ANSI{w: w, r: r, Hyperlinks: profile != termenv.Ascii}
}

func (a *ANSI) Begin() error {
	a.blocks = 0
	return nil
}

func (a *ANSI) End() error {
	return nil
}

func (a *ANSI) Text(ctx *Context, b *Block, p *Paragraph, opts Options) error {
	var sb strings.Builder
	for _, r := range p.Runs {
		if r.IsPlaceholder() {
			if ph, ok := p.Placeholder(r.Placeholder); ok && ph.Content != nil {
				sb.WriteString(a.badge(ctx, ph.Content.Label, r, ph.Content.Foreground, ph.Content.Background))
				continue
			}
		}
		a.run(ctx, &sb, r)
	}

	first, rest := a.prefixes(b)
	lines := layout(sb.String(), opts.Width-ansi.StringWidth(first), opts)
	return a.emit(b, first, rest, lines)
}

func (a *ANSI) Literal(ctx *Context, b *Block, text string, opts Options) error {
	first, _ := a.prefixes(b)
	if b.Kind == BlockCode {
		first += codeIndent
	}
	st := a.r.NewStyle()
	if d := ctx.Style.ResolveDefaults().Code; d != nil && d.Background != nil {
		st = st.Background(termColor(*d.Background, ctx.Background))
	}

	// literal text is never wrapped
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	width := opts.Width - ansi.StringWidth(first)
	for i := range lines {
		lines[i] = truncate(st.Render(lines[i]), width, opts.Overflow)
	}
	return a.emit(b, first, first, lines)
}

func (a *ANSI) Rule(ctx *Context, b *Block, opts Options) error {
	first, _ := a.prefixes(b)
	width := defaultRule
	if opts.Width > 0 {
		width = opts.Width - ansi.StringWidth(first)
	}
	line := a.r.NewStyle().Foreground(termColor(style.LightGray, ctx.Background)).Render(strings.Repeat(ruleSymbol, max(width, 1)))
	return a.emit(b, first, first, []string{line})
}

// prefixes returns prefix for first and continuation lines of the block.
func (a *ANSI) prefixes(b *Block) (string, string) {
	quote := strings.Repeat(quotePrefix, b.Quote)
	if b.Kind != BlockListItem {
		return quote, quote
	}
	indent := strings.Repeat(listIndent, max(b.Level-1, 0))
	return quote + indent + b.Prefix, quote + indent + strings.Repeat(" ", ansi.StringWidth(b.Prefix))
}

// emit writes block lines, blocks are separated by an empty line except for
// consecutive list items.
func (a *ANSI) emit(b *Block, first, rest string, lines []string) error {
	var sb strings.Builder
	if a.blocks > 0 && (b.Kind != BlockListItem || a.last != BlockListItem) {
		sb.WriteString(strings.TrimRight(strings.Repeat(quotePrefix, b.Quote), " "))
		sb.WriteByte('\n')
	}
	a.blocks++
	a.last = b.Kind
	for i, line := range lines {
		if i == 0 {
			sb.WriteString(first)
		} else {
			sb.WriteString(rest)
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(a.w, sb.String())
	return err
}

func (a *ANSI) style(ctx *Context, s style.Style) lipgloss.Style {
	st := a.r.NewStyle().
		Bold(s.Attrs.Has(style.Bold)).
		Italic(s.Attrs.Has(style.Italic)).
		Underline(s.Attrs.Has(style.Underline)).
		Strikethrough(s.Attrs.Has(style.Strikethrough))
	if !s.Color.IsZero() {
		st = st.Foreground(termColor(s.Color, ctx.Background))
	}
	if !s.Background.IsZero() {
		st = st.Background(termColor(s.Background, ctx.Background))
	}
	return st
}

func (a *ANSI) run(ctx *Context, sb *strings.Builder, r resolve.Run) {
	st := a.style(ctx, r.Style)
	for i, piece := range strings.Split(r.Text, "\n") {
		if i > 0 {
			sb.WriteByte('\n')
		}
		if piece == "" {
			continue
		}
		s := st.Render(piece)
		if r.Link != "" && a.Hyperlinks {
			s = ansi.SetHyperlink(r.Link) + s + ansi.ResetHyperlink()
		}
		sb.WriteString(s)
	}
}

func (a *ANSI) badge(ctx *Context, label string, r resolve.Run, fg, bg style.Color) string {
	alpha := 1.0
	if r.Faded {
		alpha = r.Style.Color.A
	}
	st := a.r.NewStyle().Bold(true).
		Foreground(termColor(fg.WithAlpha(fg.A*alpha), ctx.Background)).
		Background(termColor(bg.WithAlpha(bg.A*alpha), ctx.Background))
	return st.Render(badgePadding + label + badgePadding)
}

func termColor(c, bg style.Color) lipgloss.TerminalColor {
	return lipgloss.Color(c.Over(bg).Hex())
}

// layout breaks styled text into lines honoring wrapping, overflow and
// line limit. Width <= 0 means unlimited.
func layout(text string, width int, opts Options) []string {
	if opts.SoftWrap && width > 0 {
		text = ansi.Wrap(text, width, "")
	}
	lines := strings.Split(text, "\n")
	if !opts.SoftWrap && width > 0 {
		for i := range lines {
			lines[i] = truncate(lines[i], width, opts.Overflow)
		}
	}
	if opts.MaxLines > 0 && len(lines) > opts.MaxLines {
		lines = lines[:opts.MaxLines]
		if opts.Overflow == config.OverflowEllipsis {
			last := len(lines) - 1
			if width > 0 && ansi.StringWidth(lines[last]) >= width {
				lines[last] = ansi.Truncate(lines[last], width, ellipsis)
			} else {
				lines[last] += ellipsis
			}
		}
	}
	return lines
}

func truncate(line string, width int, overflow config.Overflow) string {
	if width <= 0 {
		return line
	}
	if overflow == config.OverflowEllipsis {
		return ansi.Truncate(line, width, ellipsis)
	}
	return ansi.Truncate(line, width, "")
}
