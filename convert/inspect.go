package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"rtx/inline"
	"rtx/model"
	"rtx/render"
	"rtx/resolve"
	"rtx/state"
	"rtx/utils/debug"
)

// probe selects what inspect reports: whole document dump when at is
// negative, otherwise hit test of a single block. With yaml set text blocks
// are written as annotated text instead.
type probe struct {
	block int
	at    int
	yaml  bool
}

// Inspect is the action of inspect subcommand.
func Inspect(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("inspect")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	if src != stdinSource {
		if src, err = filepath.Abs(src); err != nil {
			return err
		}
	}
	if cmd.Args().Len() > 1 {
		log.Warn("Malformed command line, too many sources", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	req, err := prepareRequest(env, cmd, log)
	if err != nil {
		return err
	}

	pr := probe{block: cmd.Int("block"), at: -1, yaml: cmd.Bool("yaml")}
	if cmd.IsSet("at") {
		pr.at = cmd.Int("at")
	}
	return inspect(ctx, src, pr, req, log)
}

func inspect(ctx context.Context, src string, pr probe, req *request, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)

	kind := detectSource(src)
	if kind == srcUnknown {
		return fmt.Errorf("input was not recognized as markdown or annotated text (%s)", src)
	}
	data, err := readSource(src, req.stdin)
	if err != nil {
		return fmt.Errorf("unable to read source (%s): %w", src, err)
	}
	doc, err := loadDocument(kind, data, env.Cfg.Resources.Scheme, log)
	if err != nil {
		return fmt.Errorf("unable to parse source (%s): %w", src, err)
	}

	if pr.yaml {
		var buf bytes.Buffer
		if err := exportDocument(&buf, doc); err != nil {
			return err
		}
		if env.Rpt != nil {
			env.Rpt.StoreData("inspect.yaml", buf.Bytes())
		}
		_, err = req.stdout.Write(buf.Bytes())
		return err
	}

	onClick := func(info inline.Info) {
		log.Info("Resource clicked", zap.String("type", info.ResourceType), zap.String("uri", info.URI), zap.Int("index", info.Index))
		fmt.Fprintf(req.stdout, "resource %s %s #%d\n", info.ResourceType, info.URI, info.Index)
	}
	rc, err := newRenderContext(env, onClick, log)
	if err != nil {
		return err
	}

	if pr.at < 0 {
		tw := debug.NewTreeWriter()
		if err := dumpDocument(tw, rc, doc, req.opts); err != nil {
			return err
		}
		if env.Rpt != nil {
			env.Rpt.StoreData("inspect.txt", []byte(tw.String()))
		}
		_, err = io.WriteString(req.stdout, tw.String())
		return err
	}

	p, err := rc.Paragraph(doc, pr.block, req.opts)
	if err != nil {
		return err
	}
	return click(req.stdout, p, pr, log)
}

// click hit tests offset and dispatches it: links are reported, inline
// objects receive the click.
func click(w io.Writer, p *render.Paragraph, pr probe, log *zap.Logger) error {
	hit, ok := p.HitTest(pr.at)
	switch {
	case !ok:
		log.Debug("Nothing to click", zap.Int("block", pr.block), zap.Int("offset", pr.at))
		_, err := fmt.Fprintf(w, "nothing at %d\n", pr.at)
		return err
	case hit.Placeholder != nil:
		if !hit.Placeholder.Click() {
			_, err := fmt.Fprintf(w, "text %q\n", hit.Placeholder.Fallback)
			return err
		}
		return nil
	default:
		log.Info("Link clicked", zap.String("destination", hit.Link))
		_, err := fmt.Fprintf(w, "link %s\n", hit.Link)
		return err
	}
}

func dumpDocument(tw *debug.TreeWriter, rc *render.Context, doc *render.Document, opts render.Options) error {
	tw.Line(0, "document blocks=%d resources=%d", len(doc.Blocks), len(doc.Indices))
	for i := range doc.Blocks {
		b := &doc.Blocks[i]
		tw.Line(1, "block %d (%s) level=%d quote=%d", i, b.Kind, b.Level, b.Quote)
		if !b.IsText() {
			if b.Raw != "" {
				tw.TextBlock(2, "raw", b.Raw)
			}
			continue
		}
		p, err := rc.Paragraph(doc, i, opts)
		if err != nil {
			return err
		}
		dumpParagraph(tw, 2, p)
	}
	return nil
}

func dumpParagraph(tw *debug.TreeWriter, depth int, p *render.Paragraph) {
	tw.TextBlock(depth, "text", p.Source.Text())
	for _, r := range p.Runs {
		dumpRun(tw, depth+1, r)
	}
	for _, ph := range p.Placeholders {
		label := ph.Fallback
		if ph.Content != nil {
			label = ph.Content.Label
		}
		tw.Line(depth+1, "placeholder %s type=%s uri=%s index=%d size=%dx%d shown=%t label=%q",
			ph.Key, ph.Info.ResourceType, ph.Info.URI, ph.Info.Index, ph.Size.Width, ph.Size.Height, ph.Shown, label)
	}
}

func dumpRun(tw *debug.TreeWriter, depth int, r resolve.Run) {
	alpha := ""
	if r.Faded {
		alpha = strconv.FormatFloat(r.Style.Color.A, 'f', 4, 64)
	}
	tw.Span(depth, "run", r.Start, r.End,
		"text", strconv.Quote(r.Text),
		"style", r.Style.String(),
		"link", r.Link,
		"placeholder", r.Placeholder,
		"alpha", alpha)
}

// exportDocument writes text blocks as annotated text paragraphs. Resource
// keys are replaced with "<type>/<uri>" so that resources are cataloged again
// when the result is read back.
func exportDocument(w io.Writer, doc *render.Document) error {
	var texts []*model.RichText
	for i := range doc.Blocks {
		b := &doc.Blocks[i]
		if !b.IsText() {
			continue
		}
		annotations := b.Text.Annotations()
		for j, a := range annotations {
			if info, ok := doc.Catalog[a.Tag.Key]; ok && a.Tag.Kind == model.KindInline && info.ResourceType != "" {
				annotations[j].Tag.Key = info.ResourceType + "/" + info.URI
			}
		}
		rt, err := model.New(b.Text.Text(), annotations...)
		if err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
		texts = append(texts, rt)
	}
	return model.Encode(w, texts...)
}
