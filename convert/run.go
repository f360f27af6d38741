// Package convert implements render and inspect subcommands.
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/muesli/termenv"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"rtx/archive"
	"rtx/config"
	"rtx/render"
	"rtx/state"
)

// request is everything needed to render a single source.
type request struct {
	format config.OutputFmt
	opts   render.Options
	stdin  io.Reader
	stdout io.Writer
}

// Render is the action of render subcommand.
func Render(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("render")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	if src != stdinSource {
		if src, err = filepath.Abs(src); err != nil {
			return err
		}
	}

	dst := cmd.Args().Get(1)
	if len(dst) > 0 {
		if dst, err = filepath.Abs(dst); err != nil {
			return err
		}
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	req, err := prepareRequest(env, cmd, log)
	if err != nil {
		return err
	}
	env.Overwrite, env.Transliterate = cmd.Bool("overwrite"), cmd.Bool("transliterate")

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst), zap.Stringer("format", req.format))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, req, log)
}

// prepareRequest merges command line overrides into configured render
// settings and loads stylesheet into environment.
func prepareRequest(env *state.LocalEnv, cmd *cli.Command, log *zap.Logger) (*request, error) {
	rc := &env.Cfg.Render
	if cmd.IsSet("to") {
		format, err := config.ParseOutputFmt(cmd.String("to"))
		if err != nil {
			log.Warn("Unknown output format requested, using configured one", zap.Stringer("format", rc.Format), zap.Error(err))
		} else {
			rc.Format = format
		}
	}
	if cmd.IsSet("width") {
		rc.Width = max(cmd.Int("width"), 0)
	}
	if cmd.IsSet("max-lines") {
		rc.MaxLines = max(cmd.Int("max-lines"), 0)
	}
	if cmd.IsSet("fade") {
		rc.Fade.Enable = cmd.Bool("fade")
	}

	ss, err := loadStylesheet(rc.StylesheetPath, log)
	if err != nil {
		return nil, err
	}
	env.Style = ss

	return &request{
		format: rc.Format,
		opts:   render.OptionsFrom(rc),
		stdin:  os.Stdin,
		stdout: os.Stdout,
	}, nil
}

// process handles rendering independently of CLI framework. Source is a
// single file, STDIN or a zip archive optionally followed by path of the
// document inside of it.
func process(ctx context.Context, src, dst string, req *request, log *zap.Logger) error {
	if src == stdinSource {
		return processSource(ctx, req.stdin, src, "", dst, req, log)
	}

	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}
		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			return fmt.Errorf("input source is a directory, single document is expected (%s)", head)
		}
		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		if archive.IsArchive(head) {
			entry := filepath.ToSlash(strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator)))
			return processArchive(ctx, head, entry, dst, req, log)
		}
		if len(tail) != 0 || detectSource(head) == srcUnknown {
			return fmt.Errorf("input was not recognized as markdown or annotated text (%s)", src)
		}

		file, err := os.Open(head)
		if err != nil {
			return fmt.Errorf("unable to open source: %w", err)
		}
		defer file.Close()
		return processSource(ctx, file, head, "", dst, req, log)
	}
	return fmt.Errorf("input source was not found (%s)", src)
}

// processArchive renders document stored in archive. Entry names either the
// document or archive directory which, as the whole archive when entry is
// empty, must hold exactly one supported document.
func processArchive(ctx context.Context, arc, entry, dst string, req *request, log *zap.Logger) error {
	dir := strings.TrimSuffix(entry, "/") + "/"
	match := func(name string) bool {
		if name == entry {
			return true
		}
		return (entry == "" || strings.HasPrefix(name, dir)) && detectSource(name) != srcUnknown
	}

	var names []string
	if err := archive.Walk(arc, entry, match, func(name string, _ io.Reader) error {
		names = append(names, name)
		return nil
	}); err != nil {
		return fmt.Errorf("unable to process archive: %w", err)
	}
	switch len(names) {
	case 0:
		return fmt.Errorf("no document found in archive (%s) => (%s)", arc, entry)
	case 1:
	default:
		log.Debug("Ambiguous archive source", zap.String("archive", arc), zap.Strings("documents", names))
		return fmt.Errorf("archive holds %d documents, path of one of them is required (%s)", len(names), arc)
	}
	if detectSource(names[0]) == srcUnknown {
		return fmt.Errorf("input was not recognized as markdown or annotated text (%s) => (%s)", arc, names[0])
	}

	err := archive.Walk(arc, names[0], func(name string) bool { return name == names[0] }, func(name string, r io.Reader) error {
		return processSource(ctx, r, arc, name, dst, req, log)
	})
	if err != nil {
		return fmt.Errorf("unable to process archive: %w", err)
	}
	return nil
}

// processSource renders single document read from r. "src" is the file data
// came from, "entry" is document path inside archive, empty for plain files.
func processSource(ctx context.Context, r io.Reader, src, entry, dst string, req *request, log *zap.Logger) (rerr error) {
	env := state.EnvFromContext(ctx)

	name := sourceName(src, entry)
	outputName := buildOutputPath(name, dst, req.format, env)
	log.Info("Rendering starting", zap.String("from", src), zap.String("entry", entry))
	defer func(start time.Time) {
		if r := recover(); r != nil {
			log.Error("Rendering ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("rendering panic: %v", r)
		} else if rerr == nil {
			log.Info("Rendering completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName))
		}
	}(time.Now())

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("unable to read source (%s): %w", name, err)
	}
	if env.Rpt != nil {
		env.Rpt.StoreData("input/"+name, data)
	}

	doc, err := loadDocument(detectSource(name), data, env.Cfg.Resources.Scheme, log)
	if err != nil {
		return fmt.Errorf("unable to parse source (%s): %w", name, err)
	}

	rc, err := newRenderContext(env, nil, log)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	be := newBackend(&buf, req.format, outputName == "", env.Profile)
	if err := rc.Render(doc, be, req.opts); err != nil {
		return err
	}

	reportName := "output/" + strings.TrimSuffix(name, filepath.Ext(name)) + req.format.Ext()
	if outputName == "" {
		if env.Rpt != nil {
			env.Rpt.StoreData(reportName, buf.Bytes())
		}
		_, err = req.stdout.Write(buf.Bytes())
		return err
	}
	if err := writeOutput(outputName, buf.Bytes(), env, log); err != nil {
		return err
	}
	if env.Rpt != nil {
		env.Rpt.Store(reportName, outputName)
	}
	return nil
}

// newBackend selects backend for format. Terminal escapes are only produced
// for STDOUT, files always get plain text.
func newBackend(w io.Writer, format config.OutputFmt, stdout bool, profile termenv.Profile) render.Backend {
	if format == config.OutputFmtHtml {
		return render.NewHTML(w)
	}
	if !stdout {
		profile = termenv.Ascii
	}
	return render.NewANSI(w, profile)
}

func writeOutput(name string, data []byte, env *state.LocalEnv, log *zap.Logger) error {
	if _, err := os.Stat(name); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", name)
		}
		log.Warn("Overwriting existing file", zap.String("file", name))
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	if err := os.WriteFile(name, data, 0644); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}
	return nil
}

// sourceName is base name of the document, it selects the parser and is used
// to derive output file name.
func sourceName(src, entry string) string {
	switch {
	case src == stdinSource:
		return "stdin.md"
	case entry != "":
		return path.Base(entry)
	}
	return filepath.Base(src)
}
