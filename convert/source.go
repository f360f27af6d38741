package convert

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"rtx/markdown"
	"rtx/model"
	"rtx/render"
)

type srcKind int

const (
	srcUnknown srcKind = iota
	srcMarkdown
	srcYAML
)

func (k srcKind) String() string {
	switch k {
	case srcMarkdown:
		return "markdown"
	case srcYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// stdinSource names standard input on the command line.
const stdinSource = "-"

func detectSource(path string) srcKind {
	if path == stdinSource {
		return srcMarkdown
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return srcMarkdown
	case ".yaml", ".yml":
		return srcYAML
	}
	return srcUnknown
}

// readSource returns the raw bytes of path, standard input when path is "-".
func readSource(path string, stdin io.Reader) ([]byte, error) {
	if path == stdinSource {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// loadDocument converts source data into document. Annotated YAML becomes a
// sequence of plain paragraphs, it carries no resource catalog.
func loadDocument(kind srcKind, data []byte, scheme string, log *zap.Logger) (*render.Document, error) {
	switch kind {
	case srcMarkdown:
		return markdown.NewConverter(scheme, log).Convert(data)
	case srcYAML:
		texts, err := model.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return render.Paragraphs(texts...), nil
	}
	return nil, fmt.Errorf("unsupported source kind: %s", kind)
}
