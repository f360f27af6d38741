package convert

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"

	"rtx/config"
	"rtx/state"
)

// buildOutputPath returns file rendered document should be written to, empty
// string stands for STDOUT. When destination is an existing directory (or
// looks like one) file name is derived from the document name, otherwise
// destination is used as is.
func buildOutputPath(name, dst string, format config.OutputFmt, env *state.LocalEnv) string {
	if dst == "" || !isDirectory(dst) {
		return dst
	}
	return filepath.Join(dst, buildFileName(name, format, env))
}

// buildFileName replaces document extension with the one of output format,
// cleaning up and if requested transliterating the rest.
func buildFileName(name string, format config.OutputFmt, env *state.LocalEnv) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if env.Transliterate {
		base = slug.Make(base)
	}
	return config.CleanFileName(base) + format.Ext()
}

func isDirectory(path string) bool {
	if strings.HasSuffix(path, string(os.PathSeparator)) {
		return true
	}
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
