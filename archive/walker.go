// Package archive reads source documents packed into zip archives.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strings"
)

// WalkFunc is called for every accepted entry. Name is the entry path inside
// archive (always with forward slashes), r is positioned at the start of
// uncompressed data and is valid only during the call. If an error is
// returned, processing stops.
type WalkFunc func(name string, r io.Reader) error

// Walk visits regular entries of archive whose names start with prefix and
// are accepted by match (nil accepts everything). Archives with absolute or
// traversing ("..") entry names are rejected as a whole.
func Walk(archive, prefix string, match func(name string) bool, walkFn WalkFunc) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		name := f.FileHeader.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if f.FileInfo().IsDir() || !strings.HasPrefix(name, prefix) {
			continue
		}
		if match != nil && !match(name) {
			continue
		}
		if err := visit(f, walkFn); err != nil {
			return err
		}
	}
	return nil
}

func visit(f *zip.File, walkFn WalkFunc) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("zip entry %q: %w", f.Name, err)
	}
	defer rc.Close()
	return walkFn(f.Name, rc)
}

// IsArchive reports whether file name looks like zip archive.
func IsArchive(name string) bool {
	return strings.EqualFold(path.Ext(name), ".zip")
}

func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, `\`) {
		return false
	}
	for part := range strings.SplitSeq(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
