package archive

import (
	"archive/zip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type entry struct {
	name, content string
	dir           bool
}

func makeArchive(t *testing.T, entries ...entry) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "test.zip")
	f, err := os.Create(name)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for _, e := range entries {
		if e.dir {
			hdr := &zip.FileHeader{Name: e.name}
			hdr.SetMode(os.ModeDir | 0755)
			if _, err := w.CreateHeader(hdr); err != nil {
				t.Fatal(err)
			}
			continue
		}
		fw, err := w.Create(e.name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := io.WriteString(fw, e.content); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return name
}

func collect(t *testing.T, archive, prefix string, match func(string) bool) (map[string]string, error) {
	t.Helper()
	got := make(map[string]string)
	err := Walk(archive, prefix, match, func(name string, r io.Reader) error {
		data, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		got[name] = string(data)
		return nil
	})
	return got, err
}

func TestWalk(t *testing.T) {
	arc := makeArchive(t,
		entry{name: "docs/", dir: true},
		entry{name: "docs/a.md", content: "alpha"},
		entry{name: "docs/b.yaml", content: "beta"},
		entry{name: "docs/skip.txt", content: "skip"},
		entry{name: "top.md", content: "top"},
	)
	isSource := func(name string) bool {
		return slices.Contains([]string{".md", ".yaml"}, filepath.Ext(name))
	}

	tests := []struct {
		name   string
		prefix string
		match  func(string) bool
		want   map[string]string
	}{
		{name: "everything", want: map[string]string{"docs/a.md": "alpha", "docs/b.yaml": "beta", "docs/skip.txt": "skip", "top.md": "top"}},
		{name: "prefix", prefix: "docs/", match: isSource, want: map[string]string{"docs/a.md": "alpha", "docs/b.yaml": "beta"}},
		{name: "single entry", prefix: "top.md", want: map[string]string{"top.md": "top"}},
		{name: "no match", prefix: "none/", want: map[string]string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := collect(t, arc, tt.prefix, tt.match)
			if err != nil {
				t.Fatalf("Walk() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("entries mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWalk_StopsOnError(t *testing.T) {
	arc := makeArchive(t, entry{name: "a.md"}, entry{name: "b.md"})
	stop := errors.New("stop")
	calls := 0
	err := Walk(arc, "", nil, func(string, io.Reader) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) || calls != 1 {
		t.Errorf("Walk() error = %v after %d calls, want stop after 1", err, calls)
	}
}

func TestWalk_Invalid(t *testing.T) {
	notZip := filepath.Join(t.TempDir(), "bad.zip")
	if err := os.WriteFile(notZip, []byte("not a zip file"), 0644); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"/nonexistent/file.zip", notZip} {
		if _, err := collect(t, name, "", nil); err == nil {
			t.Errorf("Walk(%s) expected error", name)
		}
	}

	unsafe := makeArchive(t, entry{name: "ok.md"}, entry{name: "../evil.md"})
	if _, err := collect(t, unsafe, "", nil); err == nil || !strings.Contains(err.Error(), "unsafe path") {
		t.Errorf("Walk() of traversing archive error = %v", err)
	}
}

func TestIsSafePath(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{name: "docs/a.md", want: true},
		{name: "a..b.md", want: true},
		{name: "/etc/passwd", want: false},
		{name: `\windows\a.md`, want: false},
		{name: "docs/../../a.md", want: false},
	}
	for _, tt := range tests {
		if got := isSafePath(tt.name); got != tt.want {
			t.Errorf("isSafePath(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestIsArchive(t *testing.T) {
	if !IsArchive("docs.ZIP") || IsArchive("docs.md") {
		t.Error("IsArchive() misdetects extension")
	}
}
