package config

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReport_Archive(t *testing.T) {
	dir := t.TempDir()
	stored := filepath.Join(dir, "input.md")
	if err := os.WriteFile(stored, []byte("# hello"), 0644); err != nil {
		t.Fatal(err)
	}

	r, err := (&ReporterConfig{Destination: filepath.Join(dir, "report.zip")}).Prepare()
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	r.Store("input/input.md", stored)
	r.Store("missing", filepath.Join(dir, "absent.log"))
	r.StoreData("output-10.txt", []byte("ten"))
	r.StoreData("output-9.txt", []byte("nine"))
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	zr, err := zip.OpenReader(r.Name())
	if err != nil {
		t.Fatalf("unable to open report: %v", err)
	}
	defer zr.Close()

	var names []string
	contents := make(map[string]string)
	for _, f := range zr.File {
		names = append(names, f.Name)
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, _ := io.ReadAll(rc)
		rc.Close()
		contents[f.Name] = string(data)
	}

	want := "MANIFEST,input/input.md,output-9.txt,output-10.txt"
	if got := strings.Join(names, ","); got != want {
		t.Errorf("archive entries = %s, want %s", got, want)
	}
	if contents["input/input.md"] != "# hello" || contents["output-9.txt"] != "nine" {
		t.Errorf("unexpected contents: %v", contents)
	}
	if !strings.Contains(contents["MANIFEST"], "missing") {
		t.Errorf("manifest does not list absent file:\n%s", contents["MANIFEST"])
	}
}

func TestReport_RepeatedData(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	r.StoreData("config", []byte("a"))
	r.StoreData("config", []byte("b"))
	if len(r.entries) != 2 {
		t.Errorf("got %d entries, want 2", len(r.entries))
	}
}

func TestReportClose_NilReport(t *testing.T) {
	var r *Report
	r.Store("x", "y")
	r.StoreData("x", nil)
	if err := r.Close(); err != nil {
		t.Errorf("Close on nil report should not error, got: %v", err)
	}
	if r.Name() != "" {
		t.Errorf("Name() = %q", r.Name())
	}
}

func TestReportClose_NilFile(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	if err := r.Close(); err != nil {
		t.Errorf("Close with nil file should not error, got: %v", err)
	}
}
