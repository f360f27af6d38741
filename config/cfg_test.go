package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rupor-github/gencfg"

	"rtx/style"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}
	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}

	r := cfg.Render
	if r.Format != OutputFmtAnsi || r.Overflow != OverflowClip || !r.SoftWrap || r.MaxLines != 0 {
		t.Errorf("unexpected render defaults: %+v", r)
	}
	if r.Fade.Enable || r.Fade.Length != 20 || r.Fade.Multiplier != 0.8 {
		t.Errorf("unexpected fade defaults: %+v", r.Fade)
	}
	if r.ContentColor != style.Black || r.Background != style.White {
		t.Errorf("colors = %v on %v", r.ContentColor, r.Background)
	}
	if cfg.Resources.Scheme != "resource" || cfg.Resources.Badge.Size != 20 {
		t.Errorf("unexpected resources defaults: %+v", cfg.Resources)
	}
	if cfg.Resources.Badge.Background != style.MustParseColor("#6b7280") {
		t.Errorf("badge background = %v", cfg.Resources.Badge.Background)
	}
	// label template must survive configuration template expansion
	if cfg.Resources.Badge.LabelTemplate != "{{ .Index }}" {
		t.Errorf("label template = %q", cfg.Resources.Badge.LabelTemplate)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	path := writeConfig(t, `version: 1
render:
  format: html
  width: 60
  soft_wrap: false
  overflow: ellipsis
  max_lines: 3
  content_color: "#112233"
  fade:
    enable: true
    multiplier: 0.5
logging:
  console:
    level: debug
`)

	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	r := cfg.Render
	if r.Format != OutputFmtHtml || r.Width != 60 || r.SoftWrap || r.Overflow != OverflowEllipsis || r.MaxLines != 3 {
		t.Errorf("render config not applied: %+v", r)
	}
	if r.ContentColor != style.RGB(0x11, 0x22, 0x33) {
		t.Errorf("ContentColor = %v", r.ContentColor)
	}
	// not mentioned values keep defaults
	if !r.Fade.Enable || r.Fade.Multiplier != 0.5 || r.Fade.Length != 20 {
		t.Errorf("fade config = %+v", r.Fade)
	}
	if cfg.Logging.ConsoleLogger.Level != "debug" || cfg.Logging.FileLogger.Level != "none" {
		t.Errorf("logging config = %+v", cfg.Logging)
	}
}

func TestLoadConfiguration_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "invalid yaml", content: "version: 1\nrender:\n  width: 1\n  invalid indent\n"},
		{name: "unknown field", content: "version: 1\nunknown_field: value\n"},
		{name: "bad version", content: "version: 2\n"},
		{name: "bad enum", content: "version: 1\nrender:\n  overflow: wrap\n"},
		{name: "bad multiplier", content: "version: 1\nrender:\n  fade:\n    multiplier: 1.5\n"},
		{name: "bad color", content: "version: 1\nrender:\n  background: white\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfiguration(writeConfig(t, tt.content)); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := LoadConfiguration("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestLoadConfiguration_WithOptions(t *testing.T) {
	option := func(opts *gencfg.ProcessingOptions) {}
	if _, err := LoadConfiguration("", option); err != nil {
		t.Fatalf("LoadConfiguration() with options error = %v", err)
	}
}

func TestPrepareAndDump(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, true)
	if err != nil {
		t.Fatalf("Prepared config is not valid: %v", err)
	}

	dumped, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	again, err := unmarshalConfig(dumped, &Config{}, false)
	if err != nil {
		t.Fatalf("Dumped config cannot be loaded: %v", err)
	}
	if again.Render != cfg.Render || again.Resources != cfg.Resources {
		t.Errorf("config changed after dump/load:\n%+v\n%+v", again.Render, cfg.Render)
	}
}

func TestEnums(t *testing.T) {
	if OutputFmtHtml.Ext() != ".html" || OutputFmtAnsi.Ext() != ".txt" {
		t.Error("unexpected extensions")
	}
	if got := OutputFmt(99).String(); got != "OutputFmt(99)" {
		t.Errorf("String() = %q", got)
	}
	if _, err := ParseOverflow("wrap"); !errors.Is(err, ErrInvalidOverflow) {
		t.Errorf("ParseOverflow() error = %v", err)
	}
	if o, err := ParseOverflow("Ellipsis"); err != nil || o != OverflowEllipsis {
		t.Errorf("ParseOverflow() = %v, %v", o, err)
	}
}
