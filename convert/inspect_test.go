package convert

import (
	"path/filepath"
	"strings"
	"testing"

	"rtx/config"
)

const inspectSource = "Read [go](https://go.dev) or [doc](resource:document/d1).\n\n```\ncode\n```\n"

func TestInspect_Dump(t *testing.T) {
	ctx, env := setupTestEnv(t)
	req, out := newRequest(config.OutputFmtAnsi, inspectSource)

	if err := inspect(ctx, stdinSource, probe{at: -1}, req, env.Log); err != nil {
		t.Fatalf("inspect() error = %v", err)
	}
	got := out.String()
	for _, want := range []string{
		"document blocks=2 resources=1\n",
		"  block 0 (paragraph) level=0 quote=0\n",
		"    text: \"Read go or doc.\"\n",
		"      run [5,7) text=\"go\" style=underline fg=#0000ff link=https://go.dev\n",
		"placeholder=",
		"type=document uri=d1 index=1 size=20x20 shown=true label=\"1\"\n",
		"  block 1 (code) level=0 quote=0\n",
		"    raw: \"code\\n\"\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("dump does not contain %q:\n%s", want, got)
		}
	}
}

func TestInspect_YAML(t *testing.T) {
	ctx, env := setupTestEnv(t)
	req, out := newRequest(config.OutputFmtAnsi, inspectSource)

	if err := inspect(ctx, stdinSource, probe{at: -1, yaml: true}, req, env.Log); err != nil {
		t.Fatalf("inspect() error = %v", err)
	}
	got := out.String()
	for _, want := range []string{
		"text: Read go or doc.\n",
		"tag: link\n",
		"destination: https://go.dev\n",
		"tag: inline\n",
		"key: document/d1\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("yaml does not contain %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "code") {
		t.Errorf("code block exported:\n%s", got)
	}

	// exported form renders the same badge numbers
	src := filepath.Join(t.TempDir(), "doc.yaml")
	writeFile(t, src, got)
	req, rendered := newRequest(config.OutputFmtAnsi, "")
	if err := process(ctx, src, "", req, env.Log); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	if want := "Read go or  1 .\n"; rendered.String() != want {
		t.Errorf("rendered = %q, want %q", rendered.String(), want)
	}
}

func TestInspect_Click(t *testing.T) {
	tests := []struct {
		name   string
		pr     probe
		badges bool
		want   string
	}{
		{name: "link", pr: probe{at: 5}, badges: true, want: "link https://go.dev\n"},
		{name: "link end is outside", pr: probe{at: 7}, badges: true, want: "nothing at 7\n"},
		{name: "badge", pr: probe{at: 12}, badges: true, want: "resource document d1 #1\n"},
		{name: "no badges", pr: probe{at: 12}, want: "text \"doc\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, env := setupTestEnv(t)
			env.Cfg.Resources.Badges = tt.badges
			req, out := newRequest(config.OutputFmtAnsi, inspectSource)

			if err := inspect(ctx, stdinSource, tt.pr, req, env.Log); err != nil {
				t.Fatalf("inspect() error = %v", err)
			}
			if out.String() != tt.want {
				t.Errorf("output = %q, want %q", out.String(), tt.want)
			}
		})
	}
}

func TestInspect_BadBlock(t *testing.T) {
	ctx, env := setupTestEnv(t)
	for _, block := range []int{1, 5} {
		req, _ := newRequest(config.OutputFmtAnsi, inspectSource)
		if err := inspect(ctx, stdinSource, probe{block: block, at: 0}, req, env.Log); err == nil {
			t.Errorf("inspect() of block %d expected error", block)
		}
	}
}
