package inline

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"rtx/model"
	"rtx/resolve"
	"rtx/style"
)

func TestKey_Stable(t *testing.T) {
	a := Key("email_thread", "thread-1")
	if a != Key("email_thread", "thread-1") {
		t.Error("Key() is not deterministic")
	}
	if a == Key("email_thread", "thread-2") || a == Key("calendar_event", "thread-1") {
		t.Error("Key() collides for different resources")
	}
	// separator prevents ambiguity between type and uri
	if Key("ab", "c") == Key("a", "bc") {
		t.Error("Key() is ambiguous")
	}
}

func TestIndices_FirstAppearance(t *testing.T) {
	ix := Indices{}
	got := []int{ix.Add("b"), ix.Add("a"), ix.Add("b"), ix.Add("c")}
	if diff := cmp.Diff([]int{1, 2, 1, 3}, got); diff != "" {
		t.Errorf("indices mismatch (-want +got):\n%s", diff)
	}
}

func TestParseResource(t *testing.T) {
	tests := []struct {
		dest string
		want Info
		ok   bool
	}{
		{dest: "resource:email_thread/abc", want: Info{ResourceType: "email_thread", URI: "abc"}, ok: true},
		{dest: "resource://calendar_event/x/y/z", want: Info{ResourceType: "calendar_event", URI: "x/y/z"}, ok: true},
		{dest: "https://example.com", ok: false},
		{dest: "resource:no-uri", ok: false},
		{dest: "resource:/abc", ok: false},
	}
	for _, tt := range tests {
		got, ok := ParseResource("resource", tt.dest)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseResource(%q) = %+v, %v; want %+v, %v", tt.dest, got, ok, tt.want, tt.ok)
		}
	}
}

func resolvedPlaceholders(t *testing.T, keys ...string) []resolve.Placeholder {
	t.Helper()
	var b model.Builder
	for i, k := range keys {
		b.Append("text ").AppendInline(k, string(rune('A'+i)))
	}
	rt, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return resolve.Resolve(rt, style.Default, style.Black).Placeholders
}

func TestManage_Fallback(t *testing.T) {
	got := Manage(resolvedPlaceholders(t, "k1"), Context{Registry: NewRegistry(nil)})
	if len(got) != 1 {
		t.Fatalf("got %d placeholders", len(got))
	}
	if got[0].Content != nil || got[0].Fallback != "A" {
		t.Errorf("placeholder = %+v, want literal fallback", got[0])
	}
	if got[0].Click() {
		t.Error("fallback placeholder must not be clickable")
	}

	// nil registry behaves the same
	if got := Manage(resolvedPlaceholders(t, "k1"), Context{}); got[0].Content != nil {
		t.Error("nil registry produced content")
	}
}

func TestManage_BadgeClick(t *testing.T) {
	k1, k2 := Key("email_thread", "t1"), Key("calendar_event", "e1")
	catalog := Catalog{
		k1: {ResourceType: "email_thread", URI: "t1"},
		k2: {ResourceType: "calendar_event", URI: "e1"},
	}
	indices := Indices{}
	indices.Add("e1")
	indices.Add("t1")

	var clicked []Info
	reg := NewRegistry(BadgeRenderer(DefaultBadgeOptions(), func(info Info) { clicked = append(clicked, info) }))

	got := Manage(resolvedPlaceholders(t, k1, k2), Context{Density: 2, Catalog: catalog, Indices: indices, Registry: reg})
	if len(got) != 2 {
		t.Fatalf("got %d placeholders", len(got))
	}
	if got[0].Content == nil || got[0].Content.Label != "2" || got[1].Content.Label != "1" {
		t.Errorf("labels = %+v / %+v", got[0].Content, got[1].Content)
	}
	if got[0].Size != (Size{Width: 40, Height: 40}) {
		t.Errorf("Size = %+v, want 40x40 at density 2", got[0].Size)
	}
	if got[0].Content.Shape != ShapeCircle || got[0].Content.Background != DefaultBadgeBackground {
		t.Errorf("badge look = %+v", got[0].Content)
	}

	if !got[0].Click() || !got[1].Click() {
		t.Fatal("Click() returned false for badge")
	}
	want := []Info{
		{ResourceType: "email_thread", URI: "t1", Index: 2},
		{ResourceType: "calendar_event", URI: "e1", Index: 1},
	}
	if diff := cmp.Diff(want, clicked); diff != "" {
		t.Errorf("click events mismatch (-want +got):\n%s", diff)
	}
}

func TestManage_OverrideAndDefaultSize(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Register("star", &Renderer{
		Content: func(Info, func()) Content { return Content{Label: "*"} },
	})
	got := Manage(resolvedPlaceholders(t, "star", "other"), Context{Density: 1.5, Registry: reg})

	if got[0].Content == nil || got[0].Content.Label != "*" {
		t.Errorf("override not used: %+v", got[0])
	}
	if got[0].Size != (Size{Width: 2, Height: 2}) {
		t.Errorf("Size = %+v, want 2x2", got[0].Size)
	}
	if got[1].Content != nil {
		t.Error("unregistered key rendered")
	}

	reg.Register("star", nil)
	if reg.Lookup("star") != nil {
		t.Error("override not removed")
	}
}

func TestManage_StableAcrossPasses(t *testing.T) {
	ctx := Context{Registry: NewRegistry(BadgeRenderer(DefaultBadgeOptions(), nil))}
	first := Manage(resolvedPlaceholders(t, "a", "b"), ctx)
	second := Manage(resolvedPlaceholders(t, "a", "b"), ctx)

	opts := cmpopts.IgnoreFields(Content{}, "Action")
	if diff := cmp.Diff(first, second, opts); diff != "" {
		t.Errorf("placeholders differ between passes (-first +second):\n%s", diff)
	}
}

func TestBadge_LabelTemplate(t *testing.T) {
	tmpl, err := ParseLabel(`{{ .Index }}{{ if eq .Type "email_thread" }}✉{{ end }}`)
	if err != nil {
		t.Fatal(err)
	}
	opts := DefaultBadgeOptions()
	opts.Label = tmpl

	if got := Badge(Info{ResourceType: "email_thread", Index: 3}, opts, nil).Label; got != "3✉" {
		t.Errorf("Label = %q", got)
	}
	if got := Badge(Info{ResourceType: "doc", Index: 4}, opts, nil).Label; got != "4" {
		t.Errorf("Label = %q", got)
	}

	for _, text := range []string{"{{ .Index ", "{{ .Missing }}", "{{ index .URI 99 }}"} {
		if _, err := ParseLabel(text); err == nil {
			t.Errorf("ParseLabel(%q) accepted broken template", text)
		}
	}
}
