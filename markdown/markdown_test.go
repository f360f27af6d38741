package markdown

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zaptest"

	"rtx/inline"
	"rtx/model"
	"rtx/render"
)

func convert(t *testing.T, src string) *render.Document {
	t.Helper()
	doc, err := NewConverter("", zaptest.NewLogger(t)).Convert([]byte(src))
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	return doc
}

func TestConvert_Inlines(t *testing.T) {
	doc := convert(t, "Hello *world* and **bold** `code` ~~gone~~ [go](https://go.dev)\n")
	if len(doc.Blocks) != 1 {
		t.Fatalf("got %d blocks", len(doc.Blocks))
	}
	rt := doc.Blocks[0].Text
	if rt.Text() != "Hello world and bold code gone go" {
		t.Errorf("Text() = %q", rt.Text())
	}
	want := []model.Annotation{
		{Range: model.Range{Start: 6, End: 11}, Tag: model.Italic},
		{Range: model.Range{Start: 16, End: 20}, Tag: model.Bold},
		{Range: model.Range{Start: 21, End: 25}, Tag: model.Code},
		{Range: model.Range{Start: 26, End: 30}, Tag: model.Strikethrough},
		{Range: model.Range{Start: 31, End: 33}, Tag: model.Link("https://go.dev")},
	}
	if diff := cmp.Diff(want, rt.Annotations()); diff != "" {
		t.Errorf("annotations mismatch (-want +got):\n%s", diff)
	}
}

func TestConvert_Resources(t *testing.T) {
	doc := convert(t, "See [thread](resource:email_thread/t1) and [event](resource:calendar_event/e1), again [thread](resource:email_thread/t1).\n")
	k1, k2 := inline.Key("email_thread", "t1"), inline.Key("calendar_event", "e1")

	rt := doc.Blocks[0].Text
	if rt.Text() != "See thread and event, again thread." {
		t.Errorf("Text() = %q", rt.Text())
	}
	want := []model.Annotation{
		{Range: model.Range{Start: 4, End: 10}, Tag: model.Inline(k1)},
		{Range: model.Range{Start: 15, End: 20}, Tag: model.Inline(k2)},
		{Range: model.Range{Start: 28, End: 34}, Tag: model.Inline(k1)},
	}
	if diff := cmp.Diff(want, rt.Annotations()); diff != "" {
		t.Errorf("annotations mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(inline.Indices{"t1": 1, "e1": 2}, doc.Indices); diff != "" {
		t.Errorf("indices mismatch (-want +got):\n%s", diff)
	}
	if got := doc.Catalog[k2]; got != (inline.Info{ResourceType: "calendar_event", URI: "e1", Index: 2}) {
		t.Errorf("catalog entry = %+v", got)
	}
}

func TestConvert_IndicesSpanBlocks(t *testing.T) {
	doc := convert(t, "[a](resource:doc/a)\n\n[b](resource:doc/b) [a](resource:doc/a)\n")
	if diff := cmp.Diff(inline.Indices{"a": 1, "b": 2}, doc.Indices); diff != "" {
		t.Errorf("indices mismatch (-want +got):\n%s", diff)
	}
}

func TestConvert_Blocks(t *testing.T) {
	src := "# Title\n\n- one\n- two\n  1. sub\n\n> quoted\n\n```go\nx := 1\n```\n\n---\n\n<div>raw</div>\n"
	doc := convert(t, src)

	type block struct {
		Kind   render.BlockKind
		Level  int
		Prefix string
		Quote  int
		Text   string
	}
	var got []block
	for _, b := range doc.Blocks {
		bb := block{Kind: b.Kind, Level: b.Level, Prefix: b.Prefix, Quote: b.Quote, Text: b.Raw}
		if b.Text != nil {
			bb.Text = b.Text.Text()
		}
		got = append(got, bb)
	}
	want := []block{
		{Kind: render.BlockHeading, Level: 1, Text: "Title"},
		{Kind: render.BlockListItem, Level: 1, Prefix: "• ", Text: "one"},
		{Kind: render.BlockListItem, Level: 1, Prefix: "• ", Text: "two"},
		{Kind: render.BlockListItem, Level: 2, Prefix: "1. ", Text: "sub"},
		{Kind: render.BlockParagraph, Quote: 1, Text: "quoted"},
		{Kind: render.BlockCode, Text: "x := 1\n"},
		{Kind: render.BlockRule},
	}
	if len(got) != len(want)+1 {
		t.Fatalf("got %d blocks: %+v", len(got), got)
	}
	if diff := cmp.Diff(want, got[:len(want)]); diff != "" {
		t.Errorf("blocks mismatch (-want +got):\n%s", diff)
	}
	if last := got[len(got)-1]; last.Kind != render.BlockHTML || !strings.Contains(last.Text, "<div>raw</div>") {
		t.Errorf("html block = %+v", last)
	}
	if doc.Blocks[5].Language != "go" {
		t.Errorf("Language = %q", doc.Blocks[5].Language)
	}
	if tags := doc.Blocks[0].Text.TagsAt(0); len(tags) != 1 || tags[0] != model.Bold {
		t.Errorf("heading tags = %v", tags)
	}
}

func TestConvert_LineBreaks(t *testing.T) {
	doc := convert(t, "one\ntwo  \nthree\n")
	got := doc.Blocks[0].Text.Text()
	if !strings.HasPrefix(got, "one two") || !strings.HasSuffix(got, "\nthree") {
		t.Errorf("Text() = %q, want soft break as space and hard break as newline", got)
	}
}

func TestConvert_NFC(t *testing.T) {
	doc := convert(t, "cafe\u0301\n")
	rt := doc.Blocks[0].Text
	if rt.Text() != "caf\u00e9" || rt.Len() != 4 {
		t.Errorf("Text() = %q (%d runes)", rt.Text(), rt.Len())
	}
}
