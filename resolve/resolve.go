// Package resolve flattens rich text annotations into ordered maximal runs of
// uniformly styled text and a registry of inline content placeholders.
package resolve

import (
	"cmp"
	"slices"
	"strings"
	"unicode/utf8"

	"rtx/model"
	"rtx/style"
)

// Run is a maximal piece of text sharing one combined style. Start and End
// are offsets into source text. Placeholder runs stand for a single display
// character; their Text is the underlying (alternate) text.
type Run struct {
	Start, End  int
	Text        string
	Style       style.Style
	Link        string
	Placeholder string
	Faded       bool
}

func (r Run) IsPlaceholder() bool {
	return r.Placeholder != ""
}

// DisplayLen returns number of display characters the run occupies.
func (r Run) DisplayLen() int {
	if r.IsPlaceholder() {
		return 1
	}
	return utf8.RuneCountInString(r.Text)
}

// Placeholder is an inline content annotation registered during resolution.
type Placeholder struct {
	Key        string
	Annotation model.Annotation
	Alternate  string
	// Shown is false for zero-length and shadowed annotations, those are
	// registered but have no run.
	Shown bool
}

// Resolved is the output of span resolution for one rich text.
type Resolved struct {
	Runs         []Run
	Placeholders []Placeholder

	byKey map[string]int
	links []model.Annotation
}

// event kinds are ordered so that ends are processed before starts at the
// same offset
const (
	evEnd = iota
	evStart
)

type event struct {
	pos   int
	kind  int
	index int // annotation index
}

// order in which format deltas are layered, colors from later entries win
var layering = []model.TagKind{
	model.KindBold,
	model.KindItalic,
	model.KindUnderline,
	model.KindStrikethrough,
	model.KindCode,
	model.KindLink,
}

func deltaFor(ss style.StringStyle, kind model.TagKind) *style.Delta {
	switch kind {
	case model.KindBold:
		return ss.Bold
	case model.KindItalic:
		return ss.Italic
	case model.KindUnderline:
		return ss.Underline
	case model.KindStrikethrough:
		return ss.Strikethrough
	case model.KindCode:
		return ss.Code
	case model.KindLink:
		return ss.Link
	}
	return nil
}

// Resolve sweeps annotation boundaries left to right and produces runs.
// Style for unannotated text is content color with no attributes, every
// annotation layers its delta from ss (which is expected to be resolved
// already, unset deltas are ignored).
func Resolve(rt *model.RichText, ss style.StringStyle, content style.Color) *Resolved {
	annotations := rt.Annotations()
	res := &Resolved{byKey: make(map[string]int)}

	// Inline content owns its range, first one (by start, then input order)
	// wins when several start at the same place.
	var inlines []int
	for i, a := range annotations {
		switch a.Tag.Kind {
		case model.KindInline:
			inlines = append(inlines, i)
		case model.KindLink:
			res.links = append(res.links, a)
		}
	}
	slices.SortStableFunc(inlines, func(a, b int) int {
		return cmp.Compare(annotations[a].Start, annotations[b].Start)
	})
	owned := make(map[int]int) // start offset -> annotation index
	covered := 0
	for _, i := range inlines {
		a := annotations[i]
		shown := !a.Empty() && a.Start >= covered
		if shown {
			owned[a.Start] = i
			covered = a.End
		}
		res.register(a, rt.Slice(a.Range), shown)
	}

	events := make([]event, 0, 2*len(annotations))
	for i, a := range annotations {
		if a.Empty() || a.Tag.Kind == model.KindInline {
			continue
		}
		events = append(events, event{pos: a.Start, kind: evStart, index: i}, event{pos: a.End, kind: evEnd, index: i})
	}
	slices.SortFunc(events, func(a, b event) int {
		return cmp.Or(cmp.Compare(a.pos, b.pos), cmp.Compare(a.kind, b.kind), cmp.Compare(a.index, b.index))
	})

	var (
		active      = make(map[model.TagKind]int)
		activeLinks []int
		cur         = style.Style{Color: content}
		curLink     string
		runStart    int
		ev          int
		text        strings.Builder
	)

	recombine := func() {
		cur = style.Style{Color: content}
		for _, k := range layering {
			if active[k] == 0 {
				continue
			}
			if d := deltaFor(ss, k); d != nil {
				cur = cur.Apply(*d)
			}
		}
		curLink = ""
		if n := len(activeLinks); n > 0 {
			curLink = annotations[activeLinks[n-1]].Tag.Destination
		}
	}

	flush := func(end int) {
		if end <= runStart {
			return
		}
		res.appendRun(Run{Start: runStart, End: end, Text: text.String(), Style: cur, Link: curLink})
		text.Reset()
		runStart = end
	}

	apply := func(e event) {
		a := annotations[e.index]
		if e.kind == evStart {
			active[a.Tag.Kind]++
			if a.Tag.Kind == model.KindLink {
				activeLinks = append(activeLinks, e.index)
			}
			return
		}
		active[a.Tag.Kind]--
		if a.Tag.Kind == model.KindLink {
			activeLinks = slices.DeleteFunc(activeLinks, func(i int) bool { return i == e.index })
		}
	}

	length := rt.Len()
	plain := []rune(rt.Text())
	for pos := 0; pos <= length; {
		if ev < len(events) && events[ev].pos == pos {
			for ev < len(events) && events[ev].pos == pos {
				apply(events[ev])
				ev++
			}
			flush(pos)
			recombine()
		}
		if pos == length {
			break
		}

		if i, ok := owned[pos]; ok {
			flush(pos)
			a := annotations[i]
			res.appendRun(Run{
				Start:       a.Start,
				End:         a.End,
				Text:        rt.Slice(a.Range),
				Style:       cur,
				Link:        curLink,
				Placeholder: a.Tag.Key,
			})
			// formats changing inside of inline content only affect text
			// after it
			for ev < len(events) && events[ev].pos < a.End {
				apply(events[ev])
				ev++
			}
			recombine()
			runStart, pos = a.End, a.End
			continue
		}

		text.WriteRune(plain[pos])
		pos++
	}
	flush(length)
	return res
}

func (res *Resolved) register(a model.Annotation, alternate string, shown bool) {
	if idx, ok := res.byKey[a.Tag.Key]; ok {
		// same payload - same object, keep first occurrence but remember it
		// is visible somewhere
		res.Placeholders[idx].Shown = res.Placeholders[idx].Shown || shown
		return
	}
	res.byKey[a.Tag.Key] = len(res.Placeholders)
	res.Placeholders = append(res.Placeholders, Placeholder{Key: a.Tag.Key, Annotation: a, Alternate: alternate, Shown: shown})
}

// appendRun adds run merging it with previous one when possible, so runs stay
// maximal.
func (res *Resolved) appendRun(r Run) {
	if n := len(res.Runs); n > 0 && !r.IsPlaceholder() {
		prev := &res.Runs[n-1]
		if !prev.IsPlaceholder() && prev.End == r.Start && prev.Style == r.Style && prev.Link == r.Link {
			prev.End = r.End
			prev.Text += r.Text
			return
		}
	}
	res.Runs = append(res.Runs, r)
}
