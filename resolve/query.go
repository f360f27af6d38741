package resolve

import (
	"strings"

	"rtx/model"
)

// Placeholder returns registered inline content by key.
func (res *Resolved) Placeholder(key string) (Placeholder, bool) {
	idx, ok := res.byKey[key]
	if !ok {
		return Placeholder{}, false
	}
	return res.Placeholders[idx], true
}

// LinkAt returns link annotation containing source offset which is the one
// runs are styled with: the latest start wins, later input wins on ties.
// Boundaries are half-open: offset equal to link end does not belong to it.
func (res *Resolved) LinkAt(offset int) (model.Annotation, bool) {
	var (
		best  model.Annotation
		found bool
	)
	for _, a := range res.links {
		if !a.Contains(offset) {
			continue
		}
		if !found || a.Start >= best.Start {
			best, found = a, true
		}
	}
	return best, found
}

// RunAt returns run covering source offset.
func (res *Resolved) RunAt(offset int) (Run, bool) {
	for _, r := range res.Runs {
		if r.Start <= offset && offset < r.End {
			return r, true
		}
	}
	return Run{}, false
}

// PlainText concatenates runs using underlying text of placeholders which
// gives back source text.
func (res *Resolved) PlainText() string {
	var sb strings.Builder
	for _, r := range res.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// DisplayText concatenates runs with every placeholder replaced by a
// single object replacement character.
func (res *Resolved) DisplayText() string {
	return DisplayText(res.Runs)
}

// DisplayText is DisplayText for arbitrary run sequence.
func DisplayText(runs []Run) string {
	var sb strings.Builder
	for _, r := range runs {
		if r.IsPlaceholder() {
			sb.WriteString(model.ObjectReplacement)
			continue
		}
		sb.WriteString(r.Text)
	}
	return sb.String()
}
