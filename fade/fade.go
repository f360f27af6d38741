// Package fade implements cosmetic fade out of the trailing visible characters
// of resolved text, used to hint that text continues (streaming, truncation).
package fade

import (
	"errors"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"rtx/resolve"
	"rtx/style"
)

const (
	// DefaultLength and DefaultMultiplier are used by the text widget when
	// fading is requested without explicit parameters.
	DefaultLength     = 20
	DefaultMultiplier = 0.8

	decay = 0.89
)

// ErrAlreadyFaded is returned when runs have been faded before. The transform
// assumes it runs once per render pass.
var ErrAlreadyFaded = errors.New("runs are already faded")

// Span overrides alpha of display characters [Start, End).
type Span struct {
	Start, End int
	Alpha      float64
}

// State is the derived per-render fade description. Spans are sorted, do
// not overlap and cover [Start, Trimmed).
type State struct {
	Start   int
	Trimmed int
	Spans   []Span
}

// Empty reports no-op state.
func (s State) Empty() bool {
	return len(s.Spans) == 0
}

// AlphaAt returns alpha override for display offset.
func (s State) AlphaAt(offset int) (float64, bool) {
	for _, sp := range s.Spans {
		if sp.Start <= offset && offset < sp.End {
			return sp.Alpha, true
		}
	}
	return 0, false
}

// Alpha returns alpha of i-th faded character counting from fade start.
func Alpha(i int, multiplier float64) float64 {
	b := math.Pow(decay, float64(i))
	return b + (1-b)*(1-multiplier)
}

// Compute describes fading of the last length visible characters of text.
// Trailing whitespace is never faded. Multiplier is clamped to [0, 1].
func Compute(text string, length int, multiplier float64) State {
	trimmed := utf8.RuneCountInString(strings.TrimRightFunc(text, unicode.IsSpace))
	if trimmed == 0 || length <= 0 {
		return State{Trimmed: trimmed}
	}
	multiplier = min(max(multiplier, 0), 1)

	actual := min(trimmed, length)
	st := State{Start: trimmed - actual, Trimmed: trimmed}
	for i := range actual {
		a := Alpha(i, multiplier)
		pos := st.Start + i
		if n := len(st.Spans); n > 0 && st.Spans[n-1].Alpha == a {
			st.Spans[n-1].End = pos + 1
			continue
		}
		st.Spans = append(st.Spans, Span{Start: pos, End: pos + 1, Alpha: a})
	}
	return st
}

// Apply splits runs on fade span boundaries and layers alpha over run color.
// Runs without color get base color. Everything else about the style is kept.
func Apply(runs []resolve.Run, st State, base style.Color) ([]resolve.Run, error) {
	for _, r := range runs {
		if r.Faded {
			return nil, ErrAlreadyFaded
		}
	}
	if st.Empty() {
		return runs, nil
	}

	out := make([]resolve.Run, 0, len(runs)+st.Trimmed-st.Start)
	pos := 0 // display offset of the current run
	for _, r := range runs {
		n := r.DisplayLen()
		end := pos + n
		if end <= st.Start || pos >= st.Trimmed {
			out = append(out, r)
			pos = end
			continue
		}

		if r.IsPlaceholder() {
			if a, ok := st.AlphaAt(pos); ok {
				r = faded(r, a, base)
			}
			out = append(out, r)
			pos = end
			continue
		}

		text := []rune(r.Text)
		cut := 0 // rune index in run where the current piece starts
		for cut < n {
			at := pos + cut
			a, ok := st.AlphaAt(at)
			// find end of piece with uniform (possibly absent) alpha
			next := cut + 1
			for next < n {
				b, okb := st.AlphaAt(pos + next)
				if okb != ok || b != a {
					break
				}
				next++
			}
			piece := r
			piece.Start, piece.End = r.Start+cut, r.Start+next
			piece.Text = string(text[cut:next])
			if ok {
				piece = faded(piece, a, base)
			}
			out = append(out, piece)
			cut = next
		}
		pos = end
	}
	return out, nil
}

func faded(r resolve.Run, alpha float64, base style.Color) resolve.Run {
	c := r.Style.Color
	if c.IsZero() {
		c = base
	}
	r.Style.Color = c.WithAlpha(alpha)
	r.Faded = true
	return r
}
