package render

import (
	"rtx/config"
	"rtx/fade"
)

// Options control layout of a single rich text. Width is in terminal cells
// for ANSI output and in "ch" units for HTML, 0 means unlimited. MaxLines 0
// means unlimited.
type Options struct {
	FadeOutEffect  bool
	FadeLength     int
	FadeMultiplier float64
	SoftWrap       bool
	Overflow       config.Overflow
	MaxLines       int
	Width          int
}

// DefaultOptions has no fade, soft wrapping and clipping.
func DefaultOptions() Options {
	return Options{
		FadeLength:     fade.DefaultLength,
		FadeMultiplier: fade.DefaultMultiplier,
		SoftWrap:       true,
		Overflow:       config.OverflowClip,
	}
}

// OptionsFrom converts render configuration to options.
func OptionsFrom(cfg *config.RenderConfig) Options {
	return Options{
		FadeOutEffect:  cfg.Fade.Enable,
		FadeLength:     cfg.Fade.Length,
		FadeMultiplier: cfg.Fade.Multiplier,
		SoftWrap:       cfg.SoftWrap,
		Overflow:       cfg.Overflow,
		MaxLines:       cfg.MaxLines,
		Width:          cfg.Width,
	}
}
