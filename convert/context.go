package convert

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"rtx/config"
	"rtx/css"
	"rtx/inline"
	"rtx/render"
	"rtx/state"
	"rtx/style"
)

// loadStylesheet reads configured stylesheet and layers it over the default
// string style. Without stylesheet defaults are used as is.
func loadStylesheet(path string, log *zap.Logger) (style.StringStyle, error) {
	if path == "" {
		return style.Default, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return style.StringStyle{}, fmt.Errorf("unable to read stylesheet from %q: %w", path, err)
	}
	sheet := css.NewParser(log).Parse(data, path)
	log.Debug("Stylesheet loaded", zap.String("path", path), zap.Int("rules", len(sheet.Rules)))
	return sheet.StringStyle(log), nil
}

func badgeOptions(cfg *config.BadgeConfig) (inline.BadgeOptions, error) {
	opts := inline.BadgeOptions{
		Size:       cfg.Size,
		FontSize:   cfg.FontSize,
		Background: cfg.Background,
		Foreground: cfg.Foreground,
	}
	if cfg.LabelTemplate != "" {
		tmpl, err := inline.ParseLabel(cfg.LabelTemplate)
		if err != nil {
			return opts, err
		}
		opts.Label = tmpl
	}
	return opts, nil
}

// newRenderContext prepares render context from program environment. Every
// resource is drawn as a badge when badges are enabled, otherwise resources
// fall back to their alternate text.
func newRenderContext(env *state.LocalEnv, onClick func(inline.Info), log *zap.Logger) (*render.Context, error) {
	rc := render.NewContext(log)
	rc.Style = env.Style
	rc.ContentColor = env.Cfg.Render.ContentColor
	rc.Background = env.Cfg.Render.Background
	rc.Inline.Density = inline.Density(env.Cfg.Render.Density)

	var def *inline.Renderer
	if env.Cfg.Resources.Badges {
		opts, err := badgeOptions(&env.Cfg.Resources.Badge)
		if err != nil {
			return nil, err
		}
		def = inline.BadgeRenderer(opts, onClick)
	}
	rc.Inline.Registry = inline.NewRegistry(def)
	return rc, nil
}
