package render

import (
	"os"

	"github.com/diogo/geminichat/internal/config"
	"github.com/diogo/geminichat/internal/models"
)

// LoadOptionsFromConfig builds render options from the resolved configuration.
// GLAMOUR_STYLE takes precedence over the configured style.
func LoadOptionsFromConfig(cfg config.Config) Options {
	opts := DefaultOptions()

	if cfg.Render.Style != "" {
		opts.Style = cfg.Render.Style
	}
	if cfg.Render.Width > 0 {
		opts.Width = cfg.Render.Width
	}
	opts.CopyLabel = models.MessagesFor(models.Locale(cfg.Locale)).CopyLabel

	if style := os.Getenv("GLAMOUR_STYLE"); style != "" {
		opts.Style = style
	}

	return opts
}
