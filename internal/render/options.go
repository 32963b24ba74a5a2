// Package render turns markup fragments into HTML or styled terminal text.
package render

import "github.com/diogo/geminichat/internal/models"

// Options configures the display adapters.
type Options struct {
	// Width is the wrap width used when highlighting code (default: 80)
	Width int

	// Style is the glamour style for code blocks: a built-in name or a JSON path
	Style string

	// Highlight enables glamour highlighting of code blocks
	Highlight bool

	// CopyLabel is the resting label of the copy action
	CopyLabel string

	// BlockOffset is the index given to the first code block, so blocks are
	// numbered across a whole transcript instead of per message
	BlockOffset int
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return Options{
		Width:     80,
		Style:     StyleDark,
		Highlight: true,
		CopyLabel: models.MessagesFor(models.LocaleBengali).CopyLabel,
	}
}

// WithWidth returns Options with the specified width.
func (o Options) WithWidth(width int) Options {
	o.Width = width
	return o
}

// WithStyle returns Options with the specified style.
func (o Options) WithStyle(style string) Options {
	o.Style = style
	return o
}

// WithHighlight returns Options with code highlighting enabled/disabled.
func (o Options) WithHighlight(enabled bool) Options {
	o.Highlight = enabled
	return o
}

// WithCopyLabel returns Options with the specified copy label.
func (o Options) WithCopyLabel(label string) Options {
	o.CopyLabel = label
	return o
}

// WithBlockOffset returns Options whose first code block has index offset.
func (o Options) WithBlockOffset(offset int) Options {
	o.BlockOffset = offset
	return o
}
