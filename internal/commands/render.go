package commands

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/geminichat/internal/config"
	"github.com/diogo/geminichat/internal/markup"
	"github.com/diogo/geminichat/internal/render"
)

var (
	renderHTMLFlag      bool
	renderSanitizeFlag  bool
	renderPlainFlag     bool
	renderListScopeFlag string
	renderStyleFlag     string
)

// renderMode selects the output of the render command.
type renderMode int

const (
	renderTerminal renderMode = iota
	renderHTML
	renderSanitized
	renderPlain
)

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Render reply markup locally",
	Long: `Render text with the reply markup (fenced code, inline code, bold,
italic, lists) without contacting the backend. Reads the file argument or
stdin and prints styled terminal text, an HTML fragment with --html, or the
text a reader would copy with --plain.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			data []byte
			err  error
		)
		if len(args) > 0 {
			data, err = os.ReadFile(args[0])
		} else {
			data, err = io.ReadAll(cmd.InOrStdin())
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if renderListScopeFlag != "" {
			cfg.Render.ListScope = renderListScopeFlag
		}
		if err := applyStyle(&cfg, renderStyleFlag); err != nil {
			return err
		}

		mode := renderTerminal
		switch {
		case renderPlainFlag:
			mode = renderPlain
		case renderHTMLFlag && renderSanitizeFlag:
			mode = renderSanitized
		case renderHTMLFlag:
			mode = renderHTML
		}
		return renderText(cmd.OutOrStdout(), cfg, string(data), mode)
	},
}

func init() {
	renderCmd.Flags().BoolVar(&renderHTMLFlag, "html", false, "Print an HTML fragment")
	renderCmd.Flags().BoolVar(&renderSanitizeFlag, "sanitize", false, "Pass the HTML fragment through the allow-list policy")
	renderCmd.Flags().BoolVar(&renderPlainFlag, "plain", false, "Print the text without markup, as copied from the chat")
	renderCmd.Flags().StringVar(&renderStyleFlag, "style", "", "Code highlighting style (default from render.style)")
	renderCmd.Flags().StringVar(&renderListScopeFlag, "list-scope", "", "List wrapping: fragment or runs (default from render.list_scope)")
}

// applyStyle overrides the highlighting style when style names a known one.
func applyStyle(cfg *config.Config, style string) error {
	if style == "" {
		return nil
	}
	if !slices.Contains(render.StyleNames(), style) {
		return fmt.Errorf("unknown style %q (available: %s)", style, strings.Join(render.StyleNames(), ", "))
	}
	cfg.Render.Style = style
	return nil
}

// renderText formats text and writes it in the given mode.
func renderText(w io.Writer, cfg config.Config, text string, mode renderMode) error {
	mopts, err := markupOptions(cfg)
	if err != nil {
		return err
	}
	frag := markup.RenderWithOptions(text, mopts)
	ropts := render.LoadOptionsFromConfig(cfg)

	var out string
	switch mode {
	case renderHTML:
		out = render.HTML(frag, ropts)
	case renderSanitized:
		out = render.SanitizedHTML(frag, ropts)
	case renderPlain:
		out = render.PlainText(frag)
	default:
		out = render.Terminal(frag, ropts, nil)
	}
	_, err = fmt.Fprintln(w, out)
	return err
}
