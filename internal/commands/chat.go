package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/geminichat/internal/chat"
	"github.com/diogo/geminichat/internal/config"
	"github.com/diogo/geminichat/internal/logger"
	"github.com/diogo/geminichat/internal/render"
	"github.com/diogo/geminichat/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat session with Gemini.

The chat keeps the conversation history for the session and sends it with
every prompt. Inside the chat:
  /model [id]      choose a model
  /copy [N]        copy code block N (default: the last one)
  /export [path]   save the transcript as Markdown or JSON
  /clear           start a new session
Type 'exit', 'quit', or press Ctrl+C to end the session.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd.Context())
	},
}

func runChat(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// The TUI owns the terminal; logs go to a file instead.
	closer, err := logger.SetupFile(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer closer.Close()

	if cfg.TUI.Theme != "" && !render.SetTUITheme(cfg.TUI.Theme) {
		logger.Named("commands").
			WithField("theme", cfg.TUI.Theme).
			WithField("available", strings.Join(render.TUIThemeNames(), ",")).
			Warn("unknown theme, using default")
	}
	tui.UpdateTheme()

	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	mopts, err := markupOptions(cfg)
	if err != nil {
		return err
	}

	msgs := messagesFor(cfg)
	session := chat.NewSession(client, getModel(cfg),
		chat.WithMessages(msgs),
		chat.WithRenderOptions(mopts),
	)

	return tui.RunChat(session, client,
		tui.WithMessages(msgs),
		tui.WithRenderOptions(chatRenderOptions(cfg)),
		tui.WithContext(ctx),
	)
}

// chatRenderOptions highlights code in the palette of the active theme
// unless a style was chosen explicitly.
func chatRenderOptions(cfg config.Config) render.Options {
	opts := render.LoadOptionsFromConfig(cfg)
	if os.Getenv("GLAMOUR_STYLE") == "" && cfg.Render.Style == config.DefaultConfig().Render.Style {
		opts = opts.WithStyle(render.GetTUITheme().GlamourStyle())
	}
	return opts
}
