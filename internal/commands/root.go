// Package commands provides CLI commands for geminichat.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/diogo/geminichat/internal/config"
	"github.com/diogo/geminichat/internal/logger"
	"github.com/diogo/geminichat/internal/markup"
	"github.com/diogo/geminichat/internal/models"
)

var (
	// Global flags
	modelFlag  string
	configFlag string
	outputFlag string
	fileFlag   string
	htmlFlag   bool
	rawFlag    bool

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "geminichat [prompt]",
	Short: "Chat with Gemini models from the terminal",
	Long: `geminichat is a chat client for Gemini models. It talks to a small
generation backend over HTTP, renders replies with a restricted markup
(fenced code, inline code, bold, italic, lists) and keeps the conversation
history for the session.

Examples:
  geminichat chat                        Start interactive chat
  geminichat serve                       Run the generation backend
  geminichat models                      List available models
  geminichat "What is Go?"               Send a single query
  geminichat -f prompt.md                Read prompt from file
  cat prompt.md | geminichat             Read prompt from stdin
  geminichat "Hello" --html              Print the reply as HTML
  geminichat "Hello" -o response.md      Save response to file`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			printVersion(cmd.OutOrStdout())
			return nil
		}

		prompt, ok, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		if !ok {
			return cmd.Help()
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client, err := newClient(cfg)
		if err != nil {
			return err
		}

		opts := queryOptions{
			model:  getModel(cfg),
			output: outputFlag,
			html:   htmlFlag,
			raw:    rawFlag,
		}
		return runQuery(cmd.Context(), cfg, client, prompt, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, formatErrorMessage(err, "Error"))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "Model to use (e.g., gemini-2.5-flash)")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Config file (default ~/.geminichat/config.toml)")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Save response to file")
	rootCmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Read prompt from file")
	rootCmd.Flags().BoolVar(&htmlFlag, "html", false, "Print the reply as an HTML fragment")
	rootCmd.Flags().BoolVar(&rawFlag, "raw", false, "Print the raw reply text without decoration")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(versionCmd)
}

// readInput returns the prompt from --file, stdin or the positional argument,
// in that order. ok is false when no input was given.
func readInput(cmd *cobra.Command, args []string) (string, bool, error) {
	if fileFlag != "" {
		data, err := os.ReadFile(fileFlag)
		if err != nil {
			return "", false, fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), true, nil
	}

	if hasStdin(cmd.InOrStdin()) {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", false, fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), true, nil
	}

	if len(args) > 0 {
		return args[0], true, nil
	}
	return "", false, nil
}

// hasStdin reports whether r is piped data rather than a terminal.
func hasStdin(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return r != nil
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// loadConfig resolves configuration from --config, the default locations
// and the environment, and configures logging to match.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(viper.New(), configFlag)
	if err != nil {
		return config.Config{}, err
	}
	logger.Configure(cfg.Verbose)
	return cfg, nil
}

// getModel returns the model to use (from flag or config)
func getModel(cfg config.Config) string {
	if modelFlag != "" {
		return modelFlag
	}
	if cfg.DefaultModel != "" {
		return cfg.DefaultModel
	}
	return models.DefaultModel
}

// messagesFor returns the fixed strings for the configured locale.
func messagesFor(cfg config.Config) models.Messages {
	return models.MessagesFor(models.Locale(cfg.Locale))
}

// markupOptions maps render.list_scope onto the markup renderer.
func markupOptions(cfg config.Config) (markup.Options, error) {
	scope, err := markup.ParseListScope(cfg.Render.ListScope)
	if err != nil {
		return markup.Options{}, err
	}
	return markup.DefaultOptions().WithListScope(scope), nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		printVersion(cmd.OutOrStdout())
	},
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "geminichat %s (built %s)\n", Version, BuildTime)
}
