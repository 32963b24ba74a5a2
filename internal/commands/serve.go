package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/geminichat/internal/catalog"
	"github.com/diogo/geminichat/internal/logger"
	"github.com/diogo/geminichat/internal/render"
	"github.com/diogo/geminichat/internal/server"
)

var (
	serveAddrFlag    string
	serveCatalogFlag string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the generation backend",
	Long: `Run the HTTP backend the chat client talks to.

Endpoints:
  GET  /models             catalog keyed by model ID, in catalog order
  POST /generate/{model}   {prompt, history} -> {output}
  POST /render             {text} -> {html}
  GET  /healthz            liveness

The Gemini API key is read from serve.api_key or GEMINICHAT_SERVE_API_KEY.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		cat, err := loadCatalog(serveCatalogFlag)
		if err != nil {
			return err
		}
		mopts, err := markupOptions(cfg)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		gen, err := server.NewGeminiGenerator(ctx, cfg.Serve.APIKey)
		if err != nil {
			return err
		}

		addr := cfg.Serve.Addr
		if serveAddrFlag != "" {
			addr = serveAddrFlag
		}

		srv := server.New(cat, gen,
			server.WithMarkupOptions(mopts),
			server.WithRenderOptions(render.LoadOptionsFromConfig(cfg)),
		)

		logger.Named("serve").WithField("addr", addr).WithField("models", len(cat.Models)).Info("listening")
		if err := server.Serve(ctx, addr, srv.Router()); err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		logger.Named("serve").Info("stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddrFlag, "addr", "", "Listen address (default from serve.addr)")
	serveCmd.Flags().StringVar(&serveCatalogFlag, "catalog", "", "TOML catalog to serve instead of the built-in one")
}

// loadCatalog reads path, or the built-in catalog when path is empty.
func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Builtin()
	}
	return catalog.LoadFile(path)
}
