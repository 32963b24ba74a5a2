package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/diogo/geminichat/internal/catalog"
	"github.com/diogo/geminichat/internal/models"
)

var modelsLocalFlag bool

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models offered by the backend",
	Long: `List the models offered by the backend, grouped the way the chat
selector shows them. The preferred models come first and the default choice
is marked with '*'. Use --local to list the built-in catalog without a
network call.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if modelsLocalFlag {
			cat, err := catalog.Builtin()
			if err != nil {
				return err
			}
			printSelection(cmd.OutOrStdout(), catalog.BuildSelection(cat.Models))
			return nil
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client, err := newClient(cfg)
		if err != nil {
			return err
		}

		spin := newSpinner(cmd.ErrOrStderr(), "Loading models")
		spin.start()
		sel, err := loadSelection(cmd.Context(), client)
		if err != nil {
			spin.stopWithError()
			return err
		}
		spin.stopWithSuccess(fmt.Sprintf("Loaded %d models", len(sel.Options())))

		printSelection(cmd.OutOrStdout(), sel)
		return nil
	},
}

func init() {
	modelsCmd.Flags().BoolVar(&modelsLocalFlag, "local", false, "List the built-in catalog instead of asking the backend")
}

type catalogSource interface {
	FetchModels(ctx context.Context) ([]models.ModelInfo, error)
}

func loadSelection(ctx context.Context, src catalogSource) (catalog.Selection, error) {
	entries, err := src.FetchModels(ctx)
	if err != nil {
		return catalog.Selection{}, err
	}
	return catalog.BuildSelection(entries), nil
}

// printSelection writes one heading per group and one line per model.
func printSelection(w io.Writer, sel catalog.Selection) {
	heading := lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	dim := lipgloss.NewStyle().Foreground(colorTextDim)

	for i, g := range sel.Groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, heading.Render(g.Label))
		for _, o := range g.Options {
			marker := " "
			if o.ID == sel.Selected {
				marker = "*"
			}
			fmt.Fprintf(w, "%s %s  %s\n", marker, o.ID, dim.Render(o.Label))
		}
	}
}
