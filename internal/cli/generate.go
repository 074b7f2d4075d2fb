package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/truthslies/internal/app"
	"github.com/ppiankov/truthslies/internal/model"
	"github.com/ppiankov/truthslies/internal/present"
)

var (
	genTruths  string
	genLies    string
	genReveal  bool
	genJSON    bool
	genNoColor bool
)

// generateCmd runs one generate action and prints the board
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one round of truths and lies",
	Long: `Fetch rows from the source, ask the generation service for statements
and print them labeled in count-down order.

The counts are parsed best-effort: anything that is not a non-negative
integer falls back to the configured default (1 truth, 0 lies).

Example:
  truthslies generate --source 1AbC...xyz --truths 2 --lies 1
  truthslies generate --source ./solves.csv --range "Solves!A1:B" --reveal
  truthslies generate --source ./solves.csv --transport local --json`,
	Args:    cobra.NoArgs,
	PreRunE: bindSourceFlags,
	RunE:    runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	addSourceFlags(generateCmd)
	generateCmd.Flags().StringVarP(&genTruths, "truths", "t", "", "number of true statements")
	generateCmd.Flags().StringVarP(&genLies, "lies", "l", "", "number of false statements")
	generateCmd.Flags().BoolVar(&genReveal, "reveal", false, "color statements by truth after generating")
	generateCmd.Flags().BoolVar(&genJSON, "json", false, "print statements as JSON")
	generateCmd.Flags().BoolVar(&genNoColor, "no-color", false, "disable colored output")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, closeClient, err := app.FromConfig(cmd.Context(), cfg, slog.Default())
	if err != nil {
		return err
	}
	defer func() { _ = closeClient() }()

	sourceID := cfg.Source.ID
	if sourceID == "" {
		if err := a.Load(); err != nil {
			return err
		}
		sourceID = a.SourceID()
	}
	if sourceID == "" {
		return fmt.Errorf("no source configured: pass --source or run 'truthslies config set-source <id>'")
	}

	out, err := a.Generate(cmd.Context(), app.Input{SourceID: sourceID, Truths: genTruths, Lies: genLies})
	if err != nil {
		if errors.Is(err, app.ErrSourceUnavailable) {
			fmt.Fprintf(os.Stderr, "✗ Could not read source: %s\n", out.SourceField)
		}
		return err
	}

	if genJSON {
		return writeStatementsJSON(cmd.OutOrStdout(), out.Statements)
	}

	if genReveal {
		a.Reveal()
	}
	printBoard(cmd.OutOrStdout(), a.Board(), cfg.Output.Color && !genNoColor)
	return nil
}

func printBoard(w io.Writer, board *present.Board, color bool) {
	entries := board.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(w, "(no statements)")
		return
	}
	fmt.Fprintln(w, present.NewRenderer(color).Board(entries))
}

func writeStatementsJSON(w io.Writer, statements []model.Statement) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(model.GenerationResponse{Statements: statements})
}
