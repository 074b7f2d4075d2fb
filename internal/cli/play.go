package cli

import (
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ppiankov/truthslies/internal/app"
	"github.com/ppiankov/truthslies/internal/tui"
)

// playCmd opens the interactive game
var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play interactively in the terminal",
	Long: `Open the interactive board. The source field starts with the saved
source id; ctrl+s saves whatever it holds.

Keys:
  enter, ctrl+g   generate
  ctrl+r          reveal which statements are true
  ctrl+l          clear the board
  ctrl+s          save the source id
  tab             next field
  esc, ctrl+c     quit`,
	Args:    cobra.NoArgs,
	PreRunE: bindSourceFlags,
	RunE:    runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)
	addSourceFlags(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, closeClient, err := app.FromConfig(cmd.Context(), cfg, slog.Default())
	if err != nil {
		return err
	}
	defer func() { _ = closeClient() }()

	if cfg.Source.ID != "" {
		a.SetSourceID(cfg.Source.ID)
	} else if err := a.Load(); err != nil {
		return err
	}

	if err := tui.Run(cmd.Context(), a, cfg.Output.Color, tea.WithAltScreen()); err != nil {
		return fmt.Errorf("run terminal UI: %w", err)
	}
	return nil
}
