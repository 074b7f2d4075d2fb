package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/truthslies/internal/app"
	"github.com/ppiankov/truthslies/internal/present"
	"github.com/ppiankov/truthslies/internal/worker"
)

var (
	concurrency  int
	batchTimeout time.Duration
	batchTruths  uint32
	batchLies    uint32
	batchJSON    bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Generate rounds for many sources in parallel",
	Long: `Batch generates one round per line of the input file:
- Each line is "sourceID [range]"; blank lines and # comments are skipped
- Rounds run concurrently with a configurable worker count
- Calls to the same source are rate limited
- Results are printed in file order

Example:
  truthslies batch rounds.txt
  truthslies batch rounds.txt --truths 2 --lies 2 --concurrency 8
  truthslies batch rounds.txt --transport local --timeout 5m`,
	Args:    cobra.ExactArgs(1),
	PreRunE: bindSourceFlags,
	RunE:    runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	addSourceFlags(batchCmd)
	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().Uint32Var(&batchTruths, "truths", 1, "true statements per round")
	batchCmd.Flags().Uint32Var(&batchLies, "lies", 1, "false statements per round")
	batchCmd.Flags().BoolVar(&batchJSON, "json", false, "print each round's statements as JSON")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Defaults.Truths = batchTruths
	cfg.Defaults.Lies = batchLies

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Truths & Lies Batch\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Per round:    %d truths, %d lies\n", batchTruths, batchLies)
	fmt.Fprintf(os.Stderr, "  Transport:    %s\n", cfg.Service.Transport)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	a, closeClient, err := app.FromConfig(ctx, cfg, slog.Default())
	if err != nil {
		return err
	}
	defer func() { _ = closeClient() }()

	processor := worker.NewBatchProcessor(a, concurrency, cfg.Service.RequestsPerSecond, cfg.Service.BurstSize)

	results, err := processor.ProcessFile(ctx, file, cfg.Source.Range)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	out := cmd.OutOrStdout()
	color := viper.GetBool("output.color") && !batchJSON
	successCount := 0
	failureCount := 0

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Round, result.Error)
			continue
		}
		successCount++

		if batchJSON {
			if err := writeStatementsJSON(out, result.Statements); err != nil {
				return err
			}
			continue
		}

		board := present.NewBoard()
		board.Append(result.Statements)
		fmt.Fprintf(out, "# %s\n", result.Round)
		printBoard(out, board, color)
		fmt.Fprintln(out)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d rounds\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "\n")

	if failureCount > 0 && successCount == 0 {
		return fmt.Errorf("all %d rounds failed", failureCount)
	}
	return nil
}
