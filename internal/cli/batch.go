package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/aidlens/aidlens/internal/model"
	"github.com/aidlens/aidlens/internal/pipeline"
	"github.com/aidlens/aidlens/internal/worker"
)

var (
	concurrency  int
	batchTimeout time.Duration
	batchJSON    string
	batchCSV     string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <rows.csv>",
	Short: "Process a rows file of sources in parallel",
	Long: `Batch reads a CSV of rows and extracts one Fact per row concurrently.
The header names the columns; "url" is required, the rest are hints:
donor, bucket, item, month, amount, stockpile, lang.

Fetches are rate limited per domain regardless of worker count.

Example:
  aidlens batch rows.csv --json facts.json --csv facts.csv
  aidlens batch rows.csv --concurrency 4 --timeout 15m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for the batch")
	batchCmd.Flags().StringVar(&batchJSON, "json", "facts.json", "output JSON path")
	batchCmd.Flags().StringVar(&batchCSV, "csv", "", "output CSV path")

	batchCmd.Flags().DurationVar(&timeout, "fetch-timeout", 30*time.Second, "timeout for individual fetches")
	batchCmd.Flags().StringVar(&userAgent, "ua", "Aidlens/0.1 (+https://github.com/aidlens/aidlens)", "HTTP User-Agent")
	batchCmd.Flags().Int64Var(&maxBytes, "max-bytes", 2_000_000, "max response bytes to read")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch)")
	batchCmd.Flags().StringVar(&selection, "select", "largest", "money selection policy (largest, nearest)")
	batchCmd.Flags().BoolVar(&noLiveFX, "no-live-fx", false, "skip the live FX endpoint, snapshot rates only")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	log, err := buildLogger()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	cfg := buildConfig()
	cfg.Concurrency.Workers = concurrency

	p, err := pipeline.NewPipeline(cfg, log)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	processor := worker.NewBatchProcessor(p, concurrency)

	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	var facts []model.Fact
	failures := 0
	for _, result := range results {
		if result.Error != nil {
			failures++
			fmt.Fprintf(os.Stderr, "failed %s: %v\n", result.URL, result.Error)
			continue
		}
		facts = append(facts, result.Fact)
	}

	renderer := pipeline.NewRenderer(verbose)
	if batchJSON != "" {
		if err := renderer.RenderJSON(facts, batchJSON); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
	}
	if batchCSV != "" {
		if err := renderer.RenderCSV(facts, batchCSV); err != nil {
			return fmt.Errorf("render CSV: %w", err)
		}
	}

	renderer.RenderSummary(facts)
	fmt.Fprintf(os.Stderr, "\n%d rows, %d facts, %d failures\n", len(results), len(facts), failures)
	return nil
}
