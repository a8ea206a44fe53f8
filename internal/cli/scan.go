package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aidlens/aidlens/internal/model"
	"github.com/aidlens/aidlens/internal/pipeline"
	"github.com/aidlens/aidlens/internal/profile"
)

var (
	outJSON   string
	outCSV    string
	timeout   time.Duration
	userAgent string
	maxBytes  int64
	noCache   bool
	noLiveFX  bool
	selection string

	rowDonor     string
	rowBucket    string
	rowItem      string
	rowMonth     string
	rowAmount    float64
	rowStockpile bool
	rowLang      string
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan <url>",
	Short: "Extract one Fact from a single source URL",
	Long: `Scan fetches one page, extracts the aid-delivery evidence it contains
and assembles a single Fact:
- delivery vs commitment status
- evidence month
- item and quantity
- value in the reference currency (reported or estimated)
- stockpile depreciation where it applies

Row hints fill the gaps the text leaves open; the text always wins where
it speaks.

Example:
  aidlens scan https://example.com/news/bradley-delivery --donor "United States"
  aidlens scan https://example.com/pledge --donor Germany --item "IRIS-T" --month 2023-05
  aidlens scan https://example.com/article --stockpile --json facts.json`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	// Output flags
	scanCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path")
	scanCmd.Flags().StringVar(&outCSV, "csv", "", "output CSV path")

	// HTTP flags
	scanCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall scan timeout")
	scanCmd.Flags().StringVar(&userAgent, "ua", "Aidlens/0.1 (+https://github.com/aidlens/aidlens)", "HTTP User-Agent")
	scanCmd.Flags().Int64Var(&maxBytes, "max-bytes", 2_000_000, "max response bytes to read")
	scanCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch)")

	// Engine flags
	scanCmd.Flags().StringVar(&selection, "select", "largest", "money selection policy (largest, nearest)")
	scanCmd.Flags().BoolVar(&noLiveFX, "no-live-fx", false, "skip the live FX endpoint, snapshot rates only")

	// Row hints
	scanCmd.Flags().StringVar(&rowDonor, "donor", "", "donor country")
	scanCmd.Flags().StringVar(&rowBucket, "bucket", "", "aid bucket (military_inventory_transfer, direct_humanitarian_aid, loans_non_military)")
	scanCmd.Flags().StringVar(&rowItem, "item", "", "item hint used when the text names none")
	scanCmd.Flags().StringVar(&rowMonth, "month", "", "month hint (YYYY-MM) used when the text dates nothing")
	scanCmd.Flags().Float64Var(&rowAmount, "amount", 0, "amount hint in reference currency")
	scanCmd.Flags().BoolVar(&rowStockpile, "stockpile", false, "treat the transfer as from existing stocks")
	scanCmd.Flags().StringVar(&rowLang, "lang", "", "document language (BCP-47); defaults to the donor's")
}

func runScan(cmd *cobra.Command, args []string) error {
	url := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	log, err := buildLogger()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	cfg := buildConfig()

	p, err := pipeline.NewPipeline(cfg, log)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Scanning: %s\n", url)
	}

	fact, err := p.ProcessRow(ctx, buildRow(), url)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	facts := []model.Fact{fact}
	renderer := pipeline.NewRenderer(verbose)
	if outJSON != "" {
		if err := renderer.RenderJSON(facts, outJSON); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote JSON: %s\n", outJSON)
		}
	}
	if outCSV != "" {
		if err := renderer.RenderCSV(facts, outCSV); err != nil {
			return fmt.Errorf("render CSV: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote CSV: %s\n", outCSV)
		}
	}

	renderer.RenderSummary(facts)
	return nil
}

// buildConfig applies the shared scan/batch flags over the defaults
func buildConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.HTTP.Timeout = timeout
	cfg.HTTP.UserAgent = userAgent
	cfg.HTTP.MaxBodyBytes = maxBytes
	cfg.Cache.Enabled = !noCache
	cfg.FX.LiveDisabled = noLiveFX
	cfg.Money.Selection = model.MoneySelection(selection)
	cfg.Output.Verbose = verbose
	return cfg
}

// buildRow assembles the Context from the row-hint flags
func buildRow() model.Context {
	lang := rowLang
	if lang == "" && rowDonor != "" {
		lang = profile.Language(rowDonor)
	}
	return model.Context{
		Donor:      rowDonor,
		Bucket:     model.Bucket(rowBucket),
		ItemHint:   rowItem,
		MonthHint:  rowMonth,
		AmountHint: rowAmount,
		Stockpile:  rowStockpile,
		Language:   lang,
	}
}
