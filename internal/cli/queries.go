package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aidlens/aidlens/internal/pipeline"
)

var (
	llmProvider string
	llmModel    string
)

// queriesCmd represents the queries command
var queriesCmd = &cobra.Command{
	Use:   "queries",
	Short: "Print site-scoped search queries for a donor row",
	Long: `Queries builds search URLs covering the donor's government and news
domains, one per line on stdout. With an LLM provider configured the query
is also translated into the donor's language.

Aidlens does not fetch search results; run the queries and feed chosen
source URLs back through scan or batch.

Example:
  aidlens queries --donor Germany --item "Leopard 2" --month 2023-03
  aidlens queries --donor Poland --llm-provider openai`,
	RunE: runQueries,
}

func init() {
	rootCmd.AddCommand(queriesCmd)

	queriesCmd.Flags().StringVar(&rowDonor, "donor", "", "donor country (required)")
	queriesCmd.Flags().StringVar(&rowItem, "item", "", "item hint")
	queriesCmd.Flags().StringVar(&rowMonth, "month", "", "month hint (YYYY-MM)")
	queriesCmd.Flags().Float64Var(&rowAmount, "amount", 0, "amount hint in reference currency")

	queriesCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "translation provider (openai); empty disables translation")
	queriesCmd.Flags().StringVar(&llmModel, "llm-model", "", "translation model name")

	_ = queriesCmd.MarkFlagRequired("donor")
}

func runQueries(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	log, err := buildLogger()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	cfg := buildConfig()
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
		cfg.LLM.Model = llmModel
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		cfg.LLM.BaseURL = os.Getenv("OPENAI_BASE_URL")
		if cfg.LLM.APIKey == "" && cfg.LLM.BaseURL == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	}

	p, err := pipeline.NewPipeline(cfg, log)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	for _, u := range p.SearchQueries(ctx, buildRow()) {
		fmt.Println(u)
	}
	return nil
}
