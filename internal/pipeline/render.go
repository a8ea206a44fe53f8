package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/aidlens/aidlens/internal/model"
)

// Renderer writes assembled Facts to files and the terminal. Output is
// row-per-Fact; the monthly rollup is the only aggregation performed here.
// Cross-document reconciliation belongs downstream.
type Renderer struct {
	verbose bool
}

// NewRenderer creates a renderer
func NewRenderer(verbose bool) *Renderer {
	return &Renderer{verbose: verbose}
}

// RenderJSON writes the facts as a JSON array
func (r *Renderer) RenderJSON(facts []model.Fact, path string) error {
	data, err := json.MarshalIndent(facts, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal facts: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write JSON: %w", err)
	}
	return nil
}

// RenderCSV writes the facts as a flat CSV, one row per Fact.
// Null value and quantity render as empty cells, not zeros.
func (r *Renderer) RenderCSV(facts []model.Fact, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create CSV: %w", err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	header := []string{
		"id", "donor", "status", "evidence_month", "item", "quantity",
		"value_eur", "provenance", "source_type", "depreciation_applied",
		"residual", "money_evidence", "source_url",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, fact := range facts {
		row := []string{
			fact.ID,
			fact.Donor,
			string(fact.Status),
			fact.EvidenceMonth,
			fact.Item,
			formatInt(fact.Quantity),
			formatFloat(fact.Value),
			string(fact.Provenance),
			string(fact.SourceType),
			strconv.FormatBool(fact.Depreciation.Applied),
			strconv.FormatFloat(fact.Depreciation.Residual, 'f', 3, 64),
			fact.MoneyEvidence,
			fact.SourceURL,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

// MonthlyRow is one line of the per-month rollup
type MonthlyRow struct {
	Month     string   `json:"month"`
	Facts     int      `json:"facts"`
	TotalEUR  float64  `json:"total_eur"`
	Delivered int      `json:"delivered"`
	Items     []string `json:"items,omitempty"`
}

// MonthlyRollup groups facts by evidence month, summing known values and
// collecting distinct item labels. Facts with no month land in the ""
// group, sorted first.
func MonthlyRollup(facts []model.Fact) []MonthlyRow {
	byMonth := make(map[string]*MonthlyRow)
	itemsSeen := make(map[string]map[string]struct{})

	for _, f := range facts {
		row, ok := byMonth[f.EvidenceMonth]
		if !ok {
			row = &MonthlyRow{Month: f.EvidenceMonth}
			byMonth[f.EvidenceMonth] = row
			itemsSeen[f.EvidenceMonth] = make(map[string]struct{})
		}
		row.Facts++
		if f.Value != nil {
			row.TotalEUR += *f.Value
		}
		if f.Status == model.StatusDelivered {
			row.Delivered++
		}
		if f.Item != "" {
			if _, dup := itemsSeen[f.EvidenceMonth][f.Item]; !dup {
				itemsSeen[f.EvidenceMonth][f.Item] = struct{}{}
				row.Items = append(row.Items, f.Item)
			}
		}
	}

	out := make([]MonthlyRow, 0, len(byMonth))
	for _, row := range byMonth {
		sort.Strings(row.Items)
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// RenderSummary prints a terminal summary: one line per month plus totals
func (r *Renderer) RenderSummary(facts []model.Fact) {
	rollup := MonthlyRollup(facts)

	var total float64
	for _, row := range rollup {
		month := row.Month
		if month == "" {
			month = "(no month)"
		}
		fmt.Printf("%-12s %3d facts  %14.2f EUR  %d delivered", month, row.Facts, row.TotalEUR, row.Delivered)
		if r.verbose && len(row.Items) > 0 {
			fmt.Printf("  [%s]", strings.Join(row.Items, ", "))
		}
		fmt.Println()
		total += row.TotalEUR
	}
	fmt.Printf("%-12s %3d facts  %14.2f EUR\n", "total", len(facts), total)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
