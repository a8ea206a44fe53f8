package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/aidlens/aidlens/internal/model"
)

func fact(month string, status model.Status, item string, value *float64) model.Fact {
	return model.Fact{
		ID:            "f-" + month + item,
		Donor:         "Testland",
		Status:        status,
		EvidenceMonth: month,
		Item:          item,
		Value:         value,
		Provenance:    model.ProvenanceEstimated,
		SourceType:    model.SourceUnknown,
		Depreciation:  model.Depreciation{Residual: 1.0},
	}
}

func ptr(v float64) *float64 { return &v }

func TestMonthlyRollup_Grouping(t *testing.T) {
	facts := []model.Fact{
		fact("2023-03", model.StatusDelivered, "Bradley fighting vehicles", ptr(100)),
		fact("2023-03", model.StatusCommitment, "Howitzers", ptr(50)),
		fact("2023-03", model.StatusDelivered, "Bradley fighting vehicles", nil),
		fact("2023-01", model.StatusDelivered, "Javelin AT missiles", ptr(10)),
	}

	rollup := MonthlyRollup(facts)
	if len(rollup) != 2 {
		t.Fatalf("Expected 2 months, got %d", len(rollup))
	}

	// Sorted by month ascending
	if rollup[0].Month != "2023-01" || rollup[1].Month != "2023-03" {
		t.Errorf("Months out of order: %q, %q", rollup[0].Month, rollup[1].Month)
	}

	march := rollup[1]
	if march.Facts != 3 {
		t.Errorf("March facts %d, want 3", march.Facts)
	}
	if march.TotalEUR != 150 {
		t.Errorf("March total %v, want 150 (nil values excluded)", march.TotalEUR)
	}
	if march.Delivered != 2 {
		t.Errorf("March delivered %d, want 2", march.Delivered)
	}
	if len(march.Items) != 2 {
		t.Errorf("March items %v, want 2 distinct labels", march.Items)
	}
}

func TestMonthlyRollup_MissingMonthGroup(t *testing.T) {
	facts := []model.Fact{
		fact("", model.StatusCommitment, "", ptr(5)),
		fact("2023-02", model.StatusDelivered, "Mortars", ptr(7)),
	}

	rollup := MonthlyRollup(facts)
	if len(rollup) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(rollup))
	}
	if rollup[0].Month != "" {
		t.Errorf("Expected the empty-month group first, got %q", rollup[0].Month)
	}
	if len(rollup[0].Items) != 0 {
		t.Errorf("Empty item labels must not be collected: %v", rollup[0].Items)
	}
}

func TestRenderCSV_NullCells(t *testing.T) {
	r := NewRenderer(false)

	qty := 4
	withAll := fact("2023-03", model.StatusDelivered, "Howitzers", ptr(4e6))
	withAll.Quantity = &qty
	withNone := fact("2023-04", model.StatusCommitment, "", nil)

	path := filepath.Join(t.TempDir(), "facts.csv")
	if err := r.RenderCSV([]model.Fact{withAll, withNone}, path); err != nil {
		t.Fatalf("RenderCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "id" || rows[0][6] != "value_eur" {
		t.Errorf("Unexpected header: %v", rows[0])
	}
	if rows[1][5] != "4" || rows[1][6] != "4000000.00" {
		t.Errorf("Populated row cells wrong: qty=%q value=%q", rows[1][5], rows[1][6])
	}
	// Null quantity and value are empty cells, not zeros
	if rows[2][5] != "" || rows[2][6] != "" {
		t.Errorf("Null cells rendered as %q and %q, want empty", rows[2][5], rows[2][6])
	}
}

func TestRenderJSON_RoundTrip(t *testing.T) {
	r := NewRenderer(false)

	path := filepath.Join(t.TempDir(), "facts.json")
	in := []model.Fact{fact("2023-03", model.StatusDelivered, "Howitzers", ptr(12.5))}
	if err := r.RenderJSON(in, path); err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var out []model.Fact
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != 1 || out[0].Item != "Howitzers" || out[0].Value == nil || *out[0].Value != 12.5 {
		t.Errorf("Round trip mismatch: %+v", out)
	}
}
