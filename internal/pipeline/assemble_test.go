package pipeline

import (
	"context"
	"math"
	"testing"

	"github.com/aidlens/aidlens/internal/catalog"
	"github.com/aidlens/aidlens/internal/fx"
	"github.com/aidlens/aidlens/internal/lexicon"
	"github.com/aidlens/aidlens/internal/model"
)

func newAssembler(t *testing.T) *Assembler {
	t.Helper()
	cfg := model.DefaultConfig()
	cfg.FX.LiveDisabled = true

	lex, err := lexicon.Load("")
	if err != nil {
		t.Fatalf("load lexicon: %v", err)
	}
	cat, err := catalog.Load("")
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return NewAssembler(cfg, lex, cat, fx.NewTable(cfg.FX, nil), nil)
}

func doc(text string) model.Document {
	return model.Document{Text: text, SourceURL: "https://example.org/report"}
}

func wantValue(t *testing.T, f model.Fact, want float64) {
	t.Helper()
	if f.Value == nil {
		t.Fatalf("Fact has no value, want %v", want)
	}
	if math.Abs(*f.Value-want) > 1e-6*math.Abs(want) {
		t.Errorf("Value %v, want %v", *f.Value, want)
	}
}

func TestAssembler_DeliveredWithEstimatedValue(t *testing.T) {
	a := newAssembler(t)

	fact := a.Assemble(context.Background(),
		model.Context{Donor: "United States", Bucket: model.BucketMilitary},
		doc("The United States delivered 50 Bradley fighting vehicles in March 2023."))

	if fact.Status != model.StatusDelivered {
		t.Errorf("Status %q, want delivered", fact.Status)
	}
	if fact.EvidenceMonth != "2023-03" {
		t.Errorf("EvidenceMonth %q, want 2023-03", fact.EvidenceMonth)
	}
	if fact.Item != "Bradley fighting vehicles" {
		t.Errorf("Item %q", fact.Item)
	}
	if fact.Quantity == nil || *fact.Quantity != 50 {
		t.Errorf("Quantity %v, want 50", fact.Quantity)
	}
	wantValue(t, fact, 1.75e8)
	if fact.Provenance != model.ProvenanceEstimated {
		t.Errorf("Provenance %q, want estimated", fact.Provenance)
	}
	if fact.Depreciation.Applied || fact.Depreciation.Residual != 1.0 {
		t.Errorf("Unexpected depreciation on a non-stockpile row: %+v", fact.Depreciation)
	}
	if fact.ID == "" {
		t.Error("Fact must carry an ID")
	}
}

func TestAssembler_CommitmentWithReportedValue(t *testing.T) {
	a := newAssembler(t)

	fact := a.Assemble(context.Background(),
		model.Context{Donor: "Germany", MonthHint: "2023-04"},
		doc("Germany announced a €500 million package of artillery ammunition for Ukraine."))

	if fact.Status != model.StatusCommitment {
		t.Errorf("Status %q, want commitment", fact.Status)
	}
	// No date in the text: the row hint fills the month
	if fact.EvidenceMonth != "2023-04" {
		t.Errorf("EvidenceMonth %q, want the hint 2023-04", fact.EvidenceMonth)
	}
	wantValue(t, fact, 5e8)
	if fact.Provenance != model.ProvenanceReported {
		t.Errorf("Provenance %q, want reported", fact.Provenance)
	}
	if fact.MoneyEvidence == "" {
		t.Error("A reported value must carry its source fragment")
	}
	if fact.Quantity != nil {
		t.Errorf("Quantity %v, want none", *fact.Quantity)
	}
}

func TestAssembler_UnresolvedCurrencyFallsThrough(t *testing.T) {
	a := newAssembler(t)

	fact := a.Assemble(context.Background(),
		model.Context{Donor: "Norway"},
		doc("The package was worth 300 million XYZ according to local sources."))

	if fact.Value != nil {
		t.Errorf("Value %v, want none for an unconvertible amount and no item", *fact.Value)
	}
	if fact.Provenance != model.ProvenanceEstimatedUnavailable {
		t.Errorf("Provenance %q, want estimated_unavailable", fact.Provenance)
	}
	if fact.MoneyEvidence != "" {
		t.Errorf("MoneyEvidence %q, want empty when nothing was resolved", fact.MoneyEvidence)
	}
}

func TestAssembler_StockpileDepreciation(t *testing.T) {
	a := newAssembler(t)

	fact := a.Assemble(context.Background(),
		model.Context{Donor: "Poland"},
		doc("Poland delivered 10 T-72 tanks from stocks in May 2023."))

	if fact.SourceType != model.SourceStockpile {
		t.Errorf("SourceType %q, want stockpile", fact.SourceType)
	}
	if !fact.Depreciation.Applied {
		t.Fatal("Expected depreciation on a stockpile delivery")
	}
	if math.Abs(fact.Depreciation.Residual-0.52) > 1e-9 {
		t.Errorf("Residual %v, want 0.52", fact.Depreciation.Residual)
	}
	wantValue(t, fact, 5.2e6)
}

func TestAssembler_ContextStockpileFlag(t *testing.T) {
	a := newAssembler(t)

	// Text carries no drawdown cue; the row flag gates depreciation alone
	fact := a.Assemble(context.Background(),
		model.Context{Donor: "Poland", Stockpile: true},
		doc("Poland delivered 10 T-72 tanks in May 2023."))

	if fact.SourceType != model.SourceUnknown {
		t.Errorf("SourceType %q, want unknown", fact.SourceType)
	}
	if !fact.Depreciation.Applied {
		t.Error("Expected the Context flag to trigger depreciation")
	}
	wantValue(t, fact, 5.2e6)
}

func TestAssembler_MunitionsNeverDepreciated(t *testing.T) {
	a := newAssembler(t)

	fact := a.Assemble(context.Background(),
		model.Context{Donor: "United States"},
		doc("Some 1000 Javelin missiles were supplied from stocks in June 2023."))

	if fact.Depreciation.Applied || fact.Depreciation.Residual != 1.0 {
		t.Errorf("Munitions must retain full value, got %+v", fact.Depreciation)
	}
	wantValue(t, fact, 1.7e8)
}

func TestAssembler_DateOnlyItemStaysUnvalued(t *testing.T) {
	a := newAssembler(t)

	// No count and no money in the text; the year must not become a
	// quantity feeding the estimator
	fact := a.Assemble(context.Background(),
		model.Context{Donor: "Poland"},
		doc("Poland delivered Leopard 2 tanks in March 2023."))

	if fact.EvidenceMonth != "2023-03" {
		t.Errorf("EvidenceMonth %q, want 2023-03", fact.EvidenceMonth)
	}
	if fact.Quantity != nil {
		t.Errorf("Quantity %v, want none", *fact.Quantity)
	}
	if fact.Value != nil {
		t.Errorf("Value %v, want none", *fact.Value)
	}
	if fact.Provenance != model.ProvenanceEstimatedUnavailable {
		t.Errorf("Provenance %q, want estimated_unavailable", fact.Provenance)
	}
}

func TestAssembler_EmptyDocument(t *testing.T) {
	a := newAssembler(t)

	fact := a.Assemble(context.Background(),
		model.Context{Donor: "Sweden", ItemHint: "CV90", MonthHint: "2023-01"},
		model.Document{})

	if fact.Status != model.StatusCommitment {
		t.Errorf("Status %q, want the commitment default", fact.Status)
	}
	if fact.EvidenceMonth != "2023-01" {
		t.Errorf("EvidenceMonth %q, want the hint", fact.EvidenceMonth)
	}
	if fact.Item != "CV90 fighting vehicles" {
		t.Errorf("Item %q, want the resolved hint label", fact.Item)
	}
	// A hint without a quantity cannot be valued
	if fact.Value != nil {
		t.Errorf("Value %v, want none", *fact.Value)
	}
	if fact.Provenance != model.ProvenanceEstimatedUnavailable {
		t.Errorf("Provenance %q, want estimated_unavailable", fact.Provenance)
	}
}

func TestAssembler_DistinctIDs(t *testing.T) {
	a := newAssembler(t)

	d := doc("Canada delivered 4 howitzers in April 2023.")
	row := model.Context{Donor: "Canada"}

	first := a.Assemble(context.Background(), row, d)
	second := a.Assemble(context.Background(), row, d)
	if first.ID == second.ID {
		t.Error("Each assembled Fact needs its own ID")
	}
	if first.Status != second.Status || first.EvidenceMonth != second.EvidenceMonth {
		t.Error("Assembly must be deterministic apart from the ID")
	}
}
