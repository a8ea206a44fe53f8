package model

import "time"

// Status records whether the evidence describes a completed transfer
// or merely an announcement of one.
type Status string

const (
	StatusDelivered  Status = "Delivered/Disbursed"
	StatusCommitment Status = "Commitment/Other"
)

// Provenance records where a Fact's monetary value came from
type Provenance string

const (
	ProvenanceReported             Provenance = "reported"              // Extracted from the document text
	ProvenanceEstimated            Provenance = "estimated"             // Quantity × catalog unit cost
	ProvenanceEstimatedUnavailable Provenance = "estimated_unavailable" // Estimation attempted, no catalog entry
)

// MonetaryAmount is a parsed money mention. Never mutated after creation;
// converted amounts are new instances.
type MonetaryAmount struct {
	Value      float64 `json:"value"`                // Numeric value after the multiplier is applied
	Currency   string  `json:"currency"`             // ISO 4217 code
	Multiplier float64 `json:"multiplier,omitempty"` // Scale word applied (1e6, 1e9, ...), 1 if none
	Span       Span    `json:"span,omitempty"`       // Source span in the normalized text
}

// Depreciation captures the stockpile discount applied to a Fact's value
type Depreciation struct {
	Applied  bool    `json:"applied"`
	Residual float64 `json:"residual"` // Fraction of value retained, 1.0 when not applied
}

// Fact is the engine's output: one structured, auditable record per
// (Context, Document) pair. Created once by the assembler, immutable after.
type Fact struct {
	ID            string       `json:"id"`
	Donor         string       `json:"donor"`
	Status        Status       `json:"status"`
	EvidenceMonth string       `json:"evidence_month,omitempty"` // YYYY-MM, empty when unresolvable
	Item          string       `json:"item,omitempty"`
	Quantity      *int         `json:"quantity,omitempty"`
	Value         *float64     `json:"value_eur,omitempty"` // Reference currency; nil when no value resolvable
	Provenance    Provenance   `json:"provenance"`
	SourceType    SourceType   `json:"source_type"`
	Depreciation  Depreciation `json:"depreciation"`
	MoneyEvidence string       `json:"money_evidence,omitempty"` // Text fragment the value was parsed from
	SourceURL     string       `json:"source_url,omitempty"`
	ExtractedAt   time.Time    `json:"extracted_at"`
}
