package model

// Bucket is the coarse aid category a source row belongs to
type Bucket string

const (
	BucketMilitary     Bucket = "military_inventory_transfer"
	BucketHumanitarian Bucket = "direct_humanitarian_aid"
	BucketLoan         Bucket = "loans_non_military"
	BucketOther        Bucket = "other"
)

// SourceType classifies where transferred materiel came from
type SourceType string

const (
	SourceStockpile     SourceType = "stockpile"      // Drawn from existing inventory (depreciable)
	SourceNewProduction SourceType = "new_production" // Procured or newly manufactured
	SourceIndirect      SourceType = "indirect"       // Backfill/swap arrangements
	SourceUnknown       SourceType = "unknown"        // No phrasing either way
)

// Context carries the caller-supplied hints for one source row.
// It is immutable input owned by the caller; the engine only reads it.
type Context struct {
	Donor      string  `json:"donor"`                 // Donor country name
	Bucket     Bucket  `json:"bucket"`                // Coarse aid category
	ItemHint   string  `json:"item_hint,omitempty"`   // Candidate item text from the source table
	MonthHint  string  `json:"month_hint,omitempty"`  // Candidate month (YYYY-MM)
	AmountHint float64 `json:"amount_hint,omitempty"` // Candidate value in reference currency
	Stockpile  bool    `json:"stockpile"`             // Row is flagged as a stockpile transfer
	Language   string  `json:"language,omitempty"`    // BCP-47 language code of expected sources
}

// Document is the raw text of a fetched page plus its provenance.
// The engine assumes text has already been extracted from any markup.
type Document struct {
	Text      string `json:"text"`
	SourceURL string `json:"source_url"`
	Language  string `json:"language,omitempty"` // Detected or assumed retrieval language
}
