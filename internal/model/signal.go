package model

// Span marks a half-open character range [Start, End) in normalized text
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the span length in characters
func (s Span) Len() int { return s.End - s.Start }

// IsZero reports whether the span is unset
func (s Span) IsZero() bool { return s.Start == 0 && s.End == 0 }

// DistanceTo returns the character gap between two spans (0 if they overlap)
func (s Span) DistanceTo(o Span) int {
	if s.End <= o.Start {
		return o.Start - s.End
	}
	if o.End <= s.Start {
		return s.Start - o.End
	}
	return 0
}

// Strength ranks competing signals of the same type during assembly
type Strength int

const (
	StrengthWeak   Strength = 0 // Found far from any delivery anchor
	StrengthNearby Strength = 1 // Found inside the anchor window
	StrengthAnchor Strength = 2 // The anchor itself
)

// StatusSignal is a candidate delivery/commitment classification
type StatusSignal struct {
	Status  Status
	Anchor  Span // Span of the triggering delivery verb; zero when status is commitment
	Matched string
}

// MonthSignal is a candidate evidence month
type MonthSignal struct {
	Month    string // YYYY-MM
	Span     Span
	Strength Strength
}

// ItemSignal is a candidate transferred item
type ItemSignal struct {
	Name     string // Canonical catalog label
	Key      string // Catalog key the pattern resolved to
	Span     Span
	Strength Strength
}

// QuantitySignal is a candidate transfer count bound to an item
type QuantitySignal struct {
	Count int
	Unit  string // Unit noun if one qualified the count ("rounds", "batteries")
	Span  Span
}

// MoneySignal is a candidate monetary mention
type MoneySignal struct {
	Amount   MonetaryAmount
	Fragment string // Original matched text
}
