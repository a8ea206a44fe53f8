package extract

import (
	"regexp"

	"github.com/aidlens/aidlens/internal/model"
)

// SourceTypeClassifier infers where transferred materiel came from.
// Stockpile drawdowns are depreciable; new production and backfill swaps
// are not. The verdict gates depreciation when the caller's Context does
// not assert the stockpile flag itself.
type SourceTypeClassifier struct {
	stockpile *regexp.Regexp
	produced  *regexp.Regexp
	indirect  *regexp.Regexp
}

// NewSourceTypeClassifier creates a source-type classifier
func NewSourceTypeClassifier() *SourceTypeClassifier {
	return &SourceTypeClassifier{
		stockpile: regexp.MustCompile(`(?i)(drawdown|from\s+stocks?\b|from\s+stockpiles?|from\s+inventory|from\s+reserves|presidential\s+drawdown|\bPDA\b)`),
		produced:  regexp.MustCompile(`(?i)(procure|procurement|contract|order|purchase|manufactur|framework\s+contract|tender)`),
		indirect:  regexp.MustCompile(`(?i)(ringtausch|backfill|swap|indirect\s+transfer|compensat(?:e|ion)|in\s+return)`),
	}
}

// Classify returns the source type asserted by the text, if any
func (c *SourceTypeClassifier) Classify(doc Normalized) model.SourceType {
	if doc.Empty() {
		return model.SourceUnknown
	}
	switch {
	case c.stockpile.MatchString(doc.Text):
		return model.SourceStockpile
	case c.produced.MatchString(doc.Text):
		return model.SourceNewProduction
	case c.indirect.MatchString(doc.Text):
		return model.SourceIndirect
	default:
		return model.SourceUnknown
	}
}
