// Package value computes monetary values the text itself does not report:
// quantity-times-unit-cost estimates from the catalog, and the stockpile
// depreciation discount.
package value

import (
	"fmt"

	"github.com/aidlens/aidlens/internal/catalog"
	"github.com/aidlens/aidlens/internal/model"
)

// Estimator derives a value from a resolved item and quantity.
// Only invoked when no usable reported amount exists; it never fabricates.
// An item with no catalog entry or no quantity yields no value at all.
type Estimator struct {
	cat *catalog.Catalog
}

// NewEstimator creates an estimator backed by the unit-cost catalog
func NewEstimator(cat *catalog.Catalog) *Estimator {
	return &Estimator{cat: cat}
}

// Estimate computes quantity × unit cost in the reference currency.
// Returns ErrCatalogMiss (wrapped) when the item has no catalog key and
// cannot be resolved from its name; the resulting Fact then carries a null
// value with provenance Estimated-Unavailable.
func (e *Estimator) Estimate(item model.ItemSignal, qty model.QuantitySignal) (*model.MonetaryAmount, error) {
	if item.Name == "" && item.Key == "" {
		return nil, fmt.Errorf("estimate: %w", catalog.ErrCatalogMiss)
	}

	entry, err := e.resolve(item)
	if err != nil {
		return nil, fmt.Errorf("estimate: %w", err)
	}

	if qty.Count < 1 {
		// A unit cost without a count is not an estimate
		return nil, fmt.Errorf("estimate %q: no quantity: %w", entry.Key, catalog.ErrCatalogMiss)
	}

	return &model.MonetaryAmount{
		Value:      float64(qty.Count) * entry.UnitCost,
		Currency:   e.cat.Reference,
		Multiplier: 1,
	}, nil
}

// Life returns the useful-life years for the item, for depreciation.
// Returns false when the item's life class cannot be resolved.
func (e *Estimator) Life(item model.ItemSignal) (int, bool) {
	entry, err := e.resolve(item)
	if err != nil {
		return 0, false
	}
	return e.cat.Life(entry), true
}

func (e *Estimator) resolve(item model.ItemSignal) (*catalog.Entry, error) {
	if item.Key != "" {
		return e.cat.Lookup(item.Key)
	}
	return e.cat.Resolve(item.Name)
}
