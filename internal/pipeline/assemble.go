// Package pipeline orchestrates the per-row flow: fetch a document, run the
// extractors, reconcile their signals into one Fact, and render the results
// for the downstream aggregation collaborator.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aidlens/aidlens/internal/catalog"
	"github.com/aidlens/aidlens/internal/extract"
	"github.com/aidlens/aidlens/internal/fx"
	"github.com/aidlens/aidlens/internal/lexicon"
	"github.com/aidlens/aidlens/internal/model"
	"github.com/aidlens/aidlens/internal/value"
)

// Assembler reconciles extractor signals into one Fact per
// (Context, Document) pair. Stages run in a fixed order (status, month,
// item/quantity, money-or-estimate, depreciation) and each stage reads
// only its declared inputs. Absence of evidence is a valid outcome; the
// assembler never fails on it.
type Assembler struct {
	normalizer *extract.Normalizer
	status     *extract.StatusClassifier
	temporal   *extract.TemporalExtractor
	items      *extract.ItemExtractor
	money      *extract.MoneyExtractor
	sourceType *extract.SourceTypeClassifier
	fxTable    *fx.Table
	estimator  *value.Estimator
	log        *zap.Logger
}

// NewAssembler wires the extractors against the loaded tables
func NewAssembler(cfg *model.Config, lex *lexicon.Lexicon, cat *catalog.Catalog, fxTable *fx.Table, log *zap.Logger) *Assembler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Assembler{
		normalizer: extract.NewNormalizer(log),
		status:     extract.NewStatusClassifier(lex),
		temporal:   extract.NewTemporalExtractor(lex, cfg.Engine),
		items:      extract.NewItemExtractor(cat, lex),
		money:      extract.NewMoneyExtractor(lex, cfg.Money.Selection),
		sourceType: extract.NewSourceTypeClassifier(),
		fxTable:    fxTable,
		estimator:  value.NewEstimator(cat),
		log:        log,
	}
}

// Assemble produces exactly one Fact. It never returns an error for missing
// evidence: every stage degrades to the Context fallback.
func (a *Assembler) Assemble(ctx context.Context, row model.Context, doc model.Document) model.Fact {
	lang := doc.Language
	if lang == "" {
		lang = row.Language
	}

	norm := a.normalizer.Normalize(doc.Text)

	// Stage 1: status. The anchor scopes every later proximity decision.
	status := a.status.Classify(norm, lang)

	// Stage 2: evidence month, falling back to the Context hint
	month := a.temporal.Extract(norm, status.Anchor, lang)
	evidenceMonth := month.Month
	if evidenceMonth == "" {
		evidenceMonth = row.MonthHint
	}

	// Stage 3: item and quantity
	item, qty := a.items.Extract(norm, row.ItemHint, status.Anchor)

	// Stage 4: source type; the Context flag wins when set
	srcType := a.sourceType.Classify(norm)
	stockpile := row.Stockpile || srcType == model.SourceStockpile

	// Stage 5: money. Reported path first, estimation only when it fails.
	val, provenance, fragment := a.resolveValue(ctx, norm, status.Anchor, item, qty, doc.SourceURL)

	// Stage 6: depreciation, stockpile rows only
	dep := model.Depreciation{Residual: 1.0}
	if val != nil && stockpile {
		if life, ok := a.estimator.Life(item); ok {
			sendYear := yearOf(evidenceMonth)
			discounted, residual := value.Depreciate(*val, life, sendYear)
			if residual < 1.0 {
				dep = model.Depreciation{Applied: true, Residual: residual}
				val = &discounted
			}
		}
	}

	var qtyPtr *int
	if qty.Count > 0 {
		n := qty.Count
		qtyPtr = &n
	}

	return model.Fact{
		ID:            uuid.NewString(),
		Donor:         row.Donor,
		Status:        status.Status,
		EvidenceMonth: evidenceMonth,
		Item:          item.Name,
		Quantity:      qtyPtr,
		Value:         val,
		Provenance:    provenance,
		SourceType:    srcType,
		Depreciation:  dep,
		MoneyEvidence: fragment,
		SourceURL:     doc.SourceURL,
		ExtractedAt:   time.Now().UTC(),
	}
}

// resolveValue attempts the reported path (extraction + conversion), then
// the estimated path. A Fact never carries provenance Reported alongside a
// null value, nor Estimated alongside a reported one.
func (a *Assembler) resolveValue(ctx context.Context, norm extract.Normalized, anchor model.Span, item model.ItemSignal, qty model.QuantitySignal, sourceURL string) (*float64, model.Provenance, string) {
	signals := a.money.Extract(norm)
	if selected, ok := a.money.Select(signals, anchor); ok {
		converted, err := a.fxTable.Convert(ctx, selected.Amount)
		if err == nil && converted.Value > 0 {
			v := converted.Value
			return &v, model.ProvenanceReported, selected.Fragment
		}
		if errors.Is(err, fx.ErrUnresolvedCurrency) {
			a.log.Debug("unresolved currency, falling back to estimation",
				zap.String("currency", selected.Amount.Currency),
				zap.String("source", sourceURL))
		} else if err != nil {
			a.log.Warn("currency conversion failed",
				zap.String("currency", selected.Amount.Currency), zap.Error(err))
		}
	}

	est, err := a.estimator.Estimate(item, qty)
	if err != nil {
		if !errors.Is(err, catalog.ErrCatalogMiss) {
			a.log.Warn("estimation failed", zap.Error(err))
		}
		return nil, model.ProvenanceEstimatedUnavailable, ""
	}
	v := est.Value
	return &v, model.ProvenanceEstimated, ""
}

func yearOf(month string) int {
	if len(month) < 4 {
		return 0
	}
	return atoi(month[:4])
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}
