package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/aidlens/aidlens/internal/catalog"
	"github.com/aidlens/aidlens/internal/lexicon"
	"github.com/aidlens/aidlens/internal/model"
)

// Maximum character gap between a count and the item it qualifies
const quantityBindWindow = 60

// ItemExtractor identifies transferred materiel and transfer counts.
// Item identification runs against the catalog's curated patterns; counts
// come from a small "<number> [x] [unit-noun]" grammar and bind to an item
// only when the two spans co-occur within a short window. A number without
// a unit noun qualifies only when it sits directly before an item mention,
// and year-like numbers are never counts.
type ItemExtractor struct {
	cat      *catalog.Catalog
	quantity *regexp.Regexp
}

// NewItemExtractor creates an item/quantity extractor
func NewItemExtractor(cat *catalog.Catalog, lex *lexicon.Lexicon) *ItemExtractor {
	nouns := make([]string, 0, len(lex.UnitNouns))
	for _, n := range lex.UnitNouns {
		nouns = append(nouns, regexp.QuoteMeta(n))
	}
	// Longest alternative first so "rounds" wins over "round"
	sort.Slice(nouns, func(i, j int) bool { return len(nouns[i]) > len(nouns[j]) })

	rx := regexp.MustCompile(
		`(?i)\b(\d{1,3}(?:[.,]\d{3})+|\d+)\s*(?:x\s*)?(` + strings.Join(nouns, "|") + `)?\b`)

	return &ItemExtractor{cat: cat, quantity: rx}
}

type quantityHit struct {
	count int
	unit  string
	span  model.Span
}

// Extract returns the item/quantity pair closest to the delivery anchor.
// Multiple distinct items in one document do not produce multiple facts;
// proximity to the anchor decides. With no catalog match the Context item
// hint is the fallback and quantity stays unknown.
func (e *ItemExtractor) Extract(doc Normalized, hint string, anchor model.Span) (model.ItemSignal, model.QuantitySignal) {
	if doc.Empty() {
		return e.fallback(hint), model.QuantitySignal{}
	}

	matches := e.cat.MatchAll(doc.Text)
	if len(matches) == 0 {
		return e.fallback(hint), model.QuantitySignal{}
	}

	quantities := e.scanQuantities(doc, matches)

	best := matches[0]
	bestQty := bindQuantity(best, quantities)
	bestDist := itemDistance(best, bestQty, anchor)
	for _, m := range matches[1:] {
		q := bindQuantity(m, quantities)
		if d := itemDistance(m, q, anchor); d < bestDist {
			best = m
			bestQty = q
			bestDist = d
		}
	}

	strength := model.StrengthWeak
	if !anchor.IsZero() {
		span := model.Span{Start: best.Start, End: best.End}
		if span.DistanceTo(anchor) <= quantityBindWindow*4 {
			strength = model.StrengthNearby
		}
	}

	item := model.ItemSignal{
		Name:     best.Entry.Label,
		Key:      best.Entry.Key,
		Span:     model.Span{Start: best.Start, End: best.End},
		Strength: strength,
	}
	if bestQty == nil {
		return item, model.QuantitySignal{}
	}
	return item, model.QuantitySignal{Count: bestQty.count, Unit: bestQty.unit, Span: bestQty.span}
}

func (e *ItemExtractor) fallback(hint string) model.ItemSignal {
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return model.ItemSignal{}
	}
	if entry, err := e.cat.Resolve(hint); err == nil {
		return model.ItemSignal{Name: entry.Label, Key: entry.Key}
	}
	return model.ItemSignal{Name: hint}
}

// yearLike matches four-digit numbers in date position
var yearLike = regexp.MustCompile(`^(?:19|20)\d\d$`)

// scanQuantities collects count phrases, skipping numbers that are part of
// an item pattern itself (calibers like "155 mm" are items, not counts).
// Unqualified numbers must immediately precede an item mention; the year in
// "delivered tanks in March 2023" is a date, not a count.
func (e *ItemExtractor) scanQuantities(doc Normalized, items []catalog.Match) []quantityHit {
	var hits []quantityHit
	for _, m := range e.quantity.FindAllStringSubmatchIndex(doc.Text, -1) {
		span := model.Span{Start: m[0], End: m[1]}
		// Only the number decides the overlap: "10,000 rifles" is a count
		// for the rifles item, but the "155" in "155 mm" is the item itself
		if overlapsItem(model.Span{Start: m[2], End: m[3]}, items) {
			continue
		}
		count := parseCount(doc.Text[m[2]:m[3]])
		if count < 1 {
			continue
		}
		unit := ""
		if m[4] >= 0 {
			unit = strings.ToLower(doc.Text[m[4]:m[5]])
		}
		if unit == "" {
			if yearLike.MatchString(doc.Text[m[2]:m[3]]) {
				continue
			}
			if !precedesItem(doc.Text, m[3], items) {
				continue
			}
		}
		hits = append(hits, quantityHit{count: count, unit: unit, span: span})
	}
	return hits
}

// precedesItem reports whether an item mention starts right after the
// number, with only whitespace or a multiplication sign between them.
func precedesItem(text string, end int, items []catalog.Match) bool {
	for _, it := range items {
		if it.Start < end || it.Start-end > 4 {
			continue
		}
		if strings.Trim(text[end:it.Start], " xX") == "" {
			return true
		}
	}
	return false
}

// bindQuantity picks the closest count within the bind window, preferring
// unit-qualified counts over bare numbers.
func bindQuantity(item catalog.Match, quantities []quantityHit) *quantityHit {
	itemSpan := model.Span{Start: item.Start, End: item.End}
	var best *quantityHit
	bestScore := 0
	for i := range quantities {
		q := &quantities[i]
		d := q.span.DistanceTo(itemSpan)
		if d > quantityBindWindow {
			continue
		}
		score := quantityBindWindow - d
		if q.unit != "" {
			score += quantityBindWindow
		}
		if best == nil || score > bestScore {
			best = q
			bestScore = score
		}
	}
	return best
}

func itemDistance(item catalog.Match, q *quantityHit, anchor model.Span) int {
	if anchor.IsZero() {
		// No anchor: prefer quantified items, then document order
		if q != nil {
			return item.Start
		}
		return item.Start + 1<<20
	}
	span := model.Span{Start: item.Start, End: item.End}
	return span.DistanceTo(anchor)
}

func overlapsItem(span model.Span, items []catalog.Match) bool {
	for _, it := range items {
		if span.Start < it.End && it.Start < span.End {
			return true
		}
	}
	return false
}

// parseCount parses an integer with thousands separators
func parseCount(s string) int {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return atoi(b.String())
}
