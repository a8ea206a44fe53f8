package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/aidlens/aidlens/internal/llm"
	"github.com/aidlens/aidlens/internal/model"
	"github.com/aidlens/aidlens/internal/profile"
)

// maxSearchURLs bounds the list handed to the operator per row
const maxSearchURLs = 20

// SearchBuilder turns a Context row into site-scoped search URLs covering
// the donor's government and news domains. The URLs are for the operator to
// run; fetching search results is out of scope.
type SearchBuilder struct {
	translator *llm.Translator // nil disables local-language queries
	log        *zap.Logger
}

// NewSearchBuilder creates a search builder
func NewSearchBuilder(translator *llm.Translator, log *zap.Logger) *SearchBuilder {
	if log == nil {
		log = zap.NewNop()
	}
	return &SearchBuilder{translator: translator, log: log}
}

// Build returns up to maxSearchURLs query URLs for the row: English queries
// against each profile domain, then donor-language queries when a
// translator is available. Translation failures fall back to English only.
func (b *SearchBuilder) Build(ctx context.Context, row model.Context) []string {
	prof := profile.Lookup(row.Donor)

	baseEN := b.query(row)
	queries := []string{baseEN}

	if b.translator != nil && !strings.HasPrefix(prof.Language, "en") {
		if local, err := b.translator.Translate(ctx, baseEN, prof.Language); err != nil {
			b.log.Debug("query translation failed",
				zap.String("donor", row.Donor), zap.Error(err))
		} else if local != baseEN {
			queries = append(queries, local)
		}
	}

	domains := append(append([]string{}, prof.Gov...), prof.News...)

	var urls []string
	for _, q := range queries {
		for _, d := range domains {
			if len(urls) >= maxSearchURLs {
				return urls
			}
			urls = append(urls, searchURL(q+" site:"+d))
		}
	}
	if len(urls) < maxSearchURLs {
		urls = append(urls, searchURL(baseEN))
	}
	return urls
}

// query composes the base English query from the row's hints
func (b *SearchBuilder) query(row model.Context) string {
	parts := []string{row.Donor, "Ukraine"}
	if row.ItemHint != "" {
		parts = append(parts, row.ItemHint)
	}
	if row.MonthHint != "" {
		parts = append(parts, row.MonthHint)
	}
	if row.AmountHint > 0 {
		parts = append(parts, fmt.Sprintf("%.0f", row.AmountHint))
	}
	return strings.Join(parts, " ")
}

func searchURL(q string) string {
	return "https://www.google.com/search?q=" + url.QueryEscape(q)
}
