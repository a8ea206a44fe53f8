package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/aidlens/aidlens/internal/cache"
	"github.com/aidlens/aidlens/internal/catalog"
	"github.com/aidlens/aidlens/internal/fx"
	"github.com/aidlens/aidlens/internal/lexicon"
	"github.com/aidlens/aidlens/internal/llm"
	"github.com/aidlens/aidlens/internal/model"
)

// Pipeline wires the fetcher and the assembler into the complete per-row
// flow. One Pipeline serves a whole batch; it is safe for concurrent use.
type Pipeline struct {
	fetcher    *Fetcher
	assembler  *Assembler
	translator *llm.Translator // nil when no provider is configured
	config     *model.Config
	log        *zap.Logger
}

// NewPipeline loads the lexicon and catalog and builds the full chain.
// Table validation failures are returned, not deferred: a pipeline that
// constructs successfully will not fail later on its own tables.
func NewPipeline(cfg *model.Config, log *zap.Logger) (*Pipeline, error) {
	if log == nil {
		log = zap.NewNop()
	}

	lex, err := lexicon.Load(cfg.Engine.LexiconPath)
	if err != nil {
		return nil, fmt.Errorf("load lexicon: %w", err)
	}
	cat, err := catalog.Load(cfg.Engine.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	var store cache.Cache
	if cfg.Cache.Enabled {
		store = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
	}

	var translator *llm.Translator
	if cfg.LLM.Provider != "" {
		translator, err = llm.NewTranslator(cfg.LLM)
		if err != nil {
			log.Warn("query translation disabled", zap.Error(err))
			translator = nil
		}
	}

	fxTable := fx.NewTable(cfg.FX, log)

	return &Pipeline{
		fetcher:    NewFetcher(cfg, store, log),
		assembler:  NewAssembler(cfg, lex, cat, fxTable, log),
		translator: translator,
		config:     cfg,
		log:        log,
	}, nil
}

// ProcessRow fetches one source URL and assembles its Fact.
// Fetch failures are real errors; an empty or evidence-free page is not,
// it produces a hint-only Fact.
func (p *Pipeline) ProcessRow(ctx context.Context, row model.Context, url string) (model.Fact, error) {
	doc, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return model.Fact{}, fmt.Errorf("process %s: %w", url, err)
	}
	return p.assembler.Assemble(ctx, row, doc), nil
}

// ProcessDocument assembles a Fact from text already in hand, bypassing
// the fetcher. This is the entry point for piped-in or pre-extracted text.
func (p *Pipeline) ProcessDocument(ctx context.Context, row model.Context, doc model.Document) model.Fact {
	return p.assembler.Assemble(ctx, row, doc)
}

// SearchQueries builds site-scoped query URLs for a row, translated into
// the donor's language when a translator is configured. The operator runs
// these by hand; result scraping is out of scope.
func (p *Pipeline) SearchQueries(ctx context.Context, row model.Context) []string {
	b := NewSearchBuilder(p.translator, p.log)
	return b.Build(ctx, row)
}
