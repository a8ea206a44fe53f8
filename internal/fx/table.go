// Package fx converts monetary amounts into the reference currency.
// Rates come from a live endpoint when reachable, with a baked-in snapshot
// as the silent fallback; an unrecognized currency is an explicit failure
// the caller must treat as "no reported value".
package fx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/text/currency"
	"golang.org/x/time/rate"

	"github.com/aidlens/aidlens/internal/model"
)

// ErrUnresolvedCurrency reports a code with neither a live nor fallback rate
var ErrUnresolvedCurrency = errors.New("unresolved currency")

// Table maps currency codes to reference-currency rates. Read-only shared
// resource: rates are resolved lazily, cached for the whole run, and the
// live endpoint is consulted at most once per code with one retry.
type Table struct {
	reference string
	endpoint  string
	client    *http.Client
	cache     *gocache.Cache
	limiter   *rate.Limiter
	disabled  bool
	log       *zap.Logger
}

// NewTable creates an FX table for the configured reference currency
func NewTable(cfg model.FXConfig, log *zap.Logger) *Table {
	if log == nil {
		log = zap.NewNop()
	}
	return &Table{
		reference: strings.ToUpper(cfg.Reference),
		endpoint:  cfg.Endpoint,
		client:    &http.Client{Timeout: cfg.Timeout},
		cache:     gocache.New(gocache.NoExpiration, 0),
		limiter:   rate.NewLimiter(rate.Limit(2), 2),
		disabled:  cfg.LiveDisabled,
		log:       log,
	}
}

// Reference returns the reference currency code
func (t *Table) Reference() string { return t.reference }

// Rate returns the multiplier converting one unit of code into the
// reference currency.
func (t *Table) Rate(ctx context.Context, code string) (float64, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return 0, fmt.Errorf("%w: empty code", ErrUnresolvedCurrency)
	}
	if code == t.reference {
		return 1, nil
	}

	if cached, found := t.cache.Get(code); found {
		return cached.(float64), nil
	}

	if !t.disabled {
		if r, err := t.fetchLive(ctx, code); err == nil {
			t.cache.Set(code, r, gocache.NoExpiration)
			return r, nil
		} else {
			t.log.Debug("live FX lookup failed, using snapshot",
				zap.String("currency", code), zap.Error(err))
		}
	}

	if r, ok := snapshot[code]; ok {
		t.cache.Set(code, r, gocache.NoExpiration)
		return r, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnresolvedCurrency, code)
}

// Convert returns a new MonetaryAmount denominated in the reference
// currency. The input is never mutated.
func (t *Table) Convert(ctx context.Context, amt model.MonetaryAmount) (model.MonetaryAmount, error) {
	r, err := t.Rate(ctx, amt.Currency)
	if err != nil {
		return model.MonetaryAmount{}, err
	}
	return model.MonetaryAmount{
		Value:      amt.Value * r,
		Currency:   t.reference,
		Multiplier: 1,
		Span:       amt.Span,
	}, nil
}

// fetchLive queries the rate endpoint, retrying once.
// Only well-formed ISO 4217 codes go out on the wire.
func (t *Table) fetchLive(ctx context.Context, code string) (float64, error) {
	if _, err := currency.ParseISO(code); err != nil {
		return 0, fmt.Errorf("not an ISO 4217 code: %q", code)
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if err := t.limiter.Wait(ctx); err != nil {
			return 0, err
		}
		r, err := t.fetchOnce(ctx, code)
		if err == nil {
			return r, nil
		}
		lastErr = err
	}
	return 0, lastErr
}

func (t *Table) fetchOnce(ctx context.Context, code string) (float64, error) {
	q := url.Values{}
	q.Set("base", code)
	q.Set("symbols", t.reference)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch rate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return 0, fmt.Errorf("read body: %w", err)
	}

	var parsed struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, fmt.Errorf("parse rates: %w", err)
	}

	r, ok := parsed.Rates[t.reference]
	if !ok || r <= 0 {
		return 0, fmt.Errorf("no %s rate in response", t.reference)
	}
	return r, nil
}
