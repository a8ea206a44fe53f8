package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aidlens/aidlens/internal/model"
)

func newPipeline(t *testing.T) *Pipeline {
	t.Helper()
	cfg := model.DefaultConfig()
	cfg.FX.LiveDisabled = true
	cfg.Cache.Enabled = false
	cfg.Concurrency.RequestsPerSecond = 1000
	cfg.Concurrency.Burst = 100

	p, err := NewPipeline(cfg, nil)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	return p
}

func TestPipeline_ProcessRow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><p>Poland delivered 10 T-72 tanks from stocks in May 2023.</p></body></html>"))
	}))
	defer srv.Close()

	p := newPipeline(t)
	fact, err := p.ProcessRow(context.Background(), model.Context{Donor: "Poland"}, srv.URL+"/article")
	if err != nil {
		t.Fatalf("ProcessRow: %v", err)
	}
	if fact.Status != model.StatusDelivered {
		t.Errorf("Status %q", fact.Status)
	}
	if fact.EvidenceMonth != "2023-05" {
		t.Errorf("EvidenceMonth %q", fact.EvidenceMonth)
	}
	if fact.SourceURL != srv.URL+"/article" {
		t.Errorf("SourceURL %q", fact.SourceURL)
	}
}

func TestPipeline_ProcessRowFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := newPipeline(t)
	if _, err := p.ProcessRow(context.Background(), model.Context{Donor: "Poland"}, srv.URL+"/broken"); err == nil {
		t.Fatal("Expected an error for a failing fetch")
	}
}

func TestPipeline_ProcessDocument(t *testing.T) {
	p := newPipeline(t)

	fact := p.ProcessDocument(context.Background(),
		model.Context{Donor: "Germany"},
		model.Document{Text: "Germany announced a €500 million package.", SourceURL: "stdin"})

	if fact.Status != model.StatusCommitment {
		t.Errorf("Status %q", fact.Status)
	}
	if fact.Value == nil || *fact.Value != 5e8 {
		t.Errorf("Value %v, want 5e8", fact.Value)
	}
}

func TestPipeline_SearchQueries(t *testing.T) {
	p := newPipeline(t)

	queries := p.SearchQueries(context.Background(), model.Context{Donor: "Poland", ItemHint: "T-72"})
	if len(queries) == 0 {
		t.Fatal("No queries built")
	}
	for _, q := range queries {
		if !strings.HasPrefix(q, "https://www.google.com/search?q=") {
			t.Errorf("Unexpected query URL %q", q)
		}
	}
}
