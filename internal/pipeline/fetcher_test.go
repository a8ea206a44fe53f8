package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aidlens/aidlens/internal/cache"
	"github.com/aidlens/aidlens/internal/model"
)

func fetcherConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.HTTP.Timeout = 5 * time.Second
	cfg.Concurrency.RequestsPerSecond = 1000
	cfg.Concurrency.Burst = 100
	return cfg
}

func TestVisibleText_SkipsNonContent(t *testing.T) {
	page := `<html><head>
		<style>body { color: red; }</style>
		<script>var tracking = "noise";</script>
	</head><body>
		<h1>Aid update</h1>
		<noscript>enable javascript</noscript>
		<p>Ten howitzers were delivered.</p>
	</body></html>`

	text := VisibleText(page)
	if !strings.Contains(text, "Aid update") || !strings.Contains(text, "Ten howitzers were delivered.") {
		t.Errorf("Visible text missing content: %q", text)
	}
	for _, noise := range []string{"tracking", "color: red", "enable javascript"} {
		if strings.Contains(text, noise) {
			t.Errorf("Visible text contains %q: %q", noise, text)
		}
	}
}

func TestVisibleText_MalformedHTML(t *testing.T) {
	text := VisibleText("<p>unclosed paragraph <b>with bold")
	if !strings.Contains(text, "unclosed paragraph") {
		t.Errorf("Expected recoverable text, got %q", text)
	}
}

func TestPublishedTime(t *testing.T) {
	page := `<html><head>
		<meta property="article:published_time" content="2023-03-14T10:00:00Z">
	</head><body>x</body></html>`
	if got := publishedTime(page); got != "2023-03-14T10:00:00Z" {
		t.Errorf("publishedTime = %q", got)
	}
	if got := publishedTime("<html><body>no meta</body></html>"); got != "" {
		t.Errorf("Expected empty, got %q", got)
	}
}

func TestFetcher_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><head>
			<meta property="article:published_time" content="2023-05-02T08:00:00Z">
			<script>ignore()</script>
		</head><body><p>Poland delivered 10 tanks.</p></body></html>`))
	}))
	defer srv.Close()

	f := NewFetcher(fetcherConfig(), nil, nil)
	doc, err := f.Fetch(context.Background(), srv.URL+"/article")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !strings.HasPrefix(doc.Text, "Published 2023-05-02T08:00:00Z. ") {
		t.Errorf("Missing published-time prefix: %q", doc.Text)
	}
	if !strings.Contains(doc.Text, "Poland delivered 10 tanks.") {
		t.Errorf("Missing body text: %q", doc.Text)
	}
	if strings.Contains(doc.Text, "ignore()") {
		t.Errorf("Script content leaked into the text: %q", doc.Text)
	}
	if doc.SourceURL != srv.URL+"/article" {
		t.Errorf("SourceURL %q", doc.SourceURL)
	}
}

func TestFetcher_CacheHitSkipsNetwork(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		hits++
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body>cached page</body></html>"))
	}))
	defer srv.Close()

	store := cache.NewMemoryCache(time.Minute, 0)
	f := NewFetcher(fetcherConfig(), store, nil)

	url := srv.URL + "/page"
	if _, err := f.Fetch(context.Background(), url); err != nil {
		t.Fatalf("First fetch: %v", err)
	}
	doc, err := f.Fetch(context.Background(), url)
	if err != nil {
		t.Fatalf("Second fetch: %v", err)
	}
	if hits != 1 {
		t.Errorf("Page fetched %d times, want 1", hits)
	}
	if !strings.Contains(doc.Text, "cached page") {
		t.Errorf("Cached text %q", doc.Text)
	}
}

func TestFetcher_RobotsDisallow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
			return
		}
		t.Errorf("Disallowed path was requested: %s", r.URL.Path)
	}))
	defer srv.Close()

	f := NewFetcher(fetcherConfig(), nil, nil)
	if _, err := f.Fetch(context.Background(), srv.URL+"/private/doc"); err == nil {
		t.Fatal("Expected an error for a robots-disallowed URL")
	}
}

func TestFetcher_NonHTMLSkipped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4"))
	}))
	defer srv.Close()

	f := NewFetcher(fetcherConfig(), nil, nil)
	doc, err := f.Fetch(context.Background(), srv.URL+"/report.pdf")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if doc.Text != "" {
		t.Errorf("Expected an empty document for PDF content, got %q", doc.Text)
	}
}

func TestFetcher_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := NewFetcher(fetcherConfig(), nil, nil)
	if _, err := f.Fetch(context.Background(), srv.URL+"/down"); err == nil {
		t.Fatal("Expected an error for a 5xx response")
	}
}
