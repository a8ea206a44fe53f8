package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/aidlens/aidlens/internal/cache"
	"github.com/aidlens/aidlens/internal/model"
	"github.com/aidlens/aidlens/internal/util"
	"github.com/aidlens/aidlens/internal/worker"
)

// Fetcher retrieves source pages and reduces them to plain-text Documents.
// The engine itself never fetches; this is the collaborator that feeds it.
// Robots.txt is honored, requests are rate limited per domain, and the
// extracted text is cached so re-runs do not refetch.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	store      cache.Cache
	robots     *util.RobotsChecker
	limiter    *worker.Limiter
	log        *zap.Logger
}

// NewFetcher creates a fetcher from the HTTP and concurrency configuration
func NewFetcher(cfg *model.Config, store cache.Cache, log *zap.Logger) *Fetcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: cfg.HTTP.Timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: cfg.HTTP.UserAgent,
		maxBytes:  cfg.HTTP.MaxBodyBytes,
		store:     store,
		robots:    util.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout),
		limiter:   worker.NewLimiter(cfg.Concurrency.RequestsPerSecond, cfg.Concurrency.Burst),
		log:       log,
	}
}

// Fetch retrieves a URL and returns its visible text as a Document.
// Non-HTML content (PDF and friends) yields an empty Document rather than
// an error; document-format extraction is a separate collaborator's job.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (model.Document, error) {
	if f.store != nil {
		if data, found := f.store.Get(cache.CacheKey(rawURL)); found {
			return model.Document{Text: string(data), SourceURL: rawURL}, nil
		}
	}

	allowed, delay, _ := f.robots.CanFetch(ctx, rawURL)
	if !allowed {
		return model.Document{SourceURL: rawURL}, fmt.Errorf("disallowed by robots.txt: %s", rawURL)
	}
	if err := f.limiter.WaitWithDelay(ctx, rawURL, delay); err != nil {
		return model.Document{SourceURL: rawURL}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return model.Document{SourceURL: rawURL}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en;q=0.8, *;q=0.5")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return model.Document{SourceURL: rawURL}, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return model.Document{SourceURL: rawURL}, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	ctype := strings.ToLower(resp.Header.Get("Content-Type"))
	if ctype != "" && !strings.Contains(ctype, "html") && !strings.Contains(ctype, "text/plain") {
		f.log.Debug("skipping non-HTML content",
			zap.String("url", rawURL), zap.String("content_type", ctype))
		return model.Document{SourceURL: rawURL}, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return model.Document{SourceURL: rawURL}, fmt.Errorf("read body: %w", err)
	}

	text := string(body)
	if strings.Contains(ctype, "html") || ctype == "" {
		text = VisibleText(text)
		// Surface the declared publication date so undated articles still
		// carry a month the temporal extractor can find.
		if pub := publishedTime(string(body)); pub != "" {
			text = "Published " + pub + ". " + text
		}
	}

	if f.store != nil {
		_ = f.store.Set(cache.CacheKey(rawURL), []byte(text), 0)
	}

	return model.Document{Text: text, SourceURL: resp.Request.URL.String()}, nil
}

// VisibleText extracts readable text from HTML, skipping script, style and
// other non-content elements. Malformed markup degrades to whatever text
// nodes are recoverable.
func VisibleText(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "svg":
				return
			}
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				buf.WriteString(text)
				buf.WriteByte(' ')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.TrimSpace(buf.String())
}

// publishedTime pulls article:published_time metadata out of the raw HTML
func publishedTime(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}

	var found string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "meta" {
			var prop, content string
			for _, a := range n.Attr {
				switch a.Key {
				case "property", "name":
					prop = a.Val
				case "content":
					content = a.Val
				}
			}
			if prop == "article:published_time" && content != "" {
				found = content
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return found
}
