package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_FirstRequestImmediate(t *testing.T) {
	l := NewLimiter(1, 1)

	start := time.Now()
	if err := l.Wait(context.Background(), "https://example.org/a"); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("First request waited %v", elapsed)
	}
}

func TestLimiter_ThrottlesSameDomain(t *testing.T) {
	l := NewLimiter(10, 1)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := l.Wait(context.Background(), "https://example.org/page"); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
	// Burst 1 at 10 rps: two waits of ~100ms each
	if elapsed := time.Since(start); elapsed < 150*time.Millisecond {
		t.Errorf("Three requests completed in %v, throttling not applied", elapsed)
	}
}

func TestLimiter_DomainsAreIndependent(t *testing.T) {
	l := NewLimiter(1, 1)

	urls := []string{"https://a.example/x", "https://b.example/x", "https://c.example/x"}
	start := time.Now()
	for _, u := range urls {
		if err := l.Wait(context.Background(), u); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
		t.Errorf("Distinct domains throttled each other: %v", elapsed)
	}
}

func TestLimiter_SetDomainRate(t *testing.T) {
	l := NewLimiter(1, 1)
	l.SetDomainRate("slow.example", 1000, 100)

	start := time.Now()
	for i := 0; i < 5; i++ {
		if err := l.Wait(context.Background(), "https://slow.example/x"); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
		t.Errorf("Override not applied: %v", elapsed)
	}
}

func TestLimiter_WaitWithDelay(t *testing.T) {
	l := NewLimiter(1000, 100)

	start := time.Now()
	if err := l.WaitWithDelay(context.Background(), "https://example.org/x", 100*time.Millisecond); err != nil {
		t.Fatalf("WaitWithDelay: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("Crawl delay not honored: %v", elapsed)
	}
}

func TestLimiter_CancelledContext(t *testing.T) {
	l := NewLimiter(0.001, 1)
	// Exhaust the single token
	_ = l.Wait(context.Background(), "https://example.org/x")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := l.WaitWithDelay(ctx, "https://example.org/x", 0); err == nil {
		t.Fatal("Expected a context error while throttled")
	}
}

func TestLimiter_InvalidURL(t *testing.T) {
	l := NewLimiter(1, 1)
	if err := l.Wait(context.Background(), "http://[::1"); err == nil {
		t.Fatal("Expected an error for an unparseable URL")
	}
}
