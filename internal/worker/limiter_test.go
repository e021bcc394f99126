package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	if l := NewLimiter(10, 5); l.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", l.defaultBurst)
	}
	if l := NewLimiter(10, -1); l.defaultBurst != 1 {
		t.Errorf("expected default burst 1 for negative input, got %d", l.defaultBurst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "http://example.com/foo"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
	if err := limiter.Wait(ctx, "http://medlatec.vn"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_RateLimit(t *testing.T) {
	limiter := NewLimiter(20, 1) // one token every 50ms
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := limiter.Wait(ctx, "http://example.com/a"); err != nil {
			t.Fatal(err)
		}
	}
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Errorf("expected rate limiting, 3 waits took %v", elapsed)
	}
}

func TestLimiter_PoliteDelay(t *testing.T) {
	limiter := NewLimiter(0, 1).WithPoliteDelay(20*time.Millisecond, 60*time.Millisecond)
	limiter.jitter = func(n int64) int64 { return 0 }

	if d := limiter.politeDelay(); d != 20*time.Millisecond {
		t.Errorf("delay with zero jitter = %v", d)
	}
	limiter.jitter = func(n int64) int64 { return n - 1 }
	if d := limiter.politeDelay(); d != 60*time.Millisecond {
		t.Errorf("delay with max jitter = %v", d)
	}

	start := time.Now()
	if err := limiter.Wait(context.Background(), "http://example.com"); err != nil {
		t.Fatal(err)
	}
	if time.Since(start) < 50*time.Millisecond {
		t.Error("polite delay not applied")
	}
}

func TestLimiter_CrawlDelay(t *testing.T) {
	limiter := NewLimiter(0, 1)
	limiter.SetCrawlDelay("example.com", 40*time.Millisecond)
	limiter.SetCrawlDelay("example.com", 10*time.Millisecond) // lower values ignored

	start := time.Now()
	if err := limiter.Wait(context.Background(), "http://example.com/x"); err != nil {
		t.Fatal(err)
	}
	if time.Since(start) < 35*time.Millisecond {
		t.Error("crawl delay not applied")
	}
}

func TestLimiter_WaitCancelled(t *testing.T) {
	limiter := NewLimiter(0, 1).WithPoliteDelay(time.Second, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := limiter.Wait(ctx, "http://example.com"); err == nil {
		t.Error("expected context error")
	}
}

func TestLimiter_SetDomainRate(t *testing.T) {
	limiter := NewLimiter(1, 1)
	limiter.SetDomainRate("fast.com", 1000, 10)

	start := time.Now()
	for i := 0; i < 5; i++ {
		if err := limiter.Wait(context.Background(), "http://fast.com/x"); err != nil {
			t.Fatal(err)
		}
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("custom domain rate not used")
	}
}

func TestExtractHost(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.vinmec.com/vie/benh/", "www.vinmec.com"},
		{"http://localhost:8080/x", "localhost:8080"},
	}
	for _, tt := range tests {
		got, err := extractHost(tt.url)
		if err != nil || got != tt.want {
			t.Errorf("extractHost(%q) = %q, %v", tt.url, got, err)
		}
	}
	if _, err := extractHost("://bad"); err == nil {
		t.Error("expected parse error")
	}
}
