package util

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewProxyFunc(t *testing.T) {
	fn := NewProxyFunc("http://proxy:8080", "http://secure:8443", "internal.lan, .example.org")

	tests := []struct {
		target string
		want   string
	}{
		{"http://vinmec.com/", "http://proxy:8080"},
		{"https://medlatec.vn/", "http://secure:8443"},
		{"https://api.example.org/", ""},
		{"http://internal.lan/x", ""},
	}
	for _, tt := range tests {
		u, _ := url.Parse(tt.target)
		got, err := fn(&http.Request{URL: u})
		if err != nil {
			t.Fatalf("%s: %v", tt.target, err)
		}
		gotStr := ""
		if got != nil {
			gotStr = got.String()
		}
		if gotStr != tt.want {
			t.Errorf("%s: proxy = %q, want %q", tt.target, gotStr, tt.want)
		}
	}
}

func TestRobotsChecker(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			hits.Add(1)
			_, _ = fmt.Fprint(w, "User-agent: *\nDisallow: /private/\nCrawl-delay: 2\n")
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	rc := NewRobotsChecker(nil, "medqa-test", 5*time.Second)
	ctx := context.Background()

	ok, delay, err := rc.CanFetch(ctx, server.URL+"/benh/a")
	if err != nil || !ok {
		t.Fatalf("public path: ok=%v err=%v", ok, err)
	}
	if delay != 2*time.Second {
		t.Errorf("crawl delay = %v", delay)
	}

	ok, _, _ = rc.CanFetch(ctx, server.URL+"/private/x")
	if ok {
		t.Error("private path allowed")
	}
	if hits.Load() != 1 {
		t.Errorf("robots.txt fetched %d times", hits.Load())
	}
}

func TestRobotsCheckerMissing(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	rc := NewRobotsChecker(server.Client(), "medqa-test", time.Second)
	ok, _, err := rc.CanFetch(context.Background(), server.URL+"/anything")
	if err != nil || !ok {
		t.Errorf("missing robots.txt should allow: ok=%v err=%v", ok, err)
	}
}

func TestSleep(t *testing.T) {
	if err := Sleep(context.Background(), time.Millisecond); err != nil {
		t.Errorf("Sleep = %v, want nil", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	if err := Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("Sleep on cancelled ctx = %v, want context.Canceled", err)
	}
	if time.Since(start) > time.Second {
		t.Error("Sleep did not return on cancel")
	}
}
