package pipeline

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"golang.org/x/net/html/charset"

	"github.com/ppiankov/medqa/internal/cache"
	"github.com/ppiankov/medqa/internal/model"
	"github.com/ppiankov/medqa/internal/util"
)

// fetchSleepFunc is swapped out in tests
var fetchSleepFunc = util.Sleep

// ErrSoftBlocked is returned when every attempt got a block page
var ErrSoftBlocked = errors.New("soft-blocked by server")

// ErrRobotsDisallowed is returned for URLs robots.txt forbids
var ErrRobotsDisallowed = errors.New("disallowed by robots.txt")

// StatusError is a non-2xx response
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.Code, e.Status)
}

// Busy reports whether the server asked us to back off
func (e *StatusError) Busy() bool {
	return e.Code == http.StatusForbidden || e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Fetcher fetches HTML pages with a browser-like identity
type Fetcher struct {
	httpClient *http.Client
	cfg        model.HTTPConfig
	pages      *cache.Pages
	robots     *util.RobotsChecker
	log        zerolog.Logger
}

// FetcherOption configures a Fetcher
type FetcherOption func(*Fetcher)

// WithPageCache serves and stores pages through c
func WithPageCache(c *cache.Pages) FetcherOption {
	return func(f *Fetcher) { f.pages = c }
}

// WithRobots checks robots.txt before each network fetch
func WithRobots(r *util.RobotsChecker) FetcherOption {
	return func(f *Fetcher) { f.robots = r }
}

// WithLogger sets the fetch logger
func WithLogger(l zerolog.Logger) FetcherOption {
	return func(f *Fetcher) { f.log = l }
}

// NewFetcher creates a Fetcher from HTTP settings
func NewFetcher(cfg model.HTTPConfig, opts ...FetcherOption) *Fetcher {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 1
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 5_000_000
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy)
	if cfg.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via config
	}

	f := &Fetcher{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("stopped after 5 redirects")
				}
				return nil
			},
		},
		cfg: cfg,
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Client exposes the configured HTTP client
func (f *Fetcher) Client() *http.Client {
	return f.httpClient
}

// FetchResult contains the fetched HTML and metadata
type FetchResult struct {
	HTML        string
	StatusCode  int
	ContentType string
	FinalURL    string
	FromCache   bool
}

// Fetch performs one request. Non-2xx and block pages are errors.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "vi-VN,vi;q=0.9,en-US;q=0.8,en;q=0.7")
	if f.cfg.Referer != "" {
		req.Header.Set("Referer", f.cfg.Referer)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	contentType := resp.Header.Get("Content-Type")
	body, err := readBody(resp.Body, contentType, f.cfg.MaxBodyBytes)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if f.isBlockPage(body) {
		return nil, ErrSoftBlocked
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	return &FetchResult{
		HTML:        body,
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		FinalURL:    resp.Request.URL.String(),
	}, nil
}

// FetchWithRetry serves from cache when possible, otherwise fetches with
// bounded retries. Block pages wait BlockDelay, busy statuses BusyDelay,
// network errors (attempt+1)*RetryBase. Other failures return at once.
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (*FetchResult, error) {
	if page, ok := f.pages.Get(rawURL); ok {
		return &FetchResult{
			HTML:        page.HTML,
			StatusCode:  http.StatusOK,
			ContentType: page.ContentType,
			FinalURL:    page.FinalURL,
			FromCache:   true,
		}, nil
	}

	if f.robots != nil {
		allowed, _, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, ErrRobotsDisallowed
		}
	}

	var lastErr error
	for attempt := 0; attempt < f.cfg.MaxRetries; attempt++ {
		result, err := f.Fetch(ctx, rawURL)
		if err == nil {
			f.store(rawURL, result)
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil || !isRetryableFetchError(err) {
			return nil, err
		}
		if attempt == f.cfg.MaxRetries-1 {
			break
		}

		wait := f.retryDelay(err, attempt)
		f.log.Warn().Err(err).Str("url", rawURL).Int("attempt", attempt+1).Dur("wait", wait).Msg("fetch retry")
		if err := fetchSleepFunc(ctx, wait); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("giving up after %d attempts: %w", f.cfg.MaxRetries, lastErr)
}

func (f *Fetcher) retryDelay(err error, attempt int) time.Duration {
	var se *StatusError
	switch {
	case errors.Is(err, ErrSoftBlocked):
		return f.cfg.BlockDelay
	case errors.As(err, &se):
		return f.cfg.BusyDelay
	default:
		return time.Duration(attempt+1) * f.cfg.RetryBase
	}
}

func (f *Fetcher) store(rawURL string, r *FetchResult) {
	err := f.pages.Put(&cache.Page{
		URL:         rawURL,
		FinalURL:    r.FinalURL,
		ContentType: r.ContentType,
		HTML:        r.HTML,
		FetchedAt:   time.Now().UTC(),
	})
	if err != nil {
		f.log.Debug().Err(err).Str("url", rawURL).Msg("cache write failed")
	}
}

// isBlockPage matches markers against visible text, ignoring scripts and styles
func (f *Fetcher) isBlockPage(body string) bool {
	if len(f.cfg.BlockMarkers) == 0 {
		return false
	}
	lower := strings.ToLower(visibleText(body))
	for _, m := range f.cfg.BlockMarkers {
		if m != "" && strings.Contains(lower, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

func visibleText(body string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return body
	}
	doc.Find("script, style, noscript, template").Remove()
	return doc.Text()
}

// isRetryableFetchError classifies a Fetch error
func isRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrSoftBlocked) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Busy()
	}
	var ue *url.Error
	return errors.As(err, &ue)
}

// readBody reads up to max bytes and decodes them to UTF-8 using the
// declared or sniffed charset
func readBody(r io.Reader, contentType string, max int64) (string, error) {
	limited := io.LimitReader(r, max)
	decoded, err := charset.NewReader(limited, contentType)
	if err != nil {
		return "", err
	}
	b, err := io.ReadAll(decoded)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
