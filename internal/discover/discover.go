// Package discover crawls source index pages and collects article URLs.
package discover

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly"
	"github.com/rs/zerolog"

	"github.com/ppiankov/medqa/internal/extract/adapters"
	"github.com/ppiankov/medqa/internal/model"
	"github.com/ppiankov/medqa/internal/util"
)

// Config controls the index crawl
type Config struct {
	UserAgent     string
	Timeout       time.Duration
	Parallelism   int
	Delay         time.Duration
	RandomDelay   time.Duration
	RespectRobots bool
	HTTPProxy     string
	HTTPSProxy    string
	NoProxy       string
}

// ConfigFromModel derives the crawl settings from the medqa config
func ConfigFromModel(cfg *model.Config) Config {
	return Config{
		UserAgent:     cfg.HTTP.UserAgent,
		Timeout:       cfg.HTTP.Timeout,
		Parallelism:   cfg.Crawl.Concurrency,
		Delay:         cfg.RateLimiting.DelayMin,
		RandomDelay:   cfg.RateLimiting.DelayMax - cfg.RateLimiting.DelayMin,
		RespectRobots: cfg.Crawl.RespectRobots,
		HTTPProxy:     cfg.HTTP.HTTPProxy,
		HTTPSProxy:    cfg.HTTP.HTTPSProxy,
		NoProxy:       cfg.HTTP.NoProxy,
	}
}

// PageFunc observes each index page; err is nil on success
type PageFunc func(pageURL string, links int, err error)

// Result is the outcome of one discovery run
type Result struct {
	URLs   []string // Article URLs, deduplicated, in index order
	Pages  int
	Failed int
}

// Discoverer walks index pages with a colly collector
type Discoverer struct {
	cfg Config
	log zerolog.Logger
}

// New creates a discoverer
func New(cfg Config, log zerolog.Logger) *Discoverer {
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = 1
	}
	return &Discoverer{cfg: cfg, log: log}
}

func (d *Discoverer) collector() *colly.Collector {
	c := colly.NewCollector(
		colly.UserAgent(d.cfg.UserAgent),
		colly.Async(true),
	)
	c.IgnoreRobotsTxt = !d.cfg.RespectRobots
	if d.cfg.Timeout > 0 {
		c.SetRequestTimeout(d.cfg.Timeout)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = util.NewProxyFunc(d.cfg.HTTPProxy, d.cfg.HTTPSProxy, d.cfg.NoProxy)
	c.WithTransport(transport)

	_ = c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: d.cfg.Parallelism,
		Delay:       d.cfg.Delay,
		RandomDelay: max(d.cfg.RandomDelay, 0),
	})
	return c
}

// Discover visits every index page of idx and collects its article links.
// Failed pages are counted and skipped.
func (d *Discoverer) Discover(ctx context.Context, idx adapters.Indexer, onPage PageFunc) (*Result, error) {
	pages := idx.IndexURLs()
	if len(pages) == 0 {
		return nil, errors.New("indexer has no index pages")
	}

	var (
		mu     sync.Mutex
		found  = make(map[string][]string, len(pages))
		failed = make(map[string]error)
	)

	c := d.collector()

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	c.OnResponse(func(r *colly.Response) {
		pageURL := r.Request.URL.String()
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(r.Body))

		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			failed[pageURL] = fmt.Errorf("parse index page: %w", err)
			return
		}
		found[pageURL] = idx.ArticleLinks(doc, pageURL)
	})

	c.OnError(func(r *colly.Response, err error) {
		mu.Lock()
		defer mu.Unlock()
		failed[r.Request.URL.String()] = err
	})

	for _, p := range pages {
		if err := c.Visit(p); err != nil {
			mu.Lock()
			failed[p] = err
			mu.Unlock()
		}
	}
	c.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{}
	seen := make(map[string]bool)
	for _, p := range pages {
		if err, ok := failed[p]; ok {
			res.Failed++
			d.log.Warn().Err(err).Str("url", p).Msg("index page failed")
			if onPage != nil {
				onPage(p, 0, err)
			}
			continue
		}
		links, ok := found[p]
		if !ok {
			continue
		}
		res.Pages++
		for _, l := range links {
			if !seen[l] {
				seen[l] = true
				res.URLs = append(res.URLs, l)
			}
		}
		if onPage != nil {
			onPage(p, len(links), nil)
		}
	}
	return res, nil
}
