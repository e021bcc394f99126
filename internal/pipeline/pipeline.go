package pipeline

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/ppiankov/medqa/internal/extract/adapters"
	"github.com/ppiankov/medqa/internal/model"
)

// Scraper runs fetch → adapter → segment → emit for one page at a time
type Scraper struct {
	fetcher  *Fetcher
	registry *adapters.Registry
	emitter  *Emitter
	log      zerolog.Logger
}

// NewScraper creates a scraper
func NewScraper(fetcher *Fetcher, registry *adapters.Registry, emitter *Emitter, log zerolog.Logger) *Scraper {
	return &Scraper{
		fetcher:  fetcher,
		registry: registry,
		emitter:  emitter,
		log:      log,
	}
}

// PageResult is the outcome of scraping one URL
type PageResult struct {
	URL       string
	Title     string
	Adapter   string
	Records   []model.Record
	Outcome   model.Outcome
	FromCache bool
}

// GetError implements worker.Result. Skips are outcomes, not errors.
func (r *PageResult) GetError() error {
	return nil
}

// ScrapePage never returns an error for a bad page: fetch failures, robots
// refusals and missing content all come back as a skip outcome.
func (s *Scraper) ScrapePage(ctx context.Context, rawURL string) *PageResult {
	res := &PageResult{URL: rawURL}

	fetched, err := s.fetcher.FetchWithRetry(ctx, rawURL)
	if err != nil {
		reason := model.SkipFetchFailed
		if errors.Is(err, ErrRobotsDisallowed) {
			reason = model.SkipRobots
		}
		s.log.Debug().Err(err).Str("url", rawURL).Msg("fetch failed")
		res.Outcome = model.Skip(reason, err.Error())
		return res
	}
	res.FromCache = fetched.FromCache

	adapter := s.registry.FindAdapter(rawURL)
	res.Adapter = adapter.Name()

	page, outcome := adapter.Extract(fetched.HTML, rawURL)
	if !outcome.OK() {
		s.log.Debug().Str("url", rawURL).Str("reason", string(outcome.Reason)).Msg("page skipped")
		res.Outcome = outcome
		return res
	}
	res.Title = page.Meta.Title

	res.Records, res.Outcome = s.emitter.Emit(page.Meta, page.Sections)
	return res
}
