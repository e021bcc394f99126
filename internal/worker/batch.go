package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/medqa/internal/model"
	"github.com/ppiankov/medqa/internal/pipeline"
)

// PageScraper scrapes one URL
type PageScraper interface {
	ScrapePage(ctx context.Context, url string) *pipeline.PageResult
}

// PageJob scrapes one URL after the limiter allows it
type PageJob struct {
	URL     string
	Scraper PageScraper
	Limiter *Limiter
}

// Execute executes the page job
func (j *PageJob) Execute(ctx context.Context) Result {
	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx, j.URL); err != nil {
			return &pipeline.PageResult{
				URL:     j.URL,
				Outcome: model.Skip(model.SkipFetchFailed, err.Error()),
			}
		}
	}
	return j.Scraper.ScrapePage(ctx, j.URL)
}

// BatchProcessor scrapes many URLs on a bounded pool
type BatchProcessor struct {
	scraper     PageScraper
	limiter     *Limiter
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(scraper PageScraper, limiter *Limiter, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		scraper:     scraper,
		limiter:     limiter,
		concurrency: concurrency,
	}
}

// ProcessURLs scrapes urls and calls emit once per URL in input order.
// The returned counter tallies outcomes by reason.
func (b *BatchProcessor) ProcessURLs(ctx context.Context, urls []string, emit func(i int, r *pipeline.PageResult)) model.Counter {
	stats := model.Counter{}
	if len(urls) == 0 {
		return stats
	}

	jobs := make([]Job, len(urls))
	for i, u := range urls {
		jobs[i] = &PageJob{URL: u, Scraper: b.scraper, Limiter: b.limiter}
	}

	NewPool(b.concurrency).Run(ctx, jobs, func(i int, r Result) {
		pr := r.(*pipeline.PageResult)
		stats.Add(pr.Outcome)
		if emit != nil {
			emit(i, pr)
		}
	})
	return stats
}

// ReadURLsFromFile reads URLs from a file (one per line). Blank lines and
// '#' comments are skipped, duplicates dropped, order kept. When filter is
// non-empty only lines containing it are kept.
func ReadURLsFromFile(filePath, filter string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var urls []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if filter != "" && !strings.Contains(line, filter) {
			continue
		}

		if !seen[line] {
			seen[line] = true
			urls = append(urls, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return urls, nil
}
