package cli

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ppiankov/medqa/internal/cache"
	"github.com/ppiankov/medqa/internal/extract"
	"github.com/ppiankov/medqa/internal/extract/adapters"
	"github.com/ppiankov/medqa/internal/model"
	"github.com/ppiankov/medqa/internal/pipeline"
	"github.com/ppiankov/medqa/internal/store"
	"github.com/ppiankov/medqa/internal/util"
	"github.com/ppiankov/medqa/internal/worker"
)

var (
	crawlConcurrency int
	crawlOutput      string
	crawlSink        string
	crawlFilter      string
	crawlTimeout     time.Duration
	crawlNoCache     bool
	crawlNoRobots    bool
	userAgent        string
	httpProxy        string
	httpsProxy       string
)

// crawlCmd represents the crawl command
var crawlCmd = &cobra.Command{
	Use:   "crawl <urls-file>",
	Short: "Scrape article URLs into section records",
	Long: `Crawl fetches every URL in the input file (one per line), segments each
article into titled sections and writes one record per section.

Pages that cannot be fetched or carry no usable content are skipped and
counted; they never stop the run.

Example:
  medqa crawl vinmec_urls.txt -o vinmec.jsonl
  medqa crawl urls.txt --sink csv -o records.csv
  medqa crawl urls.txt --sink mongo --concurrency 2`,
	Args: cobra.ExactArgs(1),
	RunE: runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)

	crawlCmd.Flags().IntVar(&crawlConcurrency, "concurrency", 1, "number of concurrent workers")
	crawlCmd.Flags().StringVarP(&crawlOutput, "output", "o", "", "output file (default: crawl.output)")
	crawlCmd.Flags().StringVar(&crawlSink, "sink", "", "record sink: jsonl, csv, json, mongo, postgres (default: crawl.sink)")
	crawlCmd.Flags().StringVar(&crawlFilter, "filter", "", "only crawl URLs containing this substring")
	crawlCmd.Flags().DurationVar(&crawlTimeout, "timeout", 0, "total timeout for the crawl (0 = none)")
	crawlCmd.Flags().BoolVar(&crawlNoCache, "no-cache", false, "disable cache (force fresh fetch)")
	crawlCmd.Flags().BoolVar(&crawlNoRobots, "no-robots", false, "ignore robots.txt")
	crawlCmd.Flags().StringVar(&userAgent, "ua", "", "HTTP User-Agent (default: http.user_agent)")
	crawlCmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	crawlCmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
}

// applyCrawlFlags overrides config with flags the user set
func applyCrawlFlags(cmd *cobra.Command, cfg *model.Config) {
	flags := cmd.Flags()
	if flags.Changed("concurrency") {
		cfg.Crawl.Concurrency = crawlConcurrency
	}
	if crawlOutput != "" {
		cfg.Crawl.Output = crawlOutput
	}
	if crawlSink != "" {
		cfg.Crawl.Sink = crawlSink
	}
	if crawlNoCache {
		cfg.Cache.Enabled = false
	}
	if crawlNoRobots {
		cfg.Crawl.RespectRobots = false
	}
	if userAgent != "" {
		cfg.HTTP.UserAgent = userAgent
	}
	if httpProxy != "" {
		cfg.HTTP.HTTPProxy = httpProxy
	}
	if httpsProxy != "" {
		cfg.HTTP.HTTPSProxy = httpsProxy
	}
	if cfg.Crawl.Concurrency < 1 {
		cfg.Crawl.Concurrency = 1
	}
}

// newScraper wires fetcher, cache, robots and adapters from config
func newScraper(cfg *model.Config, log zerolog.Logger) (*pipeline.Scraper, *util.RobotsChecker) {
	opts := []pipeline.FetcherOption{pipeline.WithLogger(log)}
	if pages := cache.FromConfig(cfg.Cache); pages != nil {
		opts = append(opts, pipeline.WithPageCache(pages))
	}

	var robots *util.RobotsChecker
	if cfg.Crawl.RespectRobots {
		// robots.txt is fetched through the same transport as articles
		probe := pipeline.NewFetcher(cfg.HTTP)
		robots = util.NewRobotsChecker(probe.Client(), cfg.HTTP.UserAgent, cfg.HTTP.Timeout)
		opts = append(opts, pipeline.WithRobots(robots))
	}

	fetcher := pipeline.NewFetcher(cfg.HTTP, opts...)
	seg := extract.NewSegmenter(extract.WithBoilerplate(cfg.Segment.Boilerplate...))
	registry := adapters.NewRegistry(seg)
	emitter := pipeline.NewEmitter(cfg.Segment.MinSectionText)

	return pipeline.NewScraper(fetcher, registry, emitter, log), robots
}

// applyCrawlDelays raises each host's delay to its robots.txt Crawl-delay
func applyCrawlDelays(ctx context.Context, robots *util.RobotsChecker, limiter *worker.Limiter, urls []string, log zerolog.Logger) {
	seen := make(map[string]bool)
	for _, raw := range urls {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" || seen[u.Host] {
			continue
		}
		seen[u.Host] = true

		_, delay, err := robots.CanFetch(ctx, u.Scheme+"://"+u.Host+"/")
		if err != nil {
			log.Debug().Err(err).Str("host", u.Host).Msg("robots.txt unavailable")
			continue
		}
		if delay > 0 {
			limiter.SetCrawlDelay(u.Host, delay)
			log.Info().Str("host", u.Host).Dur("crawl_delay", delay).Msg("robots.txt crawl delay")
		}
	}
}

func runCrawl(cmd *cobra.Command, args []string) (err error) {
	file := args[0]

	cfg, log, err := setup()
	if err != nil {
		return err
	}
	applyCrawlFlags(cmd, cfg)

	ctx := context.Background()
	if crawlTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, crawlTimeout)
		defer cancel()
	}

	banner("medqa Crawl")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Crawl.Concurrency)
	fmt.Fprintf(os.Stderr, "  Sink:         %s\n", cfg.Crawl.Sink)
	fmt.Fprintf(os.Stderr, "  Output:       %s\n", cfg.Crawl.Output)
	fmt.Fprintf(os.Stderr, "  Robots:       %v\n", cfg.Crawl.RespectRobots)
	fmt.Fprintf(os.Stderr, "  Cache:        %v\n", cfg.Cache.Enabled)
	fmt.Fprintf(os.Stderr, "\n")

	urls, err := worker.ReadURLsFromFile(file, crawlFilter)
	if err != nil {
		return fmt.Errorf("read urls: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ Loaded %d URLs\n\n", len(urls))

	sink, err := store.Open(ctx, cfg.Crawl.Sink, cfg.Crawl.Output, cfg.Store)
	if err != nil {
		return fmt.Errorf("open sink: %w", err)
	}
	defer func() {
		if closeErr := sink.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close sink: %w", closeErr)
		}
	}()

	scraper, robots := newScraper(cfg, log)
	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize).
		WithPoliteDelay(cfg.RateLimiting.DelayMin, cfg.RateLimiting.DelayMax)
	if robots != nil {
		applyCrawlDelays(ctx, robots, limiter, urls, log)
	}

	var (
		records  int
		writeErr error
	)
	processor := worker.NewBatchProcessor(scraper, limiter, cfg.Crawl.Concurrency)
	stats := processor.ProcessURLs(ctx, urls, func(i int, r *pipeline.PageResult) {
		if !r.Outcome.OK() {
			fmt.Fprintf(os.Stderr, "✗ [%d/%d] %s: %s %s\n", i+1, len(urls), r.URL, r.Outcome.Reason, r.Outcome.Detail)
			return
		}
		if writeErr != nil {
			return
		}
		if werr := sink.Write(ctx, r.Records); werr != nil {
			writeErr = werr
			log.Error().Err(werr).Str("url", r.URL).Msg("sink write failed")
			return
		}
		records += len(r.Records)
		cached := ""
		if r.FromCache {
			cached = ", cached"
		}
		fmt.Fprintf(os.Stderr, "✓ [%d/%d] %s (%d sections%s)\n", i+1, len(urls), r.Title, len(r.Records), cached)
	})

	banner("Crawl Complete")
	fmt.Fprintf(os.Stderr, "  Total:     %d URLs\n", stats.Total())
	printCounter(stats)
	fmt.Fprintf(os.Stderr, "  Records:   %d\n", records)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", cfg.Crawl.Output)
	fmt.Fprintf(os.Stderr, "\n")

	if writeErr != nil {
		return fmt.Errorf("write records: %w", writeErr)
	}
	return ctx.Err()
}
