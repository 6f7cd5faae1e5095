package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/mfenderov/regcorpus/internal/config"
	"github.com/mfenderov/regcorpus/internal/events"
	"github.com/mfenderov/regcorpus/internal/ingestion"
	"github.com/mfenderov/regcorpus/internal/scraper"
	"github.com/mfenderov/regcorpus/internal/storage"
	"github.com/mfenderov/regcorpus/pkg/models"
	"github.com/spf13/cobra"
)

var (
	scrapeURL        string
	scrapeSource     string
	scrapeNoIngest   bool
	scrapeRelevance  bool
	scrapeNoKeywords bool
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Crawl regulatory sources into the raw corpus",
	Long: `Crawl configured regulatory sources, or a single URL, and add the pages
to the raw corpus CSV. Every page is tagged with its source name.

With storage enabled, each source is first written to S3 as a snapshot and
then ingested into the corpus.

Examples:
  # Crawl every configured source
  regcorpus scrape

  # Crawl one configured source
  regcorpus scrape --source ESMA

  # Crawl a URL under a new source tag
  regcorpus scrape --url https://www.eba.europa.eu/ --source EBA

  # Keep only pages the saved relevance model scores above zero
  regcorpus scrape --relevance

  # Snapshot to S3 only
  regcorpus scrape --no-ingest`,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().StringVar(&scrapeURL, "url", "", "URL to crawl directly (requires --source)")
	scrapeCmd.Flags().StringVar(&scrapeSource, "source", "", "Source name to crawl, or the tag for --url")
	scrapeCmd.Flags().BoolVar(&scrapeNoIngest, "no-ingest", false, "With storage enabled, snapshot to S3 only")
	scrapeCmd.Flags().BoolVar(&scrapeRelevance, "relevance", false, "Drop pages that score at or below zero")
	scrapeCmd.Flags().BoolVar(&scrapeNoKeywords, "no-keywords", false, "Disable the keyword gate")
}

func runScrape(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()

	sources, err := selectSources(cfg)
	if err != nil {
		return err
	}

	var opts []scraper.Option
	if scrapeRelevance {
		scorer, err := loadScorer(cfg)
		if err != nil {
			return err
		}
		opts = append(opts, scraper.WithRelevance(scorer))
	}

	newScraper := func(src config.Source) *scraper.Scraper {
		depth := cfg.Scraper.MaxDepth
		if src.MaxDepth > 0 {
			depth = src.MaxDepth
		}
		keywords := cfg.Scraper.Keywords
		if scrapeNoKeywords {
			keywords = nil
		}
		return scraper.New(scraper.Config{
			Delay:       cfg.Scraper.Delay,
			MaxDepth:    depth,
			FollowLinks: cfg.Scraper.FollowLinks,
			Timeout:     cfg.Scraper.Timeout,
			UserAgent:   cfg.Scraper.UserAgent,
			Keywords:    keywords,
		}, opts...)
	}

	if cfg.Storage.Enabled {
		storageClient, err := newStorage(ctx, cfg)
		if err != nil {
			return err
		}
		return runScrapeToS3(ctx, cfg, storageClient, sources, newScraper)
	}

	return runScrapeToCorpus(ctx, cfg, sources, newScraper)
}

func selectSources(cfg config.Config) ([]config.Source, error) {
	if scrapeURL != "" {
		if scrapeSource == "" {
			return nil, fmt.Errorf("--url requires --source to tag the pages")
		}
		return []config.Source{{Name: scrapeSource, URL: scrapeURL}}, nil
	}

	var sources []config.Source
	for _, src := range cfg.Sources {
		if scrapeSource != "" && src.Name != scrapeSource {
			continue
		}
		if src.URL != "" {
			sources = append(sources, src)
		}
	}
	if len(sources) == 0 {
		if scrapeSource != "" {
			return nil, fmt.Errorf("source %q not found in config", scrapeSource)
		}
		return nil, fmt.Errorf("no sources configured and no --url provided")
	}
	return sources, nil
}

func runScrapeToCorpus(ctx context.Context, cfg config.Config, sources []config.Source, newScraper func(config.Source) *scraper.Scraper) error {
	var docs []models.Document
	for _, src := range sources {
		if ctx.Err() != nil {
			break
		}
		fmt.Printf("Scraping %s: %s\n", src.Name, src.URL)

		result, err := newScraper(src).Scrape(ctx, src.Name, src.URL)
		if err != nil {
			fmt.Printf("  Error: %v\n", err)
		}
		if result == nil {
			continue
		}

		docs = append(docs, result.Documents...)
		fmt.Printf("  Pages: %d, Rejected: %d, Linked files: %d\n",
			len(result.Documents), result.Rejected, len(result.FileLinks))
	}

	added, err := appendToCorpus(cfg.Corpus.Path, docs)
	if err != nil {
		return err
	}
	fmt.Printf("\nTotal: %d pages scraped, %d new documents in %s\n", len(docs), added, cfg.Corpus.Path)
	return nil
}

// runScrapeToS3 snapshots each source to S3 and, unless disabled, ingests
// every snapshot as soon as it is written.
func runScrapeToS3(ctx context.Context, cfg config.Config, storageClient *storage.Client, sources []config.Source, newScraper func(config.Source) *scraper.Scraper) error {
	if scrapeNoIngest {
		totalPages := 0
		for _, src := range sources {
			fmt.Printf("Scraping %s to S3: %s\n", src.Name, src.URL)
			result, err := newScraper(src).ScrapeToS3(ctx, src.Name, src.URL, storageClient)
			if err != nil {
				fmt.Printf("  Error: %v\n", err)
				continue
			}
			totalPages += result.PageCount
			fmt.Printf("  Pages: %d, Prefix: %s\n", result.PageCount, result.Prefix)
		}
		fmt.Printf("\nTotal: %d pages written to S3\n", totalPages)
		fmt.Println("Run 'regcorpus ingest --prefix <prefix>' to add them to the corpus")
		return nil
	}

	ingestEvents := make(chan events.IngestionCompleteEvent, len(sources))
	engine := ingestion.New(storageClient, ingestEvents)

	scrapeEvents := make(chan events.ScrapeCompleteEvent)
	done := make(chan struct{})
	var ingested []models.Document

	go func() {
		defer close(done)
		for event := range scrapeEvents {
			fmt.Printf("Ingesting %s: %s (%d pages)\n", event.Source, event.Prefix, event.PageCount)

			result, err := engine.Ingest(ctx, event.Prefix)
			if err != nil {
				fmt.Printf("  Error: %v\n", err)
				continue
			}
			ingested = append(ingested, result.Documents...)
			for _, e := range result.Errors {
				fmt.Printf("  Warning: %s\n", e)
			}
		}
	}()

	totalPages := 0
	for _, src := range sources {
		if ctx.Err() != nil {
			break
		}
		fmt.Printf("Scraping %s: %s\n", src.Name, src.URL)

		result, err := newScraper(src).ScrapeToS3(ctx, src.Name, src.URL, storageClient)
		if err != nil {
			fmt.Printf("  Error: %v\n", err)
			continue
		}
		totalPages += result.PageCount
		fmt.Printf("  Pages: %d, Prefix: %s\n", result.PageCount, result.Prefix)

		scrapeEvents <- events.ScrapeCompleteEvent{
			Bucket:    storageClient.Bucket(),
			Prefix:    result.Prefix,
			Source:    result.Source,
			SourceURL: result.SourceURL,
			PageCount: result.PageCount,
			Timestamp: time.Now(),
		}
	}

	close(scrapeEvents)
	<-done
	close(ingestEvents)

	var snapshots, warnings int
	var ingestTime time.Duration
	for e := range ingestEvents {
		snapshots++
		warnings += len(e.Errors)
		ingestTime += e.Duration
	}
	fmt.Printf("\nIngested %d snapshots in %v (%d warnings)\n", snapshots, ingestTime, warnings)

	added, err := appendToCorpus(cfg.Corpus.Path, ingested)
	if err != nil {
		return err
	}
	slog.Debug("scrape to S3 finished", "pages", totalPages, "ingested", len(ingested))
	fmt.Printf("\nTotal: %d pages scraped, %d new documents in %s\n", totalPages, added, cfg.Corpus.Path)
	return nil
}
