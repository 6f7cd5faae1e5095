package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/mfenderov/regcorpus/internal/processor"
	"github.com/mfenderov/regcorpus/internal/storage"
	"github.com/mfenderov/regcorpus/pkg/models"
)

// DefaultBannedDomains are social and media sites never worth following from
// a regulator's page.
var DefaultBannedDomains = []string{
	"facebook.com", "twitter.com", "youtube.com", "instagram.com", "linkedin.com",
	"t.co", "x.com", "pinterest.com", "reddit.com", "flickr.com", "threads.net",
}

// fileExtensions are linked documents that are recorded but not fetched.
var fileExtensions = []string{".pdf", ".doc", ".docx"}

// Config holds scraper configuration.
type Config struct {
	Delay         time.Duration
	MaxDepth      int
	FollowLinks   bool
	UserAgent     string
	Timeout       time.Duration
	Keywords      []string // A page must mention one of these; empty keeps every page
	BannedDomains []string // Nil uses DefaultBannedDomains
}

// Scorer scores page text for relevance.
type Scorer interface {
	Score(text string) float64
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithRelevance keeps only pages that score above zero.
func WithRelevance(scorer Scorer) Option {
	return func(s *Scraper) {
		s.scorer = scorer
	}
}

// Scraper crawls a regulatory website and returns its pages as documents.
type Scraper struct {
	config    Config
	processor *processor.Processor
	scorer    Scorer
}

// Result holds the pages kept from one source.
type Result struct {
	Source    string
	Documents []models.Document
	FileLinks []string // Linked PDF and Word files, in discovery order
	Rejected  int      // Pages dropped by the keyword or relevance gate
}

// New creates a new Scraper with the given configuration.
func New(config Config, opts ...Option) *Scraper {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = "regcorpus/1.0"
	}
	if config.BannedDomains == nil {
		config.BannedDomains = DefaultBannedDomains
	}
	s := &Scraper{
		config:    config,
		processor: processor.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scrape crawls startURL and tags every kept page with source.
// The context can be used to cancel the crawl; pages scraped so far are
// returned together with the context error.
func (s *Scraper) Scrape(ctx context.Context, source, startURL string) (*Result, error) {
	result := &Result{Source: source}
	var mu sync.Mutex
	var cancelled atomic.Bool
	seenFiles := make(map[string]bool)

	slog.Debug("starting scrape", "source", source, "url", startURL, "max_depth", s.config.MaxDepth)

	parsedURL, err := url.Parse(startURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	c := colly.NewCollector(
		colly.MaxDepth(s.config.MaxDepth),
		colly.UserAgent(s.config.UserAgent),
	)

	c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Delay:       s.config.Delay,
		Parallelism: 2,
	})

	c.SetRequestTimeout(s.config.Timeout)

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			cancelled.Store(true)
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		slog.Debug("skipping page", "url", r.Request.URL.String(), "status", r.StatusCode, "error", err)
	})

	c.OnResponse(func(r *colly.Response) {
		if r.StatusCode >= 400 {
			return
		}

		pageURL := r.Request.URL.String()
		contentType := r.Headers.Get("Content-Type")
		if strings.Contains(strings.ToLower(contentType), "application/pdf") {
			mu.Lock()
			if !seenFiles[pageURL] {
				seenFiles[pageURL] = true
				result.FileLinks = append(result.FileLinks, pageURL)
			}
			mu.Unlock()
			return
		}

		title, text, err := s.processor.ToText(pageURL, contentType, string(r.Body))
		if err != nil {
			slog.Warn("failed to convert page", "url", pageURL, "error", err)
			return
		}

		if !s.keep(text) {
			slog.Debug("page rejected by gate", "url", pageURL)
			mu.Lock()
			result.Rejected++
			mu.Unlock()
			return
		}

		doc := models.NewDocument(pageURL, source, text)
		doc.Title = title
		doc.ScrapedAt = time.Now()

		slog.Debug("scraped page", "url", pageURL, "content_type", contentType, "size", len(text))

		mu.Lock()
		result.Documents = append(result.Documents, doc)
		mu.Unlock()
	})

	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		absoluteURL := e.Request.AbsoluteURL(e.Attr("href"))
		linkURL, err := url.Parse(absoluteURL)
		if err != nil || (linkURL.Scheme != "http" && linkURL.Scheme != "https") {
			return
		}
		if s.banned(linkURL.Hostname()) {
			return
		}

		if isFileLink(linkURL) {
			mu.Lock()
			if !seenFiles[absoluteURL] {
				seenFiles[absoluteURL] = true
				result.FileLinks = append(result.FileLinks, absoluteURL)
			}
			mu.Unlock()
			return
		}

		if s.config.FollowLinks && linkURL.Host == parsedURL.Host {
			e.Request.Visit(absoluteURL)
		}
	})

	if err := c.Visit(startURL); err != nil {
		slog.Debug("visit error (continuing)", "url", startURL, "error", err)
		return result, nil
	}

	c.Wait()

	if cancelled.Load() {
		slog.Info("scrape cancelled by context", "source", source, "pages_scraped", len(result.Documents))
		return result, ctx.Err()
	}

	slog.Debug("scrape complete", "source", source, "pages", len(result.Documents), "files", len(result.FileLinks))
	return result, nil
}

// keep applies the keyword gate, then the relevance gate.
func (s *Scraper) keep(text string) bool {
	if len(s.config.Keywords) > 0 {
		lower := strings.ToLower(text)
		if !slices.ContainsFunc(s.config.Keywords, func(kw string) bool {
			return strings.Contains(lower, strings.ToLower(kw))
		}) {
			return false
		}
	}
	if s.scorer != nil && s.scorer.Score(text) <= 0 {
		return false
	}
	return true
}

// banned reports whether host is a banned domain or one of its subdomains.
func (s *Scraper) banned(host string) bool {
	host = strings.ToLower(host)
	for _, d := range s.config.BannedDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func isFileLink(u *url.URL) bool {
	ext := strings.ToLower(path.Ext(u.Path))
	return slices.Contains(fileExtensions, ext)
}

// ScrapeResult holds the result of a ScrapeToS3 operation.
type ScrapeResult struct {
	Prefix    string // S3 prefix where files were written
	Source    string
	PageCount int
	SourceURL string
}

// ScrapeToS3 scrapes a source and writes its pages to S3 under
// scrapes/<source>/<timestamp>-<id>.
func (s *Scraper) ScrapeToS3(ctx context.Context, source, startURL string, storageClient *storage.Client) (*ScrapeResult, error) {
	timestamp := time.Now().UTC().Format("2006-01-02T15-04-05")
	shortID := models.GenerateDocumentID(fmt.Sprintf("%s-%d", startURL, time.Now().UnixNano()))[:8]
	prefix := fmt.Sprintf("scrapes/%s/%s-%s", storage.PrefixSegment(source), timestamp, shortID)

	slog.Info("starting scrape to S3", "source", source, "url", startURL, "prefix", prefix)

	result, err := s.Scrape(ctx, source, startURL)
	if err != nil && (result == nil || len(result.Documents) == 0) {
		return nil, fmt.Errorf("scrape failed: %w", err)
	}

	var pageURLs []string
	for _, doc := range result.Documents {
		filename := doc.ID + ".md"
		if err := storageClient.PutMarkdown(ctx, prefix, filename, doc.Content); err != nil {
			slog.Error("failed to write to S3", "url", doc.URL, "error", err)
			continue
		}
		pageURLs = append(pageURLs, doc.URL)
	}

	meta := storage.ScrapeMetadata{
		Source:    source,
		SourceURL: startURL,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		PageCount: len(pageURLs),
		Pages:     pageURLs,
		FileLinks: result.FileLinks,
	}
	if err := storageClient.PutMetadata(ctx, prefix, meta); err != nil {
		return nil, fmt.Errorf("failed to write metadata: %w", err)
	}

	slog.Info("scrape to S3 complete", "source", source, "prefix", prefix, "pages", len(pageURLs))

	return &ScrapeResult{
		Prefix:    prefix,
		Source:    source,
		PageCount: len(pageURLs),
		SourceURL: startURL,
	}, nil
}
