// Package ingestion reads scrape snapshots back from object storage as
// corpus documents.
package ingestion

import (
	"context"
	"log/slog"
	"time"

	"github.com/mfenderov/regcorpus/internal/events"
	"github.com/mfenderov/regcorpus/internal/processor"
	"github.com/mfenderov/regcorpus/internal/storage"
	"github.com/mfenderov/regcorpus/pkg/models"
)

// Store is the subset of the storage client ingestion reads from.
type Store interface {
	GetMetadata(ctx context.Context, prefix string) (*storage.ScrapeMetadata, error)
	ListMarkdownFiles(ctx context.Context, prefix string) ([]string, error)
	GetMarkdown(ctx context.Context, prefix, filename string) (string, error)
}

// Result holds ingestion execution results.
type Result struct {
	Prefix    string
	Documents []models.Document
	Duration  time.Duration
	Errors    []string
}

// Engine turns a scrape prefix into documents.
type Engine struct {
	store  Store
	events chan<- events.IngestionCompleteEvent
}

// New creates a new ingestion engine. eventCh may be nil.
func New(store Store, eventCh chan<- events.IngestionCompleteEvent) *Engine {
	return &Engine{store: store, events: eventCh}
}

// Ingest reads every page under prefix. Pages that cannot be read are
// recorded in Result.Errors and skipped.
func (e *Engine) Ingest(ctx context.Context, prefix string) (*Result, error) {
	start := time.Now()
	result := &Result{Prefix: prefix}

	slog.Info("starting ingestion", "prefix", prefix)

	meta, err := e.store.GetMetadata(ctx, prefix)
	if err != nil {
		return nil, err
	}

	fileToURL := make(map[string]string, len(meta.Pages))
	for _, pageURL := range meta.Pages {
		fileToURL[models.GenerateDocumentID(pageURL)+".md"] = pageURL
	}

	files, err := e.store.ListMarkdownFiles(ctx, prefix)
	if err != nil {
		return nil, err
	}

	slog.Info("found files to ingest", "count", len(files))

	scrapedAt, _ := time.Parse(time.RFC3339, meta.Timestamp)

	for _, filename := range files {
		if ctx.Err() != nil {
			result.Errors = append(result.Errors, "context cancelled")
			break
		}

		pageURL, ok := fileToURL[filename]
		if !ok {
			slog.Warn("no URL found for file", "filename", filename)
			result.Errors = append(result.Errors, "no URL recorded for "+filename)
			continue
		}

		content, err := e.store.GetMarkdown(ctx, prefix, filename)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}

		doc := models.NewDocument(pageURL, meta.Source, content)
		doc.Title = processor.MarkdownTitle(content)
		doc.ScrapedAt = scrapedAt
		result.Documents = append(result.Documents, doc)
	}

	result.Duration = time.Since(start)
	slog.Info("ingestion complete",
		"prefix", prefix,
		"docs", len(result.Documents),
		"duration", result.Duration,
		"errors", len(result.Errors))

	if e.events != nil {
		select {
		case e.events <- events.IngestionCompleteEvent{
			Prefix:       prefix,
			DocsIngested: len(result.Documents),
			Duration:     result.Duration,
			Errors:       result.Errors,
		}:
		case <-ctx.Done():
		}
	}

	return result, nil
}
