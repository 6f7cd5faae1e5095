// Package pipeline runs corpus curation end to end: clean up the raw
// corpus, build the relevance index, rank, filter, and publish the result.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"time"

	"github.com/mfenderov/regcorpus/internal/corpus"
	"github.com/mfenderov/regcorpus/internal/filter"
	"github.com/mfenderov/regcorpus/internal/relevance"
	"github.com/mfenderov/regcorpus/internal/textproc"
	"github.com/mfenderov/regcorpus/pkg/models"
)

// Config holds pipeline configuration.
type Config struct {
	MinTokens       int
	KeepFraction    float64
	BootstrapSource string
	BootstrapScore  float64
	PositiveQuery   string   // Empty uses relevance.PositiveQuery
	NegativeQuery   string   // Empty uses relevance.NegativeQuery
	CompositeTerms  []string // Nil uses textproc.CompositeTerms
	ArtifactsDir    string
	RefinedPath     string
}

// Indexer receives the retained corpus for search.
type Indexer interface {
	CreateIndex(ctx context.Context) error
	IndexDocuments(ctx context.Context, docs []models.Document) (int, error)
	Refresh(ctx context.Context) error
}

// Uploader publishes artifacts and datasets to object storage.
type Uploader interface {
	Upload(ctx context.Context, key string, w io.WriterTo, contentType string) error
	UploadFile(ctx context.Context, key, filePath, contentType string) error
}

// Result holds pipeline execution results.
type Result struct {
	Loaded     int
	Eligible   int // After dedupe and the min-token filter
	Retained   []models.Document
	Vocabulary int
	Indexed    int
	Scorer     *relevance.Scorer
	Duration   time.Duration
	Errors     []error // Non-fatal publishing failures
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithIndexer indexes the retained corpus after ranking.
func WithIndexer(indexer Indexer) Option {
	return func(p *Pipeline) {
		p.indexer = indexer
	}
}

// WithUploader copies artifacts and the refined corpus to object storage.
func WithUploader(uploader Uploader) Option {
	return func(p *Pipeline) {
		p.uploader = uploader
	}
}

// Pipeline curates a scraped corpus.
type Pipeline struct {
	config   Config
	counter  textproc.TokenCounter
	indexer  Indexer
	uploader Uploader
}

// New creates a new Pipeline. counter measures document length for the
// min-token filter.
func New(config Config, counter textproc.TokenCounter, opts ...Option) *Pipeline {
	if config.PositiveQuery == "" {
		config.PositiveQuery = relevance.PositiveQuery
	}
	if config.NegativeQuery == "" {
		config.NegativeQuery = relevance.NegativeQuery
	}
	if config.CompositeTerms == nil {
		config.CompositeTerms = textproc.CompositeTerms
	}
	p := &Pipeline{config: config, counter: counter}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run curates docs. The refined corpus and relevance artifacts are written
// to disk; indexing and uploads, when configured, are best effort.
func (p *Pipeline) Run(ctx context.Context, docs []models.Document) (*Result, error) {
	start := time.Now()
	result := &Result{Loaded: len(docs)}

	slog.Info("starting curation", "documents", len(docs))

	docs = corpus.Dedupe(docs)
	corpus.CountTokens(docs, p.counter)
	docs = corpus.FilterMinTokens(docs, p.config.MinTokens)
	result.Eligible = len(docs)
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents with more than %d tokens", p.config.MinTokens)
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Content
	}
	tokens := relevance.AnalyzeAll(texts, p.config.CompositeTerms)

	dict := relevance.BuildDictionary(tokens)
	idx := relevance.NewIndex(tokens, dict)
	result.Vocabulary = dict.Len()
	slog.Info("built relevance index", "documents", idx.NumDocs(), "terms", dict.Len())

	scorer := relevance.NewScorer(dict, idx, p.config.PositiveQuery, p.config.NegativeQuery,
		relevance.WithCompositeTerms(p.config.CompositeTerms))
	result.Scorer = scorer

	bootstrap := p.config.BootstrapScore
	result.Retained = filter.RankAndFilter(docs, scorer, p.config.KeepFraction, filter.Options{
		BootstrapSource: p.config.BootstrapSource,
		BootstrapScore:  &bootstrap,
	})

	if err := relevance.SaveArtifacts(p.config.ArtifactsDir, dict, idx); err != nil {
		return nil, err
	}
	if err := corpus.Save(p.config.RefinedPath, result.Retained); err != nil {
		return nil, err
	}

	if p.uploader != nil {
		result.Errors = append(result.Errors, p.upload(ctx, dict, idx)...)
	}

	if p.indexer != nil {
		n, err := p.index(ctx, result.Retained)
		if err != nil {
			slog.Error("failed to index retained corpus", "error", err)
			result.Errors = append(result.Errors, err)
		}
		result.Indexed = n
	}

	result.Duration = time.Since(start)
	slog.Info("curation complete",
		"loaded", result.Loaded,
		"eligible", result.Eligible,
		"retained", len(result.Retained),
		"indexed", result.Indexed,
		"duration", result.Duration,
		"errors", len(result.Errors))

	return result, nil
}

func (p *Pipeline) upload(ctx context.Context, dict *relevance.Dictionary, idx *relevance.Index) []error {
	var errs []error
	uploads := []struct {
		key string
		w   io.WriterTo
	}{
		{path.Join("artifacts", relevance.DictionaryFile), dict},
		{path.Join("artifacts", relevance.IndexFile), idx},
	}
	for _, u := range uploads {
		if err := p.uploader.Upload(ctx, u.key, u.w, "application/json"); err != nil {
			slog.Error("failed to upload artifact", "key", u.key, "error", err)
			errs = append(errs, err)
		}
	}

	key := path.Join("datasets", filepath.Base(p.config.RefinedPath))
	if err := p.uploader.UploadFile(ctx, key, p.config.RefinedPath, "text/csv"); err != nil {
		slog.Error("failed to upload refined corpus", "key", key, "error", err)
		errs = append(errs, err)
	}
	return errs
}

func (p *Pipeline) index(ctx context.Context, docs []models.Document) (int, error) {
	if err := p.indexer.CreateIndex(ctx); err != nil {
		return 0, err
	}
	n, err := p.indexer.IndexDocuments(ctx, docs)
	if err != nil {
		return n, err
	}
	return n, p.indexer.Refresh(ctx)
}
