package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/mfenderov/regcorpus/internal/config"
	"github.com/mfenderov/regcorpus/internal/corpus"
	"github.com/mfenderov/regcorpus/internal/elasticsearch"
	"github.com/mfenderov/regcorpus/internal/llm"
	"github.com/mfenderov/regcorpus/internal/relevance"
	"github.com/mfenderov/regcorpus/internal/storage"
	"github.com/mfenderov/regcorpus/internal/tasks"
	"github.com/mfenderov/regcorpus/internal/textproc"
	"github.com/mfenderov/regcorpus/pkg/models"
)

func newStorage(ctx context.Context, cfg config.Config) (*storage.Client, error) {
	client, err := storage.New(storage.Config{
		Endpoint:        cfg.Storage.Endpoint,
		Bucket:          cfg.Storage.Bucket,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		UseSSL:          cfg.Storage.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	if err := client.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket: %w", err)
	}
	return client, nil
}

func newElasticsearch(cfg config.Config) (*elasticsearch.Client, error) {
	client, err := elasticsearch.New(elasticsearch.Config{
		Addresses: cfg.Elasticsearch.Addresses,
		Index:     cfg.Elasticsearch.Index,
		Username:  cfg.Elasticsearch.Username,
		Password:  cfg.Elasticsearch.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ES client: %w", err)
	}
	return client, nil
}

func newLLM(cfg config.Config) (*llm.Client, error) {
	client, err := llm.New(llm.Config{
		BaseURL:           cfg.LLM.BaseURL,
		SocketPath:        cfg.LLM.SocketPath,
		APIKey:            cfg.LLM.APIKey,
		APIVersion:        cfg.LLM.APIVersion,
		Model:             cfg.LLM.Model,
		Timeout:           cfg.LLM.Timeout,
		RequestsPerSecond: cfg.LLM.RequestsPerSecond,
		Burst:             cfg.LLM.Burst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return client, nil
}

// newTokenCounter prefers the BPE encoding and falls back to word counts
// when it cannot be loaded, e.g. offline.
func newTokenCounter(cfg config.Config) textproc.TokenCounter {
	counter, err := textproc.NewTiktokenCounter(cfg.Corpus.Encoding)
	if err != nil {
		slog.Warn("falling back to whitespace token counts", "error", err)
		return textproc.WhitespaceCounter{}
	}
	return counter
}

func compositeTerms(cfg config.Config) []string {
	if cfg.Relevance.CompositeTerms != nil {
		return cfg.Relevance.CompositeTerms
	}
	return textproc.CompositeTerms
}

// loadScorer rebuilds the scorer from the artifacts written by rank.
func loadScorer(cfg config.Config) (*relevance.Scorer, error) {
	dict, idx, err := relevance.LoadArtifacts(cfg.Relevance.ArtifactsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load relevance artifacts (run 'regcorpus rank' first): %w", err)
	}

	pos, neg := cfg.Relevance.PositiveQuery, cfg.Relevance.NegativeQuery
	if pos == "" {
		pos = relevance.PositiveQuery
	}
	if neg == "" {
		neg = relevance.NegativeQuery
	}
	return relevance.NewScorer(dict, idx, pos, neg, relevance.WithCompositeTerms(compositeTerms(cfg))), nil
}

// newRegistry returns the built-in tasks with config overrides applied.
func newRegistry(cfg config.Config) *tasks.Registry {
	reg := tasks.NewRegistry()
	for _, t := range cfg.Tasks {
		reg.Set(tasks.Definition{
			Name:         t.Name,
			Prompt:       t.Prompt,
			System:       t.System,
			Sources:      t.Sources,
			BatchSize:    t.BatchSize,
			ParsedOutput: t.ParsedOutput,
		})
	}
	return reg
}

// appendToCorpus merges docs into the raw corpus file, keeping the first copy
// of every URL. It returns the number of new documents.
func appendToCorpus(path string, docs []models.Document) (int, error) {
	existing, err := corpus.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return 0, err
	}
	merged := corpus.Dedupe(append(existing, docs...))
	if err := corpus.Save(path, merged); err != nil {
		return 0, err
	}
	return len(merged) - len(existing), nil
}
