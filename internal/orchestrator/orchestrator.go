// Package orchestrator runs a prompt over a document set in fixed-size
// batches, persisting each batch so interrupted runs resume where they stopped.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mfenderov/regcorpus/internal/events"
	"github.com/mfenderov/regcorpus/internal/llm"
	"github.com/mfenderov/regcorpus/internal/retry"
	"github.com/mfenderov/regcorpus/pkg/models"
)

const (
	DefaultJitterMin = 300 * time.Millisecond
	DefaultJitterMax = 1200 * time.Millisecond
)

// Config holds orchestrator configuration.
type Config struct {
	Pricing        llm.Pricing
	Retry          retry.Policy
	JitterMin      time.Duration // Lower bound of the pause between batches
	JitterMax      time.Duration // Upper bound of the pause between batches
	RequestTimeout time.Duration // Per attempt; zero means no timeout
	CostLimit      float64       // Stop starting batches once run cost reaches it; zero means unlimited
}

// Task describes one prompt run.
type Task struct {
	Name           string
	PromptTemplate string // Must contain {context}
	SystemPrompt   string
	BatchSize      int
	ResultsDir     string // Per-task directory; batch files go to ResultsDir/processed
}

func (t Task) validate() error {
	switch {
	case t.Name == "":
		return errors.New("task name is required")
	case t.BatchSize < 1:
		return fmt.Errorf("task %s: batch size must be positive, got %d", t.Name, t.BatchSize)
	case t.ResultsDir == "":
		return fmt.Errorf("task %s: results directory is required", t.Name)
	case t.PromptTemplate == "":
		return fmt.Errorf("task %s: prompt template is required", t.Name)
	}
	return nil
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithEvents publishes a BatchPersisted event after every batch. Batches that
// were already processed report only Skipped.
func WithEvents(ch chan<- events.BatchPersisted) Option {
	return func(o *Orchestrator) { o.events = ch }
}

// WithSleep replaces the pause between batches.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(o *Orchestrator) { o.sleep = sleep }
}

// Orchestrator drives batched prompt runs against a Completer.
type Orchestrator struct {
	completer llm.Completer
	config    Config
	events    chan<- events.BatchPersisted
	sleep     func(ctx context.Context, d time.Duration) error
}

// New creates an Orchestrator.
func New(completer llm.Completer, config Config, opts ...Option) (*Orchestrator, error) {
	if completer == nil {
		return nil, errors.New("completer is required")
	}
	if config.JitterMax < config.JitterMin {
		return nil, fmt.Errorf("jitter max %s is below jitter min %s", config.JitterMax, config.JitterMin)
	}
	if config.Retry.MaxAttempts == 0 && config.Retry.Backoff == nil {
		config.Retry = retry.Default()
	}

	o := &Orchestrator{
		completer: completer,
		config:    config,
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// ExecuteTask runs task over docs and returns every record in the task's
// ledger: those persisted by earlier runs followed by the new ones in input
// order. Documents whose URL is already in the ledger are skipped. A request
// that exhausts its retries is logged and left for a later run.
func (o *Orchestrator) ExecuteTask(ctx context.Context, task Task, docs []models.Document) ([]models.ResponseRecord, error) {
	if err := task.validate(); err != nil {
		return nil, err
	}

	ledger := NewLedger(filepath.Join(task.ResultsDir, ProcessedDir))
	existing, err := ledger.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger for task %s: %w", task.Name, err)
	}
	acc := NewBatchAccumulator(existing)

	numBatches := (len(docs) + task.BatchSize - 1) / task.BatchSize
	slog.Info("executing task",
		"task", task.Name,
		"documents", len(docs),
		"batches", numBatches,
		"already_processed", len(existing))

	for b := range numBatches {
		if err := ctx.Err(); err != nil {
			return acc.Records(), err
		}
		if o.config.CostLimit > 0 && acc.Cost() >= o.config.CostLimit {
			slog.Warn("cost limit reached, stopping", "task", task.Name, "cost", acc.Cost(), "limit", o.config.CostLimit)
			break
		}

		batch := docs[b*task.BatchSize : min((b+1)*task.BatchSize, len(docs))]
		pending := acc.Pending(batch)
		if len(pending) == 0 {
			slog.Debug("batch already processed", "task", task.Name, "batch", b)
			o.publish(ctx, events.BatchPersisted{
				Task:      task.Name,
				Batch:     b,
				Batches:   numBatches,
				Skipped:   len(batch),
				Timestamp: time.Now(),
			})
			continue
		}

		records, failed := o.runBatch(ctx, task, pending)

		var path string
		if len(records) > 0 {
			path, err = ledger.Append(records)
			if err != nil {
				return acc.Records(), fmt.Errorf("failed to persist batch %d of task %s: %w", b, task.Name, err)
			}
		}
		acc.Add(records, failed)

		var batchCost float64
		for _, r := range records {
			batchCost += *r.Cost
		}
		slog.Info("batch complete",
			"task", task.Name,
			"batch", b,
			"succeeded", len(records),
			"failed", failed,
			"cost", batchCost)

		o.publish(ctx, events.BatchPersisted{
			Task:      task.Name,
			Batch:     b,
			Batches:   numBatches,
			File:      path,
			Succeeded: len(records),
			Failed:    failed,
			Skipped:   len(batch) - len(pending),
			Cost:      batchCost,
			Timestamp: time.Now(),
		})

		if b < numBatches-1 {
			if err := o.sleep(ctx, o.jitter()); err != nil {
				return acc.Records(), err
			}
		}
	}

	succeeded, failed, skipped := acc.Stats()
	slog.Info("task finished",
		"task", task.Name,
		"succeeded", succeeded,
		"failed", failed,
		"skipped", skipped,
		"cost", acc.Cost())

	return acc.Records(), nil
}

// runBatch sends one request per document concurrently. Each goroutine owns
// its result slot, so records come back in input order whatever the
// completion order. Failures never cancel siblings.
func (o *Orchestrator) runBatch(ctx context.Context, task Task, docs []models.Document) ([]models.ResponseRecord, int) {
	results := make([]*models.ResponseRecord, len(docs))

	var g errgroup.Group
	for i, doc := range docs {
		g.Go(func() error {
			resp, err := retry.Do(ctx, o.config.Retry, func(ctx context.Context) (llm.Response, error) {
				return o.complete(ctx, task, doc)
			})
			if err != nil {
				slog.Warn("request failed", "task", task.Name, "url", doc.URL, "error", err)
				return nil
			}

			cost := o.config.Pricing.Cost(resp)
			tokens := resp.TotalTokens()
			results[i] = &models.ResponseRecord{
				URL:           doc.URL,
				Source:        doc.Source,
				Content:       doc.Content,
				Task:          task.Name,
				TotalTokens:   &tokens,
				GeneratedText: resp.Text,
				Cost:          &cost,
			}
			return nil
		})
	}
	_ = g.Wait()

	records := make([]models.ResponseRecord, 0, len(docs))
	for _, r := range results {
		if r != nil {
			records = append(records, *r)
		}
	}
	return records, len(docs) - len(records)
}

func (o *Orchestrator) complete(ctx context.Context, task Task, doc models.Document) (llm.Response, error) {
	if o.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.config.RequestTimeout)
		defer cancel()
	}
	return o.completer.Complete(ctx, llm.Request{
		Prompt: BuildPrompt(task.PromptTemplate, doc.Content),
		System: task.SystemPrompt,
	})
}

func (o *Orchestrator) jitter() time.Duration {
	span := o.config.JitterMax - o.config.JitterMin
	if span <= 0 {
		return o.config.JitterMin
	}
	return o.config.JitterMin + rand.N(span+1)
}

func (o *Orchestrator) publish(ctx context.Context, e events.BatchPersisted) {
	if o.events == nil {
		return
	}
	select {
	case o.events <- e:
	case <-ctx.Done():
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
