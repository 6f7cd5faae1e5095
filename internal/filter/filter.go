// Package filter ranks a corpus by relevance score and drops its least
// relevant share.
package filter

import (
	"cmp"
	"log/slog"
	"math"
	"slices"

	"github.com/mfenderov/regcorpus/pkg/models"
)

const (
	// DefaultBootstrapSource tags hand-curated seed documents that bypass scoring.
	DefaultBootstrapSource = "OSI"
	// DefaultBootstrapScore is the fixed score given to bootstrap documents.
	DefaultBootstrapScore = 0.3
	// DefaultKeepFraction is the keep fraction used when none is configured.
	DefaultKeepFraction = 0.8
)

// Scorer scores a document's raw text.
type Scorer interface {
	Score(text string) float64
}

// Options tune ranking. The zero value selects the defaults.
type Options struct {
	BootstrapSource string
	BootstrapScore  *float64
}

func (o Options) withDefaults() Options {
	if o.BootstrapSource == "" {
		o.BootstrapSource = DefaultBootstrapSource
	}
	if o.BootstrapScore == nil {
		s := DefaultBootstrapScore
		o.BootstrapScore = &s
	}
	return o
}

// Rank scores every document and returns copies stable-sorted by ascending score.
// Documents from the bootstrap source get the bootstrap score instead.
func Rank(docs []models.Document, scorer Scorer, opts Options) []models.Document {
	opts = opts.withDefaults()

	ranked := make([]models.Document, len(docs))
	for i, doc := range docs {
		if doc.Source == opts.BootstrapSource {
			doc.Score = *opts.BootstrapScore
		} else {
			doc.Score = scorer.Score(doc.Content)
		}
		ranked[i] = doc
	}

	slices.SortStableFunc(ranked, func(a, b models.Document) int {
		return cmp.Compare(a.Score, b.Score)
	})
	return ranked
}

// RankAndFilter ranks docs and drops the lowest floor(n*keepFraction) of them,
// returning the rest in ascending score order. keepFraction is clamped to [0, 1].
func RankAndFilter(docs []models.Document, scorer Scorer, keepFraction float64, opts Options) []models.Document {
	ranked := Rank(docs, scorer, opts)

	cutoff := Cutoff(len(ranked), keepFraction)
	slog.Info("filtering ranked corpus",
		"documents", len(ranked),
		"keep_fraction", keepFraction,
		"dropped", cutoff,
		"retained", len(ranked)-cutoff)

	return ranked[cutoff:]
}

// Cutoff returns how many of n ranked documents are dropped.
// A NaN fraction drops nothing.
func Cutoff(n int, keepFraction float64) int {
	if math.IsNaN(keepFraction) {
		return 0
	}
	keepFraction = math.Max(0, math.Min(1, keepFraction))
	return int(math.Floor(float64(n) * keepFraction))
}
