package filter

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfenderov/regcorpus/internal/relevance"
	"github.com/mfenderov/regcorpus/pkg/models"
)

// mapScorer scores text by exact lookup, 0 when missing.
type mapScorer map[string]float64

func (m mapScorer) Score(text string) float64 {
	return m[text]
}

func docsWithScores(scores ...float64) ([]models.Document, mapScorer) {
	docs := make([]models.Document, len(scores))
	scorer := mapScorer{}
	for i, s := range scores {
		content := fmt.Sprintf("doc-%d", i)
		docs[i] = models.NewDocument("https://example.com/"+content, "SEC", content)
		scorer[content] = s
	}
	return docs, scorer
}

func TestCutoff(t *testing.T) {
	tests := []struct {
		n    int
		kf   float64
		want int
	}{
		{n: 10, kf: 0.8, want: 8},
		{n: 7, kf: 0.5, want: 3},
		{n: 3, kf: 0.0, want: 0},
		{n: 3, kf: 1.0, want: 3},
		{n: 0, kf: 0.8, want: 0},
		{n: 5, kf: -1, want: 0},
		{n: 5, kf: 2, want: 5},
		{n: 5, kf: math.NaN(), want: 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d@%v", tt.n, tt.kf), func(t *testing.T) {
			assert.Equal(t, tt.want, Cutoff(tt.n, tt.kf))
		})
	}
}

func TestRankAndFilter_NaNKeepFractionKeepsAll(t *testing.T) {
	docs, scorer := docsWithScores(0.5, -0.2, 0.9)

	got := RankAndFilter(docs, scorer, math.NaN(), Options{})

	assert.Len(t, got, len(docs))
}

func TestRankAndFilter_RetainedCount(t *testing.T) {
	docs, scorer := docsWithScores(0.5, -0.2, 0.9, 0.1, 0.0, 0.3, -0.7)

	for _, kf := range []float64{0, 0.25, 0.5, 0.8, 1} {
		got := RankAndFilter(docs, scorer, kf, Options{})
		assert.Len(t, got, len(docs)-Cutoff(len(docs), kf), "keep fraction %v", kf)
	}
}

func TestRankAndFilter_DropsLowestScores(t *testing.T) {
	docs, scorer := docsWithScores(0.5, -0.2, 0.9, 0.1, 0.0)

	got := RankAndFilter(docs, scorer, 0.4, Options{})

	require.Len(t, got, 3)
	assert.Equal(t, []float64{0.1, 0.5, 0.9}, []float64{got[0].Score, got[1].Score, got[2].Score})

	minRetained := got[0].Score
	for _, doc := range docs {
		if s := scorer.Score(doc.Content); s < minRetained {
			for _, kept := range got {
				assert.NotEqual(t, doc.ID, kept.ID, "dropped document scored below every retained one")
			}
		}
	}
}

func TestRank_StableForTies(t *testing.T) {
	docs, scorer := docsWithScores(0.2, 0.1, 0.2, 0.1)

	got := Rank(docs, scorer, Options{})

	ids := make([]string, len(got))
	for i, d := range got {
		ids[i] = d.ID
	}
	assert.Equal(t, []string{docs[1].ID, docs[3].ID, docs[0].ID, docs[2].ID}, ids)
}

func TestRank_BootstrapSource(t *testing.T) {
	docs, scorer := docsWithScores(0.9, -0.5)
	docs[1].Source = DefaultBootstrapSource

	got := Rank(docs, scorer, Options{})

	require.Len(t, got, 2)
	assert.Equal(t, docs[1].ID, got[0].ID)
	assert.Equal(t, DefaultBootstrapScore, got[0].Score)
	assert.Equal(t, 0.9, got[1].Score)
}

func TestRank_CustomBootstrap(t *testing.T) {
	docs, scorer := docsWithScores(0.1, 0.2)
	docs[0].Source = "SEED"
	score := 1.0

	got := Rank(docs, scorer, Options{BootstrapSource: "SEED", BootstrapScore: &score})

	assert.Equal(t, docs[0].ID, got[1].ID)
	assert.Equal(t, 1.0, got[1].Score)
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	docs, scorer := docsWithScores(0.3, 0.1)

	Rank(docs, scorer, Options{})

	assert.Zero(t, docs[0].Score)
	assert.Equal(t, "doc-0", docs[0].Content)
}

func TestRankAndFilter_Empty(t *testing.T) {
	assert.Empty(t, RankAndFilter(nil, mapScorer{}, 0.8, Options{}))
}

func TestRankAndFilter_WithRelevanceScorer(t *testing.T) {
	texts := []string{
		"The directive sets capital requirement rules and supervisory authority enforcement.",
		"Home | About | Contact | Cookies | Sitemap | Login",
		"Regulation on market abuse, insider trading and disclosure requirements.",
		"Follow us on facebook, twitter and instagram. Back to top.",
	}
	corpus := relevance.AnalyzeAll(texts, nil)
	dict := relevance.BuildDictionary(corpus)
	scorer := relevance.NewScorer(dict, relevance.NewIndex(corpus, dict), relevance.PositiveQuery, relevance.NegativeQuery)

	docs := make([]models.Document, len(texts))
	for i, text := range texts {
		docs[i] = models.NewDocument(fmt.Sprintf("https://example.com/%d", i), "EUR-LEX", text)
	}

	got := RankAndFilter(docs, scorer, 0.5, Options{})

	require.Len(t, got, 2)
	for _, doc := range got {
		assert.True(t, strings.Contains(doc.Content, "directive") || strings.Contains(doc.Content, "Regulation"), doc.Content)
	}
}
