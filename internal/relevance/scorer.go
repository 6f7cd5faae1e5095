package relevance

import (
	"github.com/mfenderov/regcorpus/internal/textproc"
)

// Analyze prepares raw text for indexing: composite phrases are collapsed
// first, then the text is preprocessed into terms.
func Analyze(text string, phrases []string) []string {
	return textproc.Preprocess(textproc.CollapseCompositeTerms(text, phrases))
}

// AnalyzeAll runs Analyze over every text.
func AnalyzeAll(texts []string, phrases []string) [][]string {
	out := make([][]string, len(texts))
	for i, t := range texts {
		out[i] = Analyze(t, phrases)
	}
	return out
}

// Scorer compares texts against a positive and a negative query.
type Scorer struct {
	dict    *Dictionary
	index   *Index
	phrases []string
	pos     Vector
	neg     Vector
}

// ScorerOption configures a Scorer.
type ScorerOption func(*Scorer)

// WithCompositeTerms makes the scorer collapse phrases in queries and scored
// text. Use the same list the index was built with.
func WithCompositeTerms(phrases []string) ScorerOption {
	return func(s *Scorer) {
		s.phrases = phrases
	}
}

// NewScorer precomputes the weighted query vectors.
func NewScorer(dict *Dictionary, index *Index, positive, negative string, opts ...ScorerOption) *Scorer {
	s := &Scorer{dict: dict, index: index}
	for _, opt := range opts {
		opt(s)
	}
	s.pos = s.vector(Analyze(positive, s.phrases))
	s.neg = s.vector(Analyze(negative, s.phrases))
	return s
}

func (s *Scorer) vector(tokens []string) Vector {
	return s.index.Weigh(s.dict.Doc2Bow(tokens))
}

// Score returns cos(text, positive) - cos(text, negative). Text without any
// known term scores 0.
func (s *Scorer) Score(text string) float64 {
	return s.ScoreTokens(Analyze(text, s.phrases))
}

// ScoreTokens scores already preprocessed terms.
func (s *Scorer) ScoreTokens(tokens []string) float64 {
	return s.scoreVector(s.vector(tokens))
}

func (s *Scorer) scoreVector(v Vector) float64 {
	return Cosine(v, s.pos) - Cosine(v, s.neg)
}

// ScoreCorpus scores every indexed document, in index order.
func (s *Scorer) ScoreCorpus() []float64 {
	scores := make([]float64, s.index.NumDocs())
	for i := range scores {
		scores[i] = s.scoreVector(s.index.Doc(i))
	}
	return scores
}
