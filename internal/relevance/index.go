package relevance

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
)

// Index holds inverse document frequencies and the TF-IDF vector of every
// document in the corpus it was built from.
type Index struct {
	dictFingerprint string
	numDocs         int
	df              []int
	idf             []float64
	docs            []Vector
}

// NewIndex computes document frequencies over corpus and weighs every
// document. Terms missing from dict are ignored.
func NewIndex(corpus [][]string, dict *Dictionary) *Index {
	idx := &Index{
		dictFingerprint: dict.Fingerprint(),
		numDocs:         len(corpus),
		df:              make([]int, dict.Len()),
	}

	bows := make([]Vector, len(corpus))
	for i, doc := range corpus {
		bows[i] = dict.Doc2Bow(doc)
		for _, e := range bows[i] {
			idx.df[e.ID]++
		}
	}
	idx.computeIDF()

	idx.docs = make([]Vector, len(bows))
	for i, bow := range bows {
		idx.docs[i] = idx.Weigh(bow)
	}
	return idx
}

func (idx *Index) computeIDF() {
	idx.idf = make([]float64, len(idx.df))
	for id, df := range idx.df {
		if df == 0 {
			continue
		}
		idx.idf[id] = math.Log(float64(idx.numDocs) / float64(df))
	}
}

// NumDocs returns the number of indexed documents.
func (idx *Index) NumDocs() int {
	return idx.numDocs
}

// IDF returns the inverse document frequency of a term id, 0 for unknown ids.
func (idx *Index) IDF(id int) float64 {
	if id < 0 || id >= len(idx.idf) {
		return 0
	}
	return idx.idf[id]
}

// Weigh turns a bag of words into a TF-IDF vector. Entries whose weight is
// zero (terms present in every document, unknown ids) are omitted.
func (idx *Index) Weigh(bow Vector) Vector {
	out := make(Vector, 0, len(bow))
	for _, e := range bow {
		w := e.Weight * idx.IDF(e.ID)
		if w == 0 {
			continue
		}
		out = append(out, Entry{ID: e.ID, Weight: w})
	}
	return out
}

// Doc returns the TF-IDF vector of the i-th indexed document.
func (idx *Index) Doc(i int) Vector {
	return idx.docs[i]
}

type indexFile struct {
	DictionaryFingerprint string   `json:"dictionary_fingerprint"`
	NumDocs               int      `json:"num_docs"`
	DocFreq               []int    `json:"doc_freq"`
	Docs                  []Vector `json:"docs"`
}

// WriteTo serializes the index as JSON.
func (idx *Index) WriteTo(w io.Writer) (int64, error) {
	data, err := json.Marshal(indexFile{
		DictionaryFingerprint: idx.dictFingerprint,
		NumDocs:               idx.numDocs,
		DocFreq:               idx.df,
		Docs:                  idx.docs,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal index: %w", err)
	}
	n, err := w.Write(data)
	return int64(n), err
}

// ReadIndex deserializes an index and checks it was built with dict.
func ReadIndex(r io.Reader, dict *Dictionary) (*Index, error) {
	var f indexFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode index: %w", err)
	}
	if f.DictionaryFingerprint != dict.Fingerprint() {
		return nil, fmt.Errorf("%w: index built with dictionary %s, have %s",
			ErrArtifactMismatch, f.DictionaryFingerprint, dict.Fingerprint())
	}
	if len(f.DocFreq) != dict.Len() {
		return nil, fmt.Errorf("%w: index covers %d terms, dictionary has %d",
			ErrArtifactMismatch, len(f.DocFreq), dict.Len())
	}

	if len(f.Docs) != f.NumDocs {
		return nil, fmt.Errorf("index declares %d documents but stores %d", f.NumDocs, len(f.Docs))
	}

	idx := &Index{
		dictFingerprint: f.DictionaryFingerprint,
		numDocs:         f.NumDocs,
		df:              f.DocFreq,
		docs:            f.Docs,
	}
	idx.computeIDF()
	return idx, nil
}
