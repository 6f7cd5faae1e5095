// Package relevance scores documents for topical relevance with TF-IDF
// weighted cosine similarity against a positive and a negative keyword query.
package relevance

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"slices"
)

// Dictionary is an immutable bidirectional mapping between terms and ids.
// Ids are assigned in first-seen order and never change for a given instance.
type Dictionary struct {
	token2id map[string]int
	id2token []string
}

// BuildDictionary assigns an id to every distinct term in corpus, in the order
// terms are first seen.
func BuildDictionary(corpus [][]string) *Dictionary {
	d := &Dictionary{token2id: make(map[string]int)}
	for _, doc := range corpus {
		for _, term := range doc {
			if _, ok := d.token2id[term]; ok {
				continue
			}
			d.token2id[term] = len(d.id2token)
			d.id2token = append(d.id2token, term)
		}
	}
	return d
}

// Len returns the number of terms.
func (d *Dictionary) Len() int {
	return len(d.id2token)
}

// ID returns the id of term, or false if the term is unknown.
func (d *Dictionary) ID(term string) (int, bool) {
	id, ok := d.token2id[term]
	return id, ok
}

// Term returns the term for id, or false if id is out of range.
func (d *Dictionary) Term(id int) (string, bool) {
	if id < 0 || id >= len(d.id2token) {
		return "", false
	}
	return d.id2token[id], true
}

// Doc2Bow converts tokens into a bag of words sorted by term id.
// Unknown terms are dropped.
func (d *Dictionary) Doc2Bow(tokens []string) Vector {
	counts := make(map[int]float64)
	for _, tok := range tokens {
		if id, ok := d.token2id[tok]; ok {
			counts[id]++
		}
	}
	bow := make(Vector, 0, len(counts))
	for id, c := range counts {
		bow = append(bow, Entry{ID: id, Weight: c})
	}
	slices.SortFunc(bow, func(a, b Entry) int { return a.ID - b.ID })
	return bow
}

// Fingerprint identifies the vocabulary. An index records the fingerprint of
// the dictionary it was built with so mismatched artifacts can be detected.
func (d *Dictionary) Fingerprint() string {
	h := sha256.New()
	for _, term := range d.id2token {
		h.Write([]byte(term))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

type dictionaryFile struct {
	Fingerprint string   `json:"fingerprint"`
	Terms       []string `json:"terms"`
}

// WriteTo serializes the dictionary as JSON.
func (d *Dictionary) WriteTo(w io.Writer) (int64, error) {
	data, err := json.Marshal(dictionaryFile{Fingerprint: d.Fingerprint(), Terms: d.id2token})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal dictionary: %w", err)
	}
	n, err := w.Write(data)
	return int64(n), err
}

// ReadDictionary deserializes a dictionary written by WriteTo.
func ReadDictionary(r io.Reader) (*Dictionary, error) {
	var f dictionaryFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode dictionary: %w", err)
	}

	d := &Dictionary{
		token2id: make(map[string]int, len(f.Terms)),
		id2token: f.Terms,
	}
	for id, term := range f.Terms {
		if _, dup := d.token2id[term]; dup {
			return nil, fmt.Errorf("duplicate term %q in dictionary", term)
		}
		d.token2id[term] = id
	}
	if f.Fingerprint != "" && f.Fingerprint != d.Fingerprint() {
		return nil, fmt.Errorf("%w: dictionary content does not match its fingerprint", ErrArtifactMismatch)
	}
	return d, nil
}
