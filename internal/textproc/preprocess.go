// Package textproc normalises raw document text into the term sequences used
// by the relevance index.
package textproc

import (
	"regexp"
	"strings"

	"github.com/kljensen/snowball/english"
)

// wordPattern matches the same word characters as a unicode-aware \w+.
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Preprocess turns text into an ordered sequence of normalised terms.
//
// Steps run in a fixed order: trim and lower-case, drop stopwords, stem, then
// tokenize on word boundaries. Stopwords are matched against whitespace
// separated tokens, so a stopword with punctuation attached ("the,") survives
// to the tokenizer. Empty or whitespace-only input yields an empty slice.
func Preprocess(text string) []string {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return []string{}
	}

	fields := strings.Fields(text)
	kept := fields[:0]
	for _, f := range fields {
		if !IsStopword(f) {
			kept = append(kept, f)
		}
	}

	for i, f := range kept {
		kept[i] = wordPattern.ReplaceAllStringFunc(f, Stem)
	}

	return Tokenize(strings.Join(kept, " "))
}

// Stem reduces a single lower-case word to its stem.
func Stem(word string) string {
	return english.Stem(word, true)
}

// Tokenize splits text into word tokens, discarding punctuation-only fragments.
func Tokenize(text string) []string {
	tokens := wordPattern.FindAllString(text, -1)
	if tokens == nil {
		return []string{}
	}
	return tokens
}
