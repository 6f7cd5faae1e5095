// Package parser extracts key/value pairs from numbered-list LLM answers such as
//
//	1. KYC - Know Your Customer
//	2. AML - Anti Money Laundering
package parser

import (
	"fmt"
	"regexp"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Separator splits a line into key and value.
const Separator = " - "

var (
	indexPrefix = regexp.MustCompile(`^\s*\d+\.`)
	numberedRow = regexp.MustCompile(`(?m)^\d+\.\s*(.+)$`)
)

// Parse returns the pairs of raw in order of first appearance. Lines without
// the separator are skipped. A repeated key keeps its first position and takes
// the last value. Parse never fails; unexpected shapes yield fewer pairs.
func Parse(raw string) *orderedmap.OrderedMap[string, string] {
	m := orderedmap.New[string, string]()

	for _, line := range strings.Split(raw, "\n") {
		key, value, ok := strings.Cut(line, Separator)
		if !ok {
			continue
		}
		key = strings.TrimSpace(indexPrefix.ReplaceAllString(key, ""))
		m.Set(key, strings.TrimSpace(value))
	}
	return m
}

// FormatNumberedList renders m in the shape Parse reads. Keys must not contain
// the separator, and neither keys nor values may contain line breaks or
// surrounding whitespace, for Parse to reproduce m.
func FormatNumberedList(m *orderedmap.OrderedMap[string, string]) string {
	var b strings.Builder
	i := 1
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		fmt.Fprintf(&b, "%d. %s%s%s\n", i, pair.Key, Separator, pair.Value)
		i++
	}
	return b.String()
}

// ParseNumbered returns the text of every "<n>. text" line, in order.
func ParseNumbered(raw string) []string {
	matches := numberedRow.FindAllStringSubmatch(raw, -1)
	items := make([]string, 0, len(matches))
	for _, m := range matches {
		if item := strings.TrimSpace(m[1]); item != "" {
			items = append(items, item)
		}
	}
	return items
}
