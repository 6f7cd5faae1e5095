// Package instruct turns consolidated task results into instruction-tuning
// records.
package instruct

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/mfenderov/regcorpus/internal/parser"
	"github.com/mfenderov/regcorpus/pkg/models"
)

// Kind selects how generated text is parsed and which instruction is emitted.
type Kind string

const (
	KindAbbrev      Kind = "abbrev"
	KindDefinitions Kind = "definitions"
	KindQA          Kind = "qa"
	KindLinks       Kind = "links"
)

// Instruction texts per kind. They are emitted verbatim, braces included.
const (
	AbbrevInstruction     = "Expand the following acronym into its full form:{}"
	DefinitionInstruction = "Define the following term:{}"
	QAInstruction         = "Provide a concise answer to the following question {}: Answer:"
	LinkInstruction       = "Provide a link for {} law."
)

const noLinkOutput = "Not able to find a link for the law"

// Kinds lists the supported kinds.
func Kinds() []Kind {
	return []Kind{KindAbbrev, KindDefinitions, KindQA, KindLinks}
}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown instruction kind %q", s)
}

// Build derives instructions from task records. Rows without generated text
// are skipped. For key/value kinds the pairs of all rows are merged, so a
// key seen again takes the later value and keeps its first position.
func Build(kind Kind, records []models.ResponseRecord) ([]models.Instruction, error) {
	switch kind {
	case KindAbbrev:
		return fromPairs(AbbrevInstruction, records), nil
	case KindDefinitions:
		return fromPairs(DefinitionInstruction, records), nil
	case KindQA:
		return fromPairs(QAInstruction, records), nil
	case KindLinks:
		return fromLinks(records), nil
	}
	return nil, fmt.Errorf("unknown instruction kind %q", kind)
}

func fromPairs(instruction string, records []models.ResponseRecord) []models.Instruction {
	merged := orderedmap.New[string, string]()
	for _, r := range records {
		if strings.TrimSpace(r.GeneratedText) == "" {
			continue
		}
		for p := parser.Parse(r.GeneratedText).Oldest(); p != nil; p = p.Next() {
			merged.Set(p.Key, p.Value)
		}
	}

	out := make([]models.Instruction, 0, merged.Len())
	for p := merged.Oldest(); p != nil; p = p.Next() {
		out = append(out, models.Instruction{Instruction: instruction, Input: p.Key, Output: p.Value})
	}
	return out
}

func fromLinks(records []models.ResponseRecord) []models.Instruction {
	out := []models.Instruction{}
	for _, r := range records {
		if strings.TrimSpace(r.GeneratedText) == "" {
			continue
		}
		for _, law := range parser.ParseNumbered(r.GeneratedText) {
			output := law + ": " + r.URL
			if r.URL == "" {
				output = law + ": " + noLinkOutput
			}
			out = append(out, models.Instruction{Instruction: LinkInstruction, Input: law, Output: output})
		}
	}
	return out
}

// WriteJSON writes instructions as an indented JSON array.
func WriteJSON(path string, instructions []models.Instruction) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := json.MarshalIndent(instructions, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal instructions: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
