// Package tasks defines the named prompt runs and which sources feed them.
package tasks

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/mfenderov/regcorpus/internal/orchestrator"
	"github.com/mfenderov/regcorpus/pkg/models"
)

// Source routing lists.
var (
	AbbrevSources = []string{"EUR-LEX", "ESMA", "SEC", "CFTC", "FINRA", "FED", "FDIC", "III", "FASAB", "SBOA", "NYSE"}
	LinkSources   = []string{"EUR-LEX", "ESMA", "SEC", "CFR", "FDIC", "FED"}
	DefSources    = []string{"EUR-LEX", "ESMA", "SEC", "FDIC", "III", "SBOA", "FED"}
	QASources     = []string{"SEC", "FED", "FDIC", "III", "FASAB", "SBOA"}
	NERSources    = AbbrevSources
)

// Definition is a named prompt run.
type Definition struct {
	Name         string   `mapstructure:"name"`
	Prompt       string   `mapstructure:"prompt"`
	System       string   `mapstructure:"system"`
	Sources      []string `mapstructure:"sources"` // Empty means every source
	BatchSize    int      `mapstructure:"batch_size"`
	ParsedOutput string   `mapstructure:"parsed_output"` // Instruction kind built from the results, if any
}

// Accepts reports whether documents from source feed this task.
func (d Definition) Accepts(source string) bool {
	return len(d.Sources) == 0 || slices.Contains(d.Sources, source)
}

// Select returns the documents this task runs on, keeping their order.
func (d Definition) Select(docs []models.Document) []models.Document {
	var out []models.Document
	for _, doc := range docs {
		if d.Accepts(doc.Source) {
			out = append(out, doc)
		}
	}
	return out
}

// ResultsDir is the task's own directory under root.
func (d Definition) ResultsDir(root string) string {
	return filepath.Join(root, d.Name)
}

// Task turns the definition into an orchestrator task writing under root.
func (d Definition) Task(root string) orchestrator.Task {
	return orchestrator.Task{
		Name:           d.Name,
		PromptTemplate: d.Prompt,
		SystemPrompt:   d.System,
		BatchSize:      d.BatchSize,
		ResultsDir:     d.ResultsDir(root),
	}
}

// Registry holds task definitions by name.
type Registry struct {
	defs  map[string]Definition
	order []string
}

// NewRegistry returns a registry with the built-in tasks.
func NewRegistry() *Registry {
	r := &Registry{defs: make(map[string]Definition)}
	for _, d := range builtins() {
		r.Set(d)
	}
	return r
}

// Set adds or replaces a definition. Empty fields of an override keep the
// built-in values.
func (r *Registry) Set(d Definition) {
	if old, ok := r.defs[d.Name]; ok {
		if d.Prompt == "" {
			d.Prompt = old.Prompt
		}
		if d.System == "" {
			d.System = old.System
		}
		if d.Sources == nil {
			d.Sources = old.Sources
		}
		if d.BatchSize == 0 {
			d.BatchSize = old.BatchSize
		}
		if d.ParsedOutput == "" {
			d.ParsedOutput = old.ParsedOutput
		}
	} else {
		r.order = append(r.order, d.Name)
	}
	r.defs[d.Name] = d
}

// Get returns the named definition.
func (r *Registry) Get(name string) (Definition, error) {
	d, ok := r.defs[name]
	if !ok {
		return Definition{}, fmt.Errorf("unknown task %q (available: %v)", name, r.order)
	}
	return d, nil
}

// Names lists task names in registration order.
func (r *Registry) Names() []string {
	return slices.Clone(r.order)
}

func builtins() []Definition {
	return []Definition{
		{Name: "classif", Prompt: promptClassif, System: systemClassif, BatchSize: 10},
		{Name: "cleaning", Prompt: promptCleaning, System: systemCleaning, BatchSize: 15},
		{Name: "abbrev", Prompt: promptAbbrev, System: systemGeneral, Sources: AbbrevSources, BatchSize: 40, ParsedOutput: "abbrev"},
		{Name: "definitions", Prompt: promptDefinitions, System: systemGeneral, Sources: DefSources, BatchSize: 30, ParsedOutput: "definitions"},
		{Name: "links", Prompt: promptLinks, System: systemGeneral, Sources: LinkSources, BatchSize: 30, ParsedOutput: "links"},
		{Name: "qa_task", Prompt: promptQA, System: systemQA, Sources: QASources, BatchSize: 30, ParsedOutput: "qa"},
		{Name: "cdm_task", Prompt: promptCDM, System: systemCDM, Sources: []string{"CDM"}, BatchSize: 30, ParsedOutput: "qa"},
		{Name: "ner_task", Prompt: promptNER, System: systemGeneral, Sources: NERSources, BatchSize: 30},
		{Name: "osi_qa", Prompt: promptOSIQA, System: systemOSI, Sources: []string{"OSI"}, BatchSize: 10, ParsedOutput: "qa"},
		{Name: "osi_abbrev", Prompt: promptOSIAbbrev, System: systemOSI, Sources: []string{"OSI"}, BatchSize: 15, ParsedOutput: "abbrev"},
	}
}
