package models

// ResponseRecord is one LLM answer for a document/prompt pair.
// Records are appended to a task ledger and never mutated afterwards.
//
// TotalTokens and Cost are nil when the request failed, which keeps a failed
// request distinguishable from a successful response that cost nothing.
type ResponseRecord struct {
	URL           string   `json:"url"`
	Source        string   `json:"source"`
	Content       string   `json:"content"`
	Task          string   `json:"task"`
	TotalTokens   *int     `json:"total_tokens"`
	GeneratedText string   `json:"generated_text"`
	Cost          *float64 `json:"cost"`
}

// Succeeded reports whether the record carries a usable LLM response.
func (r ResponseRecord) Succeeded() bool {
	return r.Cost != nil
}

// Instruction is an instruction-tuning triple derived from parsed LLM output.
type Instruction struct {
	Instruction string `json:"instruction"`
	Input       string `json:"input"`
	Output      string `json:"output"`
}
