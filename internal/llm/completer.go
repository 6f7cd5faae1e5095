package llm

import "context"

// Request is a single-turn chat prompt.
type Request struct {
	Prompt string
	System string // Optional system message
}

// Response is the generated text plus the token usage it was billed for.
type Response struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}

// TotalTokens returns prompt plus completion tokens.
func (r Response) TotalTokens() int {
	return r.PromptTokens + r.CompletionTokens
}

// Completer generates a completion for a prompt.
type Completer interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// Pricing holds per-token prices in currency units.
type Pricing struct {
	InputPerToken  float64
	OutputPerToken float64
}

// Cost returns what a response was billed.
func (p Pricing) Cost(resp Response) float64 {
	return float64(resp.PromptTokens)*p.InputPerToken + float64(resp.CompletionTokens)*p.OutputPerToken
}
