package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Document is a single scraped regulatory page or file.
type Document struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	Source     string    `json:"source"` // Categorical tag, e.g. "SEC", "EUR-LEX", "OSI"
	Title      string    `json:"title,omitempty"`
	Content    string    `json:"content"`
	TokenCount int       `json:"token_count,omitempty"`
	Tokens     []string  `json:"-"`               // Preprocessed terms, not persisted
	Score      float64   `json:"score,omitempty"` // Relevance score once ranked
	ScrapedAt  time.Time `json:"scraped_at,omitzero"`
}

// GenerateDocumentID creates a deterministic ID from URL.
// The ID is a SHA-256 hash (first 16 chars) of the URL.
func GenerateDocumentID(url string) string {
	hash := sha256.Sum256([]byte(url))
	return hex.EncodeToString(hash[:])[:16]
}

// NewDocument builds a Document with its ID derived from the URL.
func NewDocument(url, source, content string) Document {
	return Document{
		ID:      GenerateDocumentID(url),
		URL:     url,
		Source:  source,
		Content: content,
	}
}
