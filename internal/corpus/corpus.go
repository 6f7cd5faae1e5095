// Package corpus reads and writes document tables and applies the
// document-level filters that run before ranking.
package corpus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/mfenderov/regcorpus/internal/textproc"
	"github.com/mfenderov/regcorpus/pkg/models"
)

// DefaultMinTokens drops stubs, menus and error pages.
const DefaultMinTokens = 500

var columns = []string{"id", "url", "source", "title", "content", "token_count", "score", "scraped_at"}

// Load reads a corpus CSV file.
func Load(path string) ([]models.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus: %w", err)
	}
	defer f.Close()

	docs, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus %s: %w", path, err)
	}
	return docs, nil
}

// Read decodes a corpus table. Only url and content columns are required;
// other columns are matched by name when present.
func Read(r io.Reader) ([]models.Document, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, required := range []string{"url", "content"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("missing %s column", required)
		}
	}
	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var docs []models.Document
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		doc := models.NewDocument(field(row, "url"), field(row, "source"), field(row, "content"))
		if id := field(row, "id"); id != "" {
			doc.ID = id
		}
		doc.Title = field(row, "title")

		if v := field(row, "token_count"); v != "" {
			// Float-typed columns such as "512.0" come from dataframe exports.
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: token_count: %w", line, err)
			}
			doc.TokenCount = int(n)
		}
		if v := field(row, "score"); v != "" {
			if doc.Score, err = strconv.ParseFloat(v, 64); err != nil {
				return nil, fmt.Errorf("line %d: score: %w", line, err)
			}
		}
		if v := field(row, "scraped_at"); v != "" {
			if doc.ScrapedAt, err = time.Parse(time.RFC3339, v); err != nil {
				return nil, fmt.Errorf("line %d: scraped_at: %w", line, err)
			}
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Save writes docs to path, creating parent directories.
func Save(path string, docs []models.Document) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create corpus directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create corpus: %w", err)
	}
	if err := Write(f, docs); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write encodes docs as a corpus table.
func Write(w io.Writer, docs []models.Document) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, d := range docs {
		var scrapedAt string
		if !d.ScrapedAt.IsZero() {
			scrapedAt = d.ScrapedAt.UTC().Format(time.RFC3339)
		}
		row := []string{
			d.ID, d.URL, d.Source, d.Title, d.Content,
			strconv.Itoa(d.TokenCount),
			strconv.FormatFloat(d.Score, 'g', -1, 64),
			scrapedAt,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write document %s: %w", d.URL, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Dedupe keeps the first document for each URL.
func Dedupe(docs []models.Document) []models.Document {
	seen := make(map[string]struct{}, len(docs))
	out := make([]models.Document, 0, len(docs))
	for _, d := range docs {
		if _, dup := seen[d.URL]; dup {
			continue
		}
		seen[d.URL] = struct{}{}
		out = append(out, d)
	}
	if dropped := len(docs) - len(out); dropped > 0 {
		slog.Info("dropped duplicate URLs", "count", dropped)
	}
	return out
}

// CountTokens sets TokenCount on every document.
func CountTokens(docs []models.Document, counter textproc.TokenCounter) {
	for i := range docs {
		docs[i].TokenCount = counter.Count(docs[i].Content)
	}
}

// FilterMinTokens keeps documents with more than minTokens tokens.
func FilterMinTokens(docs []models.Document, minTokens int) []models.Document {
	out := make([]models.Document, 0, len(docs))
	for _, d := range docs {
		if d.TokenCount > minTokens {
			out = append(out, d)
		}
	}
	slog.Info("filtered short documents", "before", len(docs), "after", len(out), "min_tokens", minTokens)
	return out
}

// FilterSources keeps documents whose source is listed. No sources keeps everything.
func FilterSources(docs []models.Document, sources []string) []models.Document {
	if len(sources) == 0 {
		return docs
	}
	out := make([]models.Document, 0, len(docs))
	for _, d := range docs {
		if slices.Contains(sources, d.Source) {
			out = append(out, d)
		}
	}
	return out
}

// FromRecords turns task results into documents, using the generated text
// as content. Used to feed one task's output (e.g. cleaning) into the next.
func FromRecords(records []models.ResponseRecord) []models.Document {
	docs := make([]models.Document, 0, len(records))
	for _, r := range records {
		if !r.Succeeded() || strings.TrimSpace(r.GeneratedText) == "" {
			continue
		}
		docs = append(docs, models.NewDocument(r.URL, r.Source, r.GeneratedText))
	}
	return docs
}
