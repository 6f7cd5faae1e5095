package orchestrator

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mfenderov/regcorpus/pkg/models"
)

// ProcessedDir is the ledger directory inside a task's results directory.
const ProcessedDir = "processed"

// LedgerColumns is the header of every batch and consolidated file.
var LedgerColumns = []string{"url", "source", "content", "task", "total_tokens", "generated_text", "cost"}

// Ledger is the append-only set of batch files for one task.
// Each Append writes a new file; existing files are never rewritten.
type Ledger struct {
	dir  string
	now  func() time.Time
	last time.Time
}

// NewLedger returns a ledger rooted at dir. The directory is created on first append.
func NewLedger(dir string) *Ledger {
	return &Ledger{dir: dir, now: time.Now}
}

// Dir returns the ledger directory.
func (l *Ledger) Dir() string {
	return l.dir
}

// Files lists the batch files in write order.
func (l *Ledger) Files() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".csv" {
			continue
		}
		files = append(files, filepath.Join(l.dir, e.Name()))
	}
	slices.Sort(files)
	return files, nil
}

// Load reads every batch file. A missing directory is an empty ledger.
func (l *Ledger) Load() ([]models.ResponseRecord, error) {
	files, err := l.Files()
	if err != nil {
		return nil, err
	}

	var records []models.ResponseRecord
	for _, path := range files {
		batch, err := ReadRecordsFile(path)
		if err != nil {
			return nil, err
		}
		records = append(records, batch...)
	}
	return records, nil
}

// Append persists records as a new uniquely named batch file and returns its path.
func (l *Ledger) Append(records []models.ResponseRecord) (string, error) {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create ledger directory: %w", err)
	}

	// Timestamp first so lexical order is write order.
	stamp := l.now().UTC()
	if !stamp.After(l.last) {
		stamp = l.last.Add(time.Nanosecond)
	}
	l.last = stamp
	name := fmt.Sprintf("%s-%s.csv",
		stamp.Format("20060102T150405.000000000"),
		uuid.NewString()[:8])
	path := filepath.Join(l.dir, name)

	if err := WriteRecordsFile(path, records); err != nil {
		return "", err
	}
	return path, nil
}

// ReadRecordsFile reads a ledger-format CSV file.
func ReadRecordsFile(path string) ([]models.ResponseRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	records, err := ReadRecords(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return records, nil
}

// ReadRecords decodes ledger-format CSV. Columns are matched by header name;
// "costs" is accepted for "cost". Empty cost or token cells decode to nil.
func ReadRecords(r io.Reader) ([]models.ResponseRecord, error) {
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
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if name == "costs" {
			name = "cost"
		}
		col[name] = i
	}
	if _, ok := col["url"]; !ok {
		return nil, fmt.Errorf("missing url column")
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []models.ResponseRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		rec := models.ResponseRecord{
			URL:           field(row, "url"),
			Source:        field(row, "source"),
			Content:       field(row, "content"),
			Task:          field(row, "task"),
			GeneratedText: field(row, "generated_text"),
		}
		if rec.TotalTokens, err = parseOptionalInt(field(row, "total_tokens")); err != nil {
			return nil, fmt.Errorf("line %d: total_tokens: %w", line, err)
		}
		if rec.Cost, err = parseOptionalFloat(field(row, "cost")); err != nil {
			return nil, fmt.Errorf("line %d: cost: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// WriteRecordsFile writes records to path through a temporary file so a
// crash never leaves a truncated batch behind.
func WriteRecordsFile(path string, records []models.ResponseRecord) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".batch-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteRecords(tmp, records); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move batch file into place: %w", err)
	}
	return nil
}

// WriteRecords encodes records as ledger-format CSV.
func WriteRecords(w io.Writer, records []models.ResponseRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(LedgerColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.URL, r.Source, r.Content, r.Task,
			formatOptionalInt(r.TotalTokens),
			r.GeneratedText,
			formatOptionalFloat(r.Cost),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write record %s: %w", r.URL, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func parseOptionalInt(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return nil, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return &n, nil
	}
	// Float-typed columns such as "150.0".
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	n := int(f)
	return &n, nil
}

func parseOptionalFloat(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func formatOptionalInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func formatOptionalFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'g', -1, 64)
}
