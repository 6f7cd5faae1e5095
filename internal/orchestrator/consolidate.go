package orchestrator

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mfenderov/regcorpus/pkg/models"
)

// ConsolidatedPath returns where Consolidate writes a task's dataset.
func ConsolidatedPath(resultsDir, task string) string {
	return filepath.Join(resultsDir, task+".csv")
}

// Consolidate concatenates every batch file of a task into one dataset at
// ConsolidatedPath, keeping the first record for each (url, task) pair.
func Consolidate(resultsDir, task string) ([]models.ResponseRecord, error) {
	ledger := NewLedger(filepath.Join(resultsDir, ProcessedDir))
	all, err := ledger.Load()
	if err != nil {
		return nil, err
	}

	records := Dedupe(all)
	if err := os.MkdirAll(resultsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}
	if err := WriteRecordsFile(ConsolidatedPath(resultsDir, task), records); err != nil {
		return nil, err
	}

	slog.Info("consolidated task results",
		"task", task,
		"records", len(records),
		"duplicates", len(all)-len(records))
	return records, nil
}

// Dedupe keeps the first record for every (url, task) pair, preserving order.
func Dedupe(records []models.ResponseRecord) []models.ResponseRecord {
	type key struct{ url, task string }
	seen := make(map[key]struct{}, len(records))
	out := make([]models.ResponseRecord, 0, len(records))
	for _, r := range records {
		k := key{r.URL, r.Task}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}
