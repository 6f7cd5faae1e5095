package orchestrator

import "github.com/mfenderov/regcorpus/pkg/models"

// BatchAccumulator collects the records of one ExecuteTask call. It starts
// from the ledger contents and tracks which URLs already have a record.
// It is owned by a single run and is not safe for concurrent use.
type BatchAccumulator struct {
	existing  []models.ResponseRecord
	added     []models.ResponseRecord
	processed map[string]struct{}

	cost      float64
	succeeded int
	failed    int
	skipped   int
}

// NewBatchAccumulator seeds an accumulator with previously persisted records.
func NewBatchAccumulator(existing []models.ResponseRecord) *BatchAccumulator {
	a := &BatchAccumulator{
		existing:  existing,
		processed: make(map[string]struct{}, len(existing)),
	}
	for _, r := range existing {
		a.processed[r.URL] = struct{}{}
	}
	return a
}

// Processed reports whether url already has a persisted record.
func (a *BatchAccumulator) Processed(url string) bool {
	_, ok := a.processed[url]
	return ok
}

// Pending returns the documents of batch that still need a request, dropping
// processed URLs and repeats within the batch.
func (a *BatchAccumulator) Pending(batch []models.Document) []models.Document {
	pending := make([]models.Document, 0, len(batch))
	seen := make(map[string]struct{}, len(batch))
	for _, doc := range batch {
		if _, dup := seen[doc.URL]; dup || a.Processed(doc.URL) {
			a.skipped++
			continue
		}
		seen[doc.URL] = struct{}{}
		pending = append(pending, doc)
	}
	return pending
}

// Add records a persisted batch and the number of requests that failed in it.
func (a *BatchAccumulator) Add(records []models.ResponseRecord, failed int) {
	for _, r := range records {
		a.processed[r.URL] = struct{}{}
		if r.Cost != nil {
			a.cost += *r.Cost
		}
	}
	a.added = append(a.added, records...)
	a.succeeded += len(records)
	a.failed += failed
}

// Records returns the pre-existing records followed by the new ones in input order.
func (a *BatchAccumulator) Records() []models.ResponseRecord {
	out := make([]models.ResponseRecord, 0, len(a.existing)+len(a.added))
	out = append(out, a.existing...)
	return append(out, a.added...)
}

// Cost is the cost accumulated by this run, excluding pre-existing records.
func (a *BatchAccumulator) Cost() float64 { return a.cost }

// Stats returns succeeded, failed and skipped request counts for this run.
func (a *BatchAccumulator) Stats() (succeeded, failed, skipped int) {
	return a.succeeded, a.failed, a.skipped
}
