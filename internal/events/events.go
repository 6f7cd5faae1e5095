package events

import "time"

// ScrapeCompleteEvent is sent when the scraper finishes writing a source to S3.
type ScrapeCompleteEvent struct {
	Bucket    string    // S3 bucket name (e.g., "regcorpus")
	Prefix    string    // S3 prefix (e.g., "scrapes/SEC/2024-12-04T17-30-00-abc123")
	Source    string    // Source tag the pages were scraped under
	SourceURL string    // Seed URL that was scraped
	PageCount int       // Number of pages scraped
	Timestamp time.Time // When the scrape completed
}

// IngestionCompleteEvent is sent when ingestion finishes reading a scrape back.
type IngestionCompleteEvent struct {
	Prefix       string        // S3 prefix that was ingested
	DocsIngested int           // Number of documents produced
	Duration     time.Duration // How long ingestion took
	Errors       []string      // Any errors encountered (non-fatal)
}

// BatchPersisted is sent after a prompt batch has been written to the results ledger.
type BatchPersisted struct {
	Task      string    // Task name (e.g., "abbrev")
	Batch     int       // Zero-based batch number within the run
	Batches   int       // Total batches in the run
	File      string    // Batch file path, empty when nothing succeeded
	Succeeded int       // Requests that produced a record
	Failed    int       // Requests that exhausted their retries
	Skipped   int       // Documents already present in the ledger
	Cost      float64   // Cost of this batch
	Timestamp time.Time // When the batch finished
}
