package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/mfenderov/regcorpus/internal/ingestion"
	"github.com/spf13/cobra"
)

var (
	ingestPrefix string
	ingestSource string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Add an S3 scrape snapshot to the raw corpus",
	Long: `Read a scrape snapshot back from S3 and merge its pages into the raw
corpus CSV. Use it to re-ingest existing snapshots or those written with
'scrape --no-ingest'.

Examples:
  # Ingest a specific snapshot
  regcorpus ingest --prefix scrapes/sec/2024-12-04T17-30-00-abc12345

  # Ingest the latest snapshot of a source
  regcorpus ingest --source SEC`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestPrefix, "prefix", "", "S3 prefix to ingest")
	ingestCmd.Flags().StringVar(&ingestSource, "source", "", "Ingest the latest snapshot of this source")
	ingestCmd.MarkFlagsOneRequired("prefix", "source")
	ingestCmd.MarkFlagsMutuallyExclusive("prefix", "source")
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()

	storageClient, err := newStorage(ctx, cfg)
	if err != nil {
		return err
	}

	prefix := ingestPrefix
	if ingestSource != "" {
		prefixes, err := storageClient.ListScrapes(ctx, ingestSource)
		if err != nil {
			return err
		}
		if len(prefixes) == 0 {
			return fmt.Errorf("no snapshots stored for source %q", ingestSource)
		}
		prefix = prefixes[len(prefixes)-1]
	}

	engine := ingestion.New(storageClient, nil)

	fmt.Printf("Ingesting: %s\n", prefix)

	result, err := engine.Ingest(ctx, prefix)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	added, err := appendToCorpus(cfg.Corpus.Path, result.Documents)
	if err != nil {
		return err
	}

	fmt.Printf("\nIngestion complete:\n")
	fmt.Printf("  Docs read: %d\n", len(result.Documents))
	fmt.Printf("  New in corpus: %d\n", added)
	fmt.Printf("  Duration: %v\n", result.Duration)

	if len(result.Errors) > 0 {
		fmt.Printf("  Warnings: %d\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("    - %s\n", e)
		}
	}

	return nil
}
