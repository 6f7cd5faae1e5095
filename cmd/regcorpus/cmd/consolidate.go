package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mfenderov/regcorpus/internal/orchestrator"
	"github.com/spf13/cobra"
)

var consolidateCmd = &cobra.Command{
	Use:   "consolidate <task>",
	Short: "Merge a task's batch files into one dataset",
	Long: `Concatenate every persisted batch of a task into <results_dir>/<task>/<task>.csv,
keeping one record per URL. With storage enabled the dataset is also uploaded.

Example:
  regcorpus consolidate abbrev`,
	Args: cobra.ExactArgs(1),
	RunE: runConsolidate,
}

func init() {
	rootCmd.AddCommand(consolidateCmd)
}

func runConsolidate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	def, err := newRegistry(cfg).Get(args[0])
	if err != nil {
		return err
	}

	resultsDir := def.ResultsDir(cfg.Orchestrator.ResultsDir)
	records, err := orchestrator.Consolidate(resultsDir, def.Name)
	if err != nil {
		return err
	}
	path := orchestrator.ConsolidatedPath(resultsDir, def.Name)
	fmt.Printf("Consolidated %d records -> %s\n", len(records), path)

	if cfg.Storage.Enabled {
		storageClient, err := newStorage(ctx, cfg)
		if err != nil {
			return err
		}
		key := "datasets/" + filepath.Base(path)
		if err := storageClient.UploadFile(ctx, key, path, "text/csv"); err != nil {
			return fmt.Errorf("failed to upload dataset: %w", err)
		}
		fmt.Printf("Uploaded s3://%s/%s\n", storageClient.Bucket(), key)
	}
	return nil
}
