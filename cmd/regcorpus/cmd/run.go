package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/mfenderov/regcorpus/internal/config"
	"github.com/mfenderov/regcorpus/internal/corpus"
	"github.com/mfenderov/regcorpus/internal/events"
	"github.com/mfenderov/regcorpus/internal/llm"
	"github.com/mfenderov/regcorpus/internal/orchestrator"
	"github.com/mfenderov/regcorpus/internal/retry"
	"github.com/mfenderov/regcorpus/internal/tasks"
	"github.com/mfenderov/regcorpus/pkg/models"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

var (
	runInput   string
	runFrom    string
	runSources []string
	runLimit   int
)

var runCmd = &cobra.Command{
	Use:   "run <task>",
	Short: "Run a prompt task over the refined corpus",
	Long: `Send every refined document accepted by the task to the LLM, in
batches. Each completed batch is persisted before the next one starts, so an
interrupted run resumes where it stopped.

Examples:
  regcorpus run abbrev
  regcorpus run qa --limit 50

  # Feed the consolidated output of another task, e.g. cleaned text
  regcorpus run abbrev --from cleaning --source SEC`,
	Args: cobra.ExactArgs(1),
	RunE: runTask,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runInput, "input", "", "Refined corpus CSV (default corpus.refined_path)")
	runCmd.Flags().StringVar(&runFrom, "from", "", "Use the consolidated results of this task as input")
	runCmd.Flags().StringSliceVar(&runSources, "source", nil, "Only run on documents from these sources")
	runCmd.Flags().IntVar(&runLimit, "limit", 0, "Only run on the first N selected documents")
}

func runTask(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	if runInput == "" {
		runInput = cfg.Corpus.RefinedPath
	}

	registry := newRegistry(cfg)
	def, err := registry.Get(args[0])
	if err != nil {
		return err
	}

	docs, err := loadTaskInput(cfg, registry)
	if err != nil {
		return err
	}
	docs = corpus.FilterSources(def.Select(docs), runSources)
	if runLimit > 0 && len(docs) > runLimit {
		docs = docs[:runLimit]
	}
	if len(docs) == 0 {
		fmt.Printf("No documents for task %s\n", def.Name)
		return nil
	}

	client, err := newLLM(cfg)
	if err != nil {
		return err
	}

	batchEvents := make(chan events.BatchPersisted)
	orch, err := orchestrator.New(client, orchestrator.Config{
		Pricing: llm.Pricing{
			InputPerToken:  cfg.Pricing.InputPerToken,
			OutputPerToken: cfg.Pricing.OutputPerToken,
		},
		Retry: retry.Policy{
			MaxAttempts: cfg.Orchestrator.MaxAttempts,
			Backoff:     retry.Exponential(cfg.Orchestrator.BackoffBase, cfg.Orchestrator.BackoffFactor),
		},
		JitterMin:      cfg.Orchestrator.JitterMin,
		JitterMax:      cfg.Orchestrator.JitterMax,
		RequestTimeout: cfg.Orchestrator.RequestTimeout,
		CostLimit:      cfg.Orchestrator.CostLimit,
	}, orchestrator.WithEvents(batchEvents))
	if err != nil {
		return err
	}

	p := mpb.New(mpb.WithWidth(80))
	bar := p.AddBar(int64(len(docs)),
		mpb.PrependDecorators(
			decor.Name(def.Name+" "),
			decor.Percentage(decor.WCSyncSpace),
		),
		mpb.AppendDecorators(
			decor.OnComplete(decor.AverageETA(decor.ET_STYLE_GO), "done!"),
		),
	)

	var succeeded, failed, skipped int
	var cost float64
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range batchEvents {
			succeeded += e.Succeeded
			failed += e.Failed
			skipped += e.Skipped
			cost += e.Cost
			bar.IncrBy(e.Succeeded + e.Failed + e.Skipped)
		}
	}()

	records, runErr := orch.ExecuteTask(ctx, def.Task(cfg.Orchestrator.ResultsDir), docs)
	close(batchEvents)
	<-done
	bar.SetTotal(-1, true)
	p.Wait()

	if runErr != nil {
		return fmt.Errorf("task %s failed: %w", def.Name, runErr)
	}

	fmt.Printf("\nTask %s complete:\n", def.Name)
	fmt.Printf("  Documents: %d\n", len(docs))
	fmt.Printf("  Succeeded: %d, Failed: %d, Skipped: %d\n", succeeded, failed, skipped)
	fmt.Printf("  Records in ledger: %d\n", len(records))
	fmt.Printf("  Cost: $%.4f\n", cost)
	if failed > 0 {
		fmt.Printf("  Re-run 'regcorpus run %s' to retry failed documents\n", def.Name)
	}
	return nil
}

// loadTaskInput reads the refined corpus, or the consolidated results of the
// --from task with the generated text as content.
func loadTaskInput(cfg config.Config, registry *tasks.Registry) ([]models.Document, error) {
	if runFrom == "" {
		return corpus.Load(runInput)
	}

	from, err := registry.Get(runFrom)
	if err != nil {
		return nil, err
	}
	path := orchestrator.ConsolidatedPath(from.ResultsDir(cfg.Orchestrator.ResultsDir), from.Name)
	records, err := orchestrator.ReadRecordsFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s results (run 'regcorpus consolidate %s' first): %w", from.Name, from.Name, err)
	}
	return corpus.FromRecords(records), nil
}
