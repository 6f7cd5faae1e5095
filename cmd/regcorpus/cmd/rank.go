package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/mfenderov/regcorpus/internal/corpus"
	"github.com/mfenderov/regcorpus/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	rankInput        string
	rankOutput       string
	rankKeepFraction float64
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank the raw corpus and keep the most relevant documents",
	Long: `Build the TF-IDF relevance index over the raw corpus, score every
document against the regulatory and boilerplate queries, and drop the least
relevant share. Writes the refined corpus and the relevance artifacts.

With elasticsearch enabled the retained documents are indexed for search;
with storage enabled the artifacts and refined corpus are uploaded.

Examples:
  regcorpus rank
  regcorpus rank --input data/corpus.csv --output data/refined.csv
  regcorpus rank --keep-fraction 0.5`,
	RunE: runRank,
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().StringVar(&rankInput, "input", "", "Raw corpus CSV (default corpus.path)")
	rankCmd.Flags().StringVar(&rankOutput, "output", "", "Refined corpus CSV (default corpus.refined_path)")
	rankCmd.Flags().Float64Var(&rankKeepFraction, "keep-fraction", -1, "Share of ranked documents dropped from the bottom (default relevance.keep_fraction)")
}

func runRank(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	if rankInput == "" {
		rankInput = cfg.Corpus.Path
	}
	if rankOutput == "" {
		rankOutput = cfg.Corpus.RefinedPath
	}
	keepFraction := cfg.Relevance.KeepFraction
	if rankKeepFraction >= 0 {
		keepFraction = rankKeepFraction
	}

	docs, err := corpus.Load(rankInput)
	if err != nil {
		return err
	}

	var opts []pipeline.Option
	if cfg.Elasticsearch.Enabled {
		esClient, err := newElasticsearch(cfg)
		if err != nil {
			return err
		}
		opts = append(opts, pipeline.WithIndexer(esClient))
	}
	if cfg.Storage.Enabled {
		storageClient, err := newStorage(ctx, cfg)
		if err != nil {
			return err
		}
		opts = append(opts, pipeline.WithUploader(storageClient))
	}

	p := pipeline.New(pipeline.Config{
		MinTokens:       cfg.Corpus.MinTokens,
		KeepFraction:    keepFraction,
		BootstrapSource: cfg.Relevance.BootstrapSource,
		BootstrapScore:  cfg.Relevance.BootstrapScore,
		PositiveQuery:   cfg.Relevance.PositiveQuery,
		NegativeQuery:   cfg.Relevance.NegativeQuery,
		CompositeTerms:  compositeTerms(cfg),
		ArtifactsDir:    cfg.Relevance.ArtifactsDir,
		RefinedPath:     rankOutput,
	}, newTokenCounter(cfg), opts...)

	result, err := p.Run(ctx, docs)
	if err != nil {
		return fmt.Errorf("ranking failed: %w", err)
	}

	fmt.Printf("Ranking complete:\n")
	fmt.Printf("  Loaded: %d\n", result.Loaded)
	fmt.Printf("  Eligible (> %d tokens): %d\n", cfg.Corpus.MinTokens, result.Eligible)
	fmt.Printf("  Retained: %d -> %s\n", len(result.Retained), rankOutput)
	fmt.Printf("  Vocabulary: %d terms -> %s\n", result.Vocabulary, cfg.Relevance.ArtifactsDir)
	if cfg.Elasticsearch.Enabled {
		fmt.Printf("  Indexed: %d\n", result.Indexed)
	}
	fmt.Printf("  Duration: %v\n", result.Duration)

	for _, e := range result.Errors {
		fmt.Printf("  Warning: %v\n", e)
	}
	return nil
}
