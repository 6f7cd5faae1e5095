package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/mfenderov/regcorpus/internal/elasticsearch"
	"github.com/spf13/cobra"
)

var (
	searchLimit  int
	searchSource string
	searchFormat string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the indexed refined corpus",
	Long: `Search the refined corpus indexed by 'rank'.

Examples:
  # Basic search
  regcorpus search "capital requirements"

  # Restrict to a source
  regcorpus search "market abuse" --source ESMA --limit 5

  # JSON output for scripting
  regcorpus search "swap dealers" --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "Maximum number of results")
	searchCmd.Flags().StringVar(&searchSource, "source", "", "Only return documents from this source")
	searchCmd.Flags().StringVar(&searchFormat, "format", "text", "Output format: text or json")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	esClient, err := newElasticsearch(GetConfig())
	if err != nil {
		return err
	}

	docs, err := esClient.Search(ctx, args[0], elasticsearch.SearchOptions{
		Source: searchSource,
		Limit:  searchLimit,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(docs) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	if searchFormat == "json" {
		output, err := json.MarshalIndent(docs, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Found %d results:\n\n", len(docs))
	for i, doc := range docs {
		fmt.Printf("─── Result %d ───\n", i+1)
		fmt.Printf("Title:   %s\n", doc.Title)
		fmt.Printf("URL:     %s\n", doc.URL)
		fmt.Printf("Source:  %s\n", doc.Source)
		fmt.Printf("Score:   %.4f\n", doc.Score)

		content := doc.Content
		if len(content) > 500 {
			content = content[:500] + "..."
		}
		fmt.Printf("Content:\n%s\n\n", content)
	}
	return nil
}
