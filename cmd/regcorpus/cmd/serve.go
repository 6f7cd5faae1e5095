package cmd

import (
	"fmt"
	"log/slog"

	"github.com/mfenderov/regcorpus/internal/mcp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the MCP server over stdio.

Tools:
  - search_corpus: Search the refined corpus by query and source
  - get_document: Get a document by ID
  - score_text: Score text for regulatory relevance (needs 'rank' artifacts)

Example:
  regcorpus serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	esClient, err := newElasticsearch(cfg)
	if err != nil {
		return err
	}

	var scorer mcp.Scorer
	if s, err := loadScorer(cfg); err != nil {
		slog.Warn("score_text disabled", "error", err)
	} else {
		scorer = s
	}

	server, err := mcp.NewServer(mcp.Config{
		Name:    cfg.MCP.Name,
		Version: cfg.MCP.Version,
	}, esClient, scorer)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "Starting MCP server...")
	return server.ServeStdio()
}
