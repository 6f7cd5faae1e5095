package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score [text]",
	Short: "Score text for regulatory relevance",
	Long: `Score text with the relevance artifacts written by 'rank'. Reads the
text from the argument, or from stdin when no argument is given.

Examples:
  regcorpus score "capital requirements for credit institutions"
  regcorpus score < page.md`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	scorer, err := loadScorer(GetConfig())
	if err != nil {
		return err
	}

	var text string
	if len(args) == 1 {
		text = args[0]
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(data)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("no text to score")
	}

	fmt.Printf("%.6f\n", scorer.Score(text))
	return nil
}
