package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/mfenderov/regcorpus/internal/instruct"
	"github.com/mfenderov/regcorpus/internal/orchestrator"
	"github.com/spf13/cobra"
)

var (
	instructKind string
	instructOut  string
)

var instructCmd = &cobra.Command{
	Use:   "instruct <task>",
	Short: "Build an instruction dataset from consolidated task results",
	Long: `Parse the consolidated results of a task and write instruction/output
pairs as JSON. The parser follows the task's parsed output kind unless --kind
is given.

Examples:
  regcorpus instruct abbrev
  regcorpus instruct links --out data/links.json`,
	Args: cobra.ExactArgs(1),
	RunE: runInstruct,
}

func init() {
	rootCmd.AddCommand(instructCmd)

	instructCmd.Flags().StringVar(&instructKind, "kind", "", "Parser kind: abbrev, definitions, qa or links")
	instructCmd.Flags().StringVar(&instructOut, "out", "", "Output JSON path (default <results>/<task>_instructions.json)")
}

func runInstruct(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	def, err := newRegistry(cfg).Get(args[0])
	if err != nil {
		return err
	}

	kindName := instructKind
	if kindName == "" {
		kindName = def.ParsedOutput
	}
	if kindName == "" {
		return fmt.Errorf("task %s has no parsed output; pass --kind", def.Name)
	}
	kind, err := instruct.ParseKind(kindName)
	if err != nil {
		return err
	}

	resultsDir := def.ResultsDir(cfg.Orchestrator.ResultsDir)
	records, err := orchestrator.ReadRecordsFile(orchestrator.ConsolidatedPath(resultsDir, def.Name))
	if err != nil {
		return fmt.Errorf("failed to read consolidated results (run 'regcorpus consolidate %s' first): %w", def.Name, err)
	}

	instructions, err := instruct.Build(kind, records)
	if err != nil {
		return err
	}

	out := instructOut
	if out == "" {
		out = filepath.Join(resultsDir, def.Name+"_instructions.json")
	}
	if err := instruct.WriteJSON(out, instructions); err != nil {
		return err
	}

	fmt.Printf("Wrote %d %s instructions from %d records -> %s\n", len(instructions), kind, len(records), out)
	return nil
}
