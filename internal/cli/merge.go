package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/medqa/internal/dataset"
)

var (
	mergeOutput     string
	mergeDuplicates string
	mergeNoShuffle  bool
)

// mergeCmd represents the merge command
var mergeCmd = &cobra.Command{
	Use:   "merge <file|dir>...",
	Short: "Merge QA files into one deduplicated training set",
	Long: `Merge reads every input (directories contribute their *.jsonl files),
maps each line onto question/answer whatever its field names, keeps the
first occurrence of each exact (question, answer) pair and shuffles the
result. Dropped duplicates are written to a separate file for review.

Example:
  medqa merge synth/ pubmed.jsonl
  medqa merge a.jsonl b.jsonl -o train.jsonl --duplicates dups.jsonl`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMerge,
}

func init() {
	rootCmd.AddCommand(mergeCmd)

	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "", "merged output (default: merge.output)")
	mergeCmd.Flags().StringVar(&mergeDuplicates, "duplicates", "", "duplicate report (default: merge.duplicate_file)")
	mergeCmd.Flags().BoolVar(&mergeNoShuffle, "no-shuffle", false, "keep input order")
}

func runMerge(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	if mergeOutput != "" {
		cfg.Merge.Output = mergeOutput
	}
	if mergeDuplicates != "" {
		cfg.Merge.DuplicateFile = mergeDuplicates
	}

	inputs, err := dataset.ResolveInputs(args)
	if err != nil {
		return err
	}

	banner("medqa Merge")
	for _, in := range inputs {
		fmt.Fprintf(os.Stderr, "  Input:        %s\n", in)
	}
	fmt.Fprintf(os.Stderr, "  Output:       %s\n", cfg.Merge.Output)
	fmt.Fprintf(os.Stderr, "\n")

	merger := dataset.NewMerger(cfg.Merge)
	if mergeNoShuffle {
		merger.Shuffle = nil
	}
	res, err := merger.Merge(inputs)
	if err != nil {
		return err
	}

	if err := dataset.WriteAll(cfg.Merge.Output, res.Unique); err != nil {
		return fmt.Errorf("write merged: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ Wrote %d pairs to %s\n", len(res.Unique), cfg.Merge.Output)

	if len(res.Duplicates) > 0 {
		if err := dataset.WriteAll(cfg.Merge.DuplicateFile, res.Duplicates); err != nil {
			return fmt.Errorf("write duplicates: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote %d duplicates to %s\n", len(res.Duplicates), cfg.Merge.DuplicateFile)
	}
	log.Debug().Int("lines", res.Lines).Int("unique", len(res.Unique)).Msg("merge finished")

	banner("Merge Complete")
	fmt.Fprintf(os.Stderr, "  Lines:       %d\n", res.Lines)
	fmt.Fprintf(os.Stderr, "  Unique:      %d\n", len(res.Unique))
	fmt.Fprintf(os.Stderr, "  Duplicates:  %d\n", len(res.Duplicates))
	fmt.Fprintf(os.Stderr, "  Malformed:   %d\n", res.Malformed)
	fmt.Fprintf(os.Stderr, "  Missing:     %d\n", res.Missing)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}
