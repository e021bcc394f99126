package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/medqa/internal/dataset"
)

var (
	cleanMinLength int
	cleanMaxLength int
)

// cleanCmd represents the clean command
var cleanCmd = &cobra.Command{
	Use:   "clean <input.jsonl> <output.jsonl>",
	Short: "Normalize, filter and deduplicate scraped records",
	Long: `Clean strips promotional fragments from record text, collapses whitespace
and drops records that are too short, too long, in an irrelevant category
or exact duplicates of an earlier record.

Example:
  medqa clean vinmec.jsonl vinmec_clean.jsonl
  medqa clean records.jsonl clean.jsonl --min-length 80`,
	Args: cobra.ExactArgs(2),
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)

	cleanCmd.Flags().IntVar(&cleanMinLength, "min-length", 0, "minimum cleaned text length (default: clean.min_length)")
	cleanCmd.Flags().IntVar(&cleanMaxLength, "max-length", 0, "maximum cleaned text length (default: clean.max_length)")
}

func runClean(cmd *cobra.Command, args []string) error {
	in, out := args[0], args[1]

	cfg, log, err := setup()
	if err != nil {
		return err
	}
	if cleanMinLength > 0 {
		cfg.Clean.MinLength = cleanMinLength
	}
	if cleanMaxLength > 0 {
		cfg.Clean.MaxLength = cleanMaxLength
	}

	banner("medqa Clean")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", in)
	fmt.Fprintf(os.Stderr, "  Output:       %s\n", out)
	fmt.Fprintf(os.Stderr, "  Length:       %d-%d\n", cfg.Clean.MinLength, cfg.Clean.MaxLength)
	fmt.Fprintf(os.Stderr, "\n")

	cleaner, err := dataset.NewCleaner(cfg.Clean)
	if err != nil {
		return err
	}
	if err := cleaner.CleanFile(in, out); err != nil {
		return fmt.Errorf("clean %s: %w", in, err)
	}
	log.Debug().Int("records", cleaner.Counts.Total()).Msg("clean finished")

	banner("Clean Complete")
	fmt.Fprintf(os.Stderr, "  Total:     %d records\n", cleaner.Counts.Total())
	printCounter(cleaner.Counts)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", out)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}
