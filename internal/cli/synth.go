package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/medqa/internal/dataset"
	"github.com/ppiankov/medqa/internal/llm"
	"github.com/ppiankov/medqa/internal/model"
	"github.com/ppiankov/medqa/internal/synth"
)

var (
	synthMode       string
	synthOutput     string
	synthBatchSize  int
	synthTarget     int
	synthBatchDelay time.Duration
	llmProvider     string
	llmModel        string
	llmBaseURL      string
)

// synthCmd represents the synth command
var synthCmd = &cobra.Command{
	Use:   "synth <input>",
	Short: "Generate true/false QA items with a language model",
	Long: `Synth asks a language model for true/false statements grounded in the
input records and appends the validated items to the output file.

Modes:
  topic         one request per disease, all its sections as context
  section       one request per (source, category) section
  crosslingual  Vietnamese statements from English records
  pubmedqa      relabel PubMedQA questions in batches (parquet or JSONL input)

Runs are resumable: topics, sections and PubMedQA ids already present in
the output are skipped.

Example:
  medqa synth vinmec_clean.jsonl --mode topic
  medqa synth medlineplus.jsonl --mode crosslingual --provider openai --model gpt-4o-mini
  medqa synth pqa_artificial.parquet --mode pubmedqa -o pubmed_vi.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runSynth,
}

func init() {
	rootCmd.AddCommand(synthCmd)

	synthCmd.Flags().StringVar(&synthMode, "mode", "", "synthesis mode: "+strings.Join(synth.Modes, ", ")+" (default: synth.mode)")
	synthCmd.Flags().StringVarP(&synthOutput, "output", "o", "", "output file, appended to (default: synth.output)")
	synthCmd.Flags().IntVar(&synthBatchSize, "batch-size", 0, "pubmedqa rows per request (default: synth.batch_size)")
	synthCmd.Flags().IntVar(&synthTarget, "target", 0, "statements requested per topic (default: synth.target_questions)")
	synthCmd.Flags().DurationVar(&synthBatchDelay, "batch-delay", -1, "pause between requests (default: synth.batch_delay)")

	// LLM flags
	synthCmd.Flags().StringVar(&llmProvider, "provider", "", "LLM provider: openai, gemini, anthropic, ollama (default: llm.provider)")
	synthCmd.Flags().StringVar(&llmModel, "model", "", "LLM model name (default: llm.model)")
	synthCmd.Flags().StringVar(&llmBaseURL, "base-url", "", "LLM API base URL")
}

// applySynthFlags overrides config with flags the user set
func applySynthFlags(cfg *model.Config) {
	if synthMode != "" {
		cfg.Synth.Mode = synthMode
	}
	if synthOutput != "" {
		cfg.Synth.Output = synthOutput
	}
	if synthBatchSize > 0 {
		cfg.Synth.BatchSize = synthBatchSize
	}
	if synthTarget > 0 {
		cfg.Synth.TargetQuestions = synthTarget
	}
	if synthBatchDelay >= 0 {
		cfg.Synth.BatchDelay = synthBatchDelay
	}
	if llmProvider != "" && !strings.EqualFold(llmProvider, cfg.LLM.Provider) {
		cfg.LLM.Provider = llmProvider
		// the configured model belongs to the other provider
		cfg.LLM.Model = ""
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
	if llmBaseURL != "" {
		cfg.LLM.BaseURL = llmBaseURL
	}
}

// loadSynthInput reads records, or PubMedQA rows in pubmedqa mode
func loadSynthInput(mode synth.Mode, path string) (synth.Input, int, error) {
	if mode.Name() == "pubmedqa" {
		rows, err := synth.LoadPubMed(path)
		return synth.Input{Rows: rows}, 0, err
	}
	records, skipped, err := dataset.ReadObjects[model.Record](path)
	return synth.Input{Records: records}, skipped, err
}

func runSynth(cmd *cobra.Command, args []string) (err error) {
	input := args[0]

	cfg, log, err := setup()
	if err != nil {
		return err
	}
	applySynthFlags(cfg)

	mode, err := synth.NewMode(cfg.Synth.Mode, cfg.Synth)
	if err != nil {
		return err
	}

	provider, err := llm.NewProvider(llm.ApplyEnv(llm.ConfigFromModel(cfg.LLM, cfg.HTTP)))
	if err != nil {
		return fmt.Errorf("create provider: %w", err)
	}

	modelName := cfg.LLM.Model
	if modelName == "" {
		modelName = "default"
	}

	banner("medqa Synth")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", input)
	fmt.Fprintf(os.Stderr, "  Mode:         %s\n", mode.Name())
	fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", provider.Name(), modelName)
	fmt.Fprintf(os.Stderr, "  Output:       %s\n", cfg.Synth.Output)
	fmt.Fprintf(os.Stderr, "\n")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	in, skipped, err := loadSynthInput(mode, input)
	if err != nil {
		return fmt.Errorf("load input: %w", err)
	}
	if skipped > 0 {
		log.Warn().Int("lines", skipped).Msg("unparsable input lines skipped")
	}

	progress, err := synth.LoadProgress(cfg.Synth.Output, mode)
	if err != nil {
		return fmt.Errorf("load progress: %w", err)
	}

	tasks, counts := mode.Tasks(in, progress)
	fmt.Fprintf(os.Stderr, "✓ Loaded %d records, %d rows\n", len(in.Records), len(in.Rows))
	fmt.Fprintf(os.Stderr, "✓ %d tasks to run (%d already done)\n\n", len(tasks), counts[model.SkipResumed])
	if len(tasks) == 0 {
		return nil
	}

	w, err := dataset.OpenWriter(cfg.Synth.Output, false)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := w.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close output: %w", closeErr)
		}
	}()

	s := synth.New(provider, mode, cfg.Synth, synth.WithLogger(log))
	stats, runErr := s.Run(ctx, tasks, w, func(i int, task synth.Task, items int, terr error) {
		if terr != nil {
			fmt.Fprintf(os.Stderr, "✗ [%d/%d] %s: %v\n", i+1, len(tasks), task.Key, terr)
			return
		}
		fmt.Fprintf(os.Stderr, "✓ [%d/%d] %s (%d items)\n", i+1, len(tasks), task.Key, items)
	})

	banner("Synth Complete")
	fmt.Fprintf(os.Stderr, "  Tasks:     %d/%d\n", stats.Tasks, len(tasks))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", stats.Succeeded)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", stats.Failed)
	fmt.Fprintf(os.Stderr, "  Items:     %d\n", stats.Items)
	fmt.Fprintf(os.Stderr, "  Dropped:   %d\n", stats.Dropped)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", cfg.Synth.Output)
	fmt.Fprintf(os.Stderr, "\n")

	if errors.Is(runErr, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Interrupted; rerun the same command to resume.\n")
		return nil
	}
	return runErr
}
