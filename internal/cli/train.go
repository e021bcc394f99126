package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ppiankov/medqa/internal/model"
	"github.com/ppiankov/medqa/internal/train"
)

var (
	trainerCmd    string
	trainDataDir  string
	trainNoResume bool
	trainEpochs   int
)

// trainCmd represents the train command
var trainCmd = &cobra.Command{
	Use:   "train <merged.jsonl>",
	Short: "Split merged data and launch classifier training",
	Long: `Train maps merged answers onto labels (Sai=0, Đúng=1), makes a seeded
stratified train/validation split and writes train.jsonl and val.jsonl.

When a trainer command is configured it is launched with the split files,
model settings and the newest checkpoint to resume from. Without one, only
the data is prepared.

Example:
  medqa train train_data_final.jsonl
  medqa train train_data_final.jsonl --trainer-cmd "python finetune.py"`,
	Args: cobra.ExactArgs(1),
	RunE: runTrain,
}

func init() {
	rootCmd.AddCommand(trainCmd)

	trainCmd.Flags().StringVar(&trainerCmd, "trainer-cmd", "", "external trainer command (default: train.trainer_cmd)")
	trainCmd.Flags().StringVar(&trainDataDir, "data-dir", "", "directory for the split files (default: train.data_dir)")
	trainCmd.Flags().BoolVar(&trainNoResume, "no-resume", false, "start from the base model even if checkpoints exist")
	trainCmd.Flags().IntVar(&trainEpochs, "epochs", 0, "training epochs (default: train.epochs)")
}

func runTrain(cmd *cobra.Command, args []string) error {
	input := args[0]

	cfg, log, err := setup()
	if err != nil {
		return err
	}
	if trainerCmd != "" {
		cfg.Train.TrainerCmd = trainerCmd
	}
	if trainDataDir != "" {
		cfg.Train.DataDir = trainDataDir
	}
	if trainEpochs > 0 {
		cfg.Train.Epochs = trainEpochs
	}

	banner("medqa Train")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", input)
	fmt.Fprintf(os.Stderr, "  Base model:   %s\n", cfg.Train.BaseModel)
	fmt.Fprintf(os.Stderr, "  Data dir:     %s\n", cfg.Train.DataDir)
	fmt.Fprintf(os.Stderr, "\n")

	examples, stats, err := train.LoadExamples(input)
	if err != nil {
		return fmt.Errorf("load examples: %w", err)
	}
	if len(examples) == 0 {
		return fmt.Errorf("no labelled examples in %s", input)
	}
	trainSet, valSet := train.Split(examples, cfg.Train.ValFraction, cfg.Train.Seed)
	trainPath, valPath, err := train.WriteSplit(cfg.Train.DataDir, trainSet, valSet)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "✓ Loaded %d examples (%d dropped)\n", stats.Kept, stats.Counts.Total())
	fmt.Fprintf(os.Stderr, "✓ Train: %d → %s\n", len(trainSet), trainPath)
	fmt.Fprintf(os.Stderr, "✓ Val:   %d → %s\n", len(valSet), valPath)

	if cfg.Train.TrainerCmd == "" {
		fmt.Fprintf(os.Stderr, "\nNo trainer command configured; data prepared only.\n\n")
		return nil
	}

	job := newTrainJob(cfg.Train, trainPath, valPath)
	if !trainNoResume {
		checkpoint, ok, err := train.LatestCheckpoint(cfg.Train.CheckpointDir)
		if err != nil {
			return err
		}
		if ok {
			job.Resume = checkpoint
			fmt.Fprintf(os.Stderr, "✓ Resuming from %s\n", checkpoint)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Info().Str("trainer", cfg.Train.TrainerCmd).Strs("args", job.Args()).Msg("starting trainer")
	runner := &train.Runner{Command: cfg.Train.TrainerCmd, Stdout: os.Stdout, Stderr: os.Stderr}
	if err := runner.Run(ctx, job); err != nil {
		return err
	}

	banner("Train Complete")
	fmt.Fprintf(os.Stderr, "  Model:     %s\n", cfg.Train.OutputDir)
	fmt.Fprintf(os.Stderr, "\n")
	return nil
}

func newTrainJob(cfg model.TrainConfig, trainPath, valPath string) train.Job {
	return train.Job{
		TrainFile:     trainPath,
		ValFile:       valPath,
		BaseModel:     cfg.BaseModel,
		OutputDir:     cfg.OutputDir,
		CheckpointDir: cfg.CheckpointDir,
		MaxLength:     cfg.MaxLength,
		BatchSize:     cfg.BatchSize,
		Epochs:        cfg.Epochs,
		LearningRate:  cfg.LearningRate,
	}
}
