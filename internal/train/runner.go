package train

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrNoTrainer means no trainer command was configured
var ErrNoTrainer = errors.New("no trainer command configured (set train.trainer_cmd or --trainer-cmd)")

// LatestCheckpoint returns the most recently modified checkpoint*
// subdirectory of dir. A missing dir is not an error.
func LatestCheckpoint(dir string) (string, bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read checkpoints: %w", err)
	}

	var (
		latest string
		best   int64
	)
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), "checkpoint") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if mt := info.ModTime().UnixNano(); latest == "" || mt > best {
			latest, best = filepath.Join(dir, e.Name()), mt
		}
	}
	return latest, latest != "", nil
}

// Job describes one training launch
type Job struct {
	TrainFile     string
	ValFile       string
	BaseModel     string
	OutputDir     string
	CheckpointDir string
	Resume        string
	MaxLength     int
	BatchSize     int
	Epochs        int
	LearningRate  float64
}

// Args renders the job as trainer flags
func (j Job) Args() []string {
	args := []string{
		"--train_file", j.TrainFile,
		"--validation_file", j.ValFile,
		"--model_name_or_path", j.BaseModel,
		"--output_dir", j.OutputDir,
		"--checkpoint_dir", j.CheckpointDir,
		"--max_length", strconv.Itoa(j.MaxLength),
		"--per_device_train_batch_size", strconv.Itoa(j.BatchSize),
		"--num_train_epochs", strconv.Itoa(j.Epochs),
		"--learning_rate", strconv.FormatFloat(j.LearningRate, 'g', -1, 64),
	}
	if j.Resume != "" {
		args = append(args, "--resume_from_checkpoint", j.Resume)
	}
	return args
}

// Runner executes the external trainer
type Runner struct {
	Command string
	Stdout  io.Writer
	Stderr  io.Writer
}

// Run starts the trainer and waits for it. Command is split on whitespace;
// the job flags follow its own arguments.
func (r *Runner) Run(ctx context.Context, job Job) error {
	parts := strings.Fields(r.Command)
	if len(parts) == 0 {
		return ErrNoTrainer
	}

	cmd := exec.CommandContext(ctx, parts[0], append(parts[1:], job.Args()...)...)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("trainer %s: %w", parts[0], err)
	}
	return nil
}
