// Package synth generates true/false training statements from scraped
// records and PubMedQA rows with an external language model.
package synth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ppiankov/medqa/internal/dataset"
	"github.com/ppiankov/medqa/internal/llm"
	"github.com/ppiankov/medqa/internal/model"
	"github.com/ppiankov/medqa/internal/util"
)

// synthSleepFunc is overridable in tests
var synthSleepFunc = util.Sleep

// Synthesizer sends one request per task and validates the returned items
type Synthesizer struct {
	provider llm.Provider
	mode     Mode
	cfg      model.SynthConfig
	log      zerolog.Logger
	newID    func() string
}

// Option configures a Synthesizer
type Option func(*Synthesizer)

// WithLogger sets the diagnostics logger
func WithLogger(l zerolog.Logger) Option {
	return func(s *Synthesizer) { s.log = l }
}

// WithIDFunc replaces the item ID generator
func WithIDFunc(f func() string) Option {
	return func(s *Synthesizer) { s.newID = f }
}

// New creates a synthesizer for one mode
func New(provider llm.Provider, mode Mode, cfg model.SynthConfig, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		provider: provider,
		mode:     mode,
		cfg:      cfg,
		log:      zerolog.Nop(),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stats summarizes a run
type Stats struct {
	Tasks     int
	Succeeded int
	Failed    int
	Items     int
	Dropped   int
}

// TaskFunc observes each finished task; err is nil on success
type TaskFunc func(i int, task Task, items int, err error)

type promptData struct {
	Topic    string
	Category string
	Context  string
	Target   int
}

// Run processes tasks in order, appending accepted items to w and flushing
// after every task. A failed task is logged and skipped; only context
// cancellation or a write error stops the run.
func (s *Synthesizer) Run(ctx context.Context, tasks []Task, w *dataset.Writer, onTask TaskFunc) (Stats, error) {
	var stats Stats
	for i, task := range tasks {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Tasks++

		items, dropped, err := s.Synthesize(ctx, task)
		stats.Dropped += dropped
		if err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			stats.Failed++
			s.log.Warn().Err(err).Str("task", task.Key).Msg("batch failed")
		} else {
			for _, it := range items {
				if werr := w.Write(it); werr != nil {
					return stats, fmt.Errorf("write item: %w", werr)
				}
			}
			if ferr := w.Flush(); ferr != nil {
				return stats, fmt.Errorf("flush output: %w", ferr)
			}
			stats.Succeeded++
			stats.Items += len(items)
		}
		if onTask != nil {
			onTask(i, task, len(items), err)
		}

		if i < len(tasks)-1 && s.cfg.BatchDelay > 0 {
			if err := synthSleepFunc(ctx, s.cfg.BatchDelay); err != nil {
				return stats, err
			}
		}
	}
	return stats, nil
}

// Synthesize requests items for one task. It returns the accepted items
// and how many returned items were dropped by validation.
func (s *Synthesizer) Synthesize(ctx context.Context, task Task) ([]model.QAItem, int, error) {
	data := promptData{
		Topic:    task.Topic,
		Category: task.Category,
		Context:  task.Context,
		Target:   s.cfg.TargetQuestions,
	}
	prompt := s.mode.Prompt()
	system, err := render(prompt.System, data)
	if err != nil {
		return nil, 0, fmt.Errorf("render system prompt: %w", err)
	}
	user, err := render(prompt.User, data)
	if err != nil {
		return nil, 0, fmt.Errorf("render prompt: %w", err)
	}

	req := llm.GenerateRequest{
		System:      system,
		Prompt:      user,
		JSON:        true,
		Temperature: s.cfg.Temperature,
	}

	attempts := max(s.cfg.MaxAttempts, 1)
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		resp, err := s.provider.Generate(ctx, req)
		if err == nil {
			items, dropped, aerr := s.accept(task, resp.Text)
			if aerr == nil {
				return items, dropped, nil
			}
			// unparsable or too short responses are retried like errors
			err = aerr
		}
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		lastErr = err

		pause := s.pauseFor(err)
		s.log.Warn().Err(err).
			Str("task", task.Key).
			Int("attempt", attempt+1).
			Dur("pause", pause).
			Msg("generation failed")
		if attempt < attempts-1 {
			if serr := synthSleepFunc(ctx, pause); serr != nil {
				return nil, 0, serr
			}
		}
	}
	return nil, 0, fmt.Errorf("giving up after %d attempts: %w", attempts, lastErr)
}

func (s *Synthesizer) pauseFor(err error) time.Duration {
	var quota *llm.QuotaError
	if !errors.As(err, &quota) {
		return s.cfg.ErrorPause
	}
	if quota.RetryAfter > 0 {
		return quota.RetryAfter
	}
	if p := s.mode.QuotaPause(); p > 0 {
		return p
	}
	return s.cfg.QuotaPause
}

func (s *Synthesizer) accept(task Task, text string) ([]model.QAItem, int, error) {
	raw, err := ParseItems(text)
	if err != nil {
		return nil, 0, err
	}
	candidates, err := s.mode.Items(task, raw)
	if err != nil {
		return nil, 0, err
	}

	accepted := make([]model.QAItem, 0, len(candidates))
	for _, it := range candidates {
		it.Statement = strings.TrimSpace(it.Statement)
		if utf8.RuneCountInString(it.Statement) < s.cfg.MinStatement {
			continue
		}
		label, ok := model.ParseLabel(string(it.Label))
		if !ok {
			continue
		}
		it.Label = label
		it.ID = s.newID()
		accepted = append(accepted, it)
	}
	return accepted, len(raw) - len(accepted), nil
}
