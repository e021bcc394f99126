package synth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ppiankov/medqa/internal/dataset"
	"github.com/ppiankov/medqa/internal/model"
)

// ErrTooFewItems marks a response that returned fewer items than required
var ErrTooFewItems = errors.New("too few items in response")

// PubMedSource is the nguon value of items built from PubMedQA rows
const PubMedSource = "PubMedQA (Artificial)"

var (
	statementKeys = []string{"cau_hoi", "input", "statement"}
	labelKeys     = []string{"dap_an", "output", "label", "answer"}
)

// Task is one model request
type Task struct {
	Key      string
	Topic    string
	Category string
	Source   string
	Context  string
	IDs      map[string]bool // pubmedqa rows in this batch
}

// Input is what a mode builds tasks from: scraped records or PubMedQA rows
type Input struct {
	Records []model.Record
	Rows    []PubMedRow
}

// Mode is one synthesis strategy
type Mode interface {
	Name() string
	Prompt() Prompt

	// Tasks builds requests in input order, skipping completed keys
	Tasks(in Input, progress Progress) ([]Task, model.Counter)

	// Items converts parsed response objects into candidate items
	Items(task Task, raw []map[string]any) ([]model.QAItem, error)

	// ResumeKey returns the task key an existing output item counts toward
	ResumeKey(item model.QAItem) string

	// QuotaPause overrides the configured quota pause when non-zero
	QuotaPause() time.Duration
}

// Modes lists the supported mode names
var Modes = []string{"topic", "section", "crosslingual", "pubmedqa"}

// NewMode builds the named mode from config
func NewMode(name string, cfg model.SynthConfig) (Mode, error) {
	switch name {
	case "topic":
		return &topicMode{cfg: cfg}, nil
	case "section":
		return &sectionMode{minContext: 50, maxContext: cfg.MaxContext}, nil
	case "crosslingual":
		return &crosslingualMode{minContext: 100, maxContext: 3500}, nil
	case "pubmedqa":
		return &pubmedMode{batchSize: cfg.BatchSize}, nil
	default:
		return nil, fmt.Errorf("unknown synth mode: %s (supported: %s)", name, strings.Join(Modes, ", "))
	}
}

// Progress counts existing output items per resume key
type Progress map[string]int

// LoadProgress scans an existing output file. A missing file means no
// progress; unparsable lines are ignored.
func LoadProgress(path string, mode Mode) (Progress, error) {
	p := Progress{}
	items, _, err := dataset.ReadObjects[model.QAItem](path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return p, nil
		}
		return nil, err
	}
	for _, it := range items {
		if k := mode.ResumeKey(it); k != "" {
			p[k]++
		}
	}
	return p, nil
}

func candidate(raw map[string]any) model.QAItem {
	statement, _ := dataset.Probe(raw, statementKeys)
	label, _ := dataset.Probe(raw, labelKeys)
	return model.QAItem{Statement: statement, Label: model.Label(label)}
}

func truncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// groupByName groups records with text by disease name, in first-seen order
func groupByName(records []model.Record) ([]string, map[string][]model.Record) {
	var order []string
	groups := make(map[string][]model.Record)
	for _, r := range records {
		if r.Name == "" || r.Text == "" {
			continue
		}
		if _, ok := groups[r.Name]; !ok {
			order = append(order, r.Name)
		}
		groups[r.Name] = append(groups[r.Name], r)
	}
	return order, groups
}

// topicMode asks for a full question set per disease
type topicMode struct {
	cfg model.SynthConfig
}

func (m *topicMode) Name() string                     { return "topic" }
func (m *topicMode) Prompt() Prompt                   { return topicPrompt }
func (m *topicMode) QuotaPause() time.Duration        { return 0 }
func (m *topicMode) ResumeKey(it model.QAItem) string { return it.Topic }

func (m *topicMode) Tasks(in Input, progress Progress) ([]Task, model.Counter) {
	skipped := model.Counter{}
	order, groups := groupByName(in.Records)

	var tasks []Task
	for _, name := range order {
		if progress[name] >= m.cfg.CompleteAt {
			skipped.Add(model.Skip(model.SkipResumed, name))
			continue
		}
		var b strings.Builder
		for _, r := range groups[name] {
			fmt.Fprintf(&b, "\n[Mục: %s]\n%s\n", r.Category, r.Text)
		}
		text := b.String()
		if utf8.RuneCountInString(text) < m.cfg.MinContext {
			skipped.Add(model.Skip(model.SkipTooShort, name))
			continue
		}
		tasks = append(tasks, Task{
			Key:     name,
			Topic:   name,
			Source:  groups[name][0].URL,
			Context: text,
		})
	}
	return tasks, skipped
}

func (m *topicMode) Items(task Task, raw []map[string]any) ([]model.QAItem, error) {
	if len(raw) < m.cfg.MinItems {
		return nil, fmt.Errorf("%w: %d < %d", ErrTooFewItems, len(raw), m.cfg.MinItems)
	}
	items := make([]model.QAItem, 0, len(raw))
	for _, r := range raw {
		it := candidate(r)
		it.Source = task.Source
		it.Topic = task.Topic
		items = append(items, it)
	}
	return items, nil
}

// sectionMode asks for a few statements per section
type sectionMode struct {
	minContext int
	maxContext int
}

func (m *sectionMode) Name() string              { return "section" }
func (m *sectionMode) Prompt() Prompt            { return sectionPrompt }
func (m *sectionMode) QuotaPause() time.Duration { return 0 }

func (m *sectionMode) ResumeKey(it model.QAItem) string {
	if it.Source == "" || it.Category == "" {
		return ""
	}
	return it.Source + "#" + it.Category
}

func (m *sectionMode) Tasks(in Input, progress Progress) ([]Task, model.Counter) {
	skipped := model.Counter{}
	var tasks []Task
	for _, r := range in.Records {
		if r.Text == "" || r.Category == "" {
			skipped.Add(model.Skip(model.SkipMissingField, r.URL))
			continue
		}
		key := r.URL + "#" + r.Category
		if progress[key] > 0 {
			skipped.Add(model.Skip(model.SkipResumed, key))
			continue
		}
		if utf8.RuneCountInString(r.Text) < m.minContext {
			skipped.Add(model.Skip(model.SkipTooShort, key))
			continue
		}
		tasks = append(tasks, Task{
			Key:      key,
			Topic:    r.Name,
			Category: r.Category,
			Source:   r.URL,
			Context:  truncateRunes(r.Text, m.maxContext),
		})
	}
	return tasks, skipped
}

func (m *sectionMode) Items(task Task, raw []map[string]any) ([]model.QAItem, error) {
	var items []model.QAItem
	for _, r := range raw {
		it := candidate(r)
		if strings.Contains(it.Statement, "?") {
			continue
		}
		it.Source = task.Source
		it.Topic = task.Topic
		it.Category = task.Category
		items = append(items, it)
	}
	return items, nil
}

// crosslingualMode turns English articles into Vietnamese statements
type crosslingualMode struct {
	minContext int
	maxContext int
}

func (m *crosslingualMode) Name() string                     { return "crosslingual" }
func (m *crosslingualMode) Prompt() Prompt                   { return crosslingualPrompt }
func (m *crosslingualMode) QuotaPause() time.Duration        { return 0 }
func (m *crosslingualMode) ResumeKey(it model.QAItem) string { return it.Topic }

func (m *crosslingualMode) Tasks(in Input, progress Progress) ([]Task, model.Counter) {
	skipped := model.Counter{}
	order, groups := groupByName(in.Records)

	var tasks []Task
	for _, name := range order {
		if progress[name] > 0 {
			skipped.Add(model.Skip(model.SkipResumed, name))
			continue
		}
		parts := make([]string, 0, len(groups[name]))
		for _, r := range groups[name] {
			parts = append(parts, r.Text)
		}
		content := strings.Join(parts, "\n")
		if utf8.RuneCountInString(content) < m.minContext {
			skipped.Add(model.Skip(model.SkipTooShort, name))
			continue
		}
		tasks = append(tasks, Task{
			Key:     name,
			Topic:   name,
			Source:  groups[name][0].URL,
			Context: truncateRunes(content, m.maxContext),
		})
	}
	return tasks, skipped
}

func (m *crosslingualMode) Items(task Task, raw []map[string]any) ([]model.QAItem, error) {
	items := make([]model.QAItem, 0, len(raw))
	for _, r := range raw {
		it := candidate(r)
		it.Source = task.Source
		it.Topic = task.Topic
		items = append(items, it)
	}
	return items, nil
}

// pubmedMode rewrites batches of PubMedQA questions as statements
type pubmedMode struct {
	batchSize int
}

func (m *pubmedMode) Name() string                     { return "pubmedqa" }
func (m *pubmedMode) Prompt() Prompt                   { return pubmedPrompt }
func (m *pubmedMode) QuotaPause() time.Duration        { return 60 * time.Second }
func (m *pubmedMode) ResumeKey(it model.QAItem) string { return it.OriginalID }

type pubmedInput struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Label    string `json:"label"`
}

func (m *pubmedMode) Tasks(in Input, progress Progress) ([]Task, model.Counter) {
	skipped := model.Counter{}
	var todo []pubmedInput
	for _, row := range in.Rows {
		decision := strings.ToLower(strings.TrimSpace(row.Decision))
		if decision != "yes" && decision != "no" {
			skipped.Add(model.Skip(model.SkipIrrelevant, row.ID))
			continue
		}
		if progress[row.ID] > 0 {
			skipped.Add(model.Skip(model.SkipResumed, row.ID))
			continue
		}
		todo = append(todo, pubmedInput{ID: row.ID, Question: row.Question, Label: decision})
	}

	size := m.batchSize
	if size <= 0 {
		size = 50
	}
	var tasks []Task
	for start := 0; start < len(todo); start += size {
		batch := todo[start:min(start+size, len(todo))]
		body, _ := json.Marshal(batch)
		ids := make(map[string]bool, len(batch))
		for _, b := range batch {
			ids[b.ID] = true
		}
		tasks = append(tasks, Task{
			Key:     fmt.Sprintf("%s..%s", batch[0].ID, batch[len(batch)-1].ID),
			Source:  PubMedSource,
			Context: string(body),
			IDs:     ids,
		})
	}
	return tasks, skipped
}

func (m *pubmedMode) Items(task Task, raw []map[string]any) ([]model.QAItem, error) {
	var items []model.QAItem
	for _, r := range raw {
		id, _ := dataset.Probe(r, []string{"id", "original_id"})
		if !task.IDs[id] {
			continue
		}
		it := candidate(r)
		it.Source = PubMedSource
		it.OriginalID = id
		items = append(items, it)
	}
	return items, nil
}
