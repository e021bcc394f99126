package dataset

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ppiankov/medqa/internal/model"
)

// DuplicateNote marks records removed for an exact (question, answer) match
const DuplicateNote = "Exact Duplicate (Q+A match)"

// Merger unifies heterogeneous QA files and drops exact duplicates
type Merger struct {
	questionKeys []string
	answerKeys   []string

	// Shuffle permutes the unique set; unseeded by default
	Shuffle func([]model.QAPair)
}

// NewMerger creates a merger probing the given key names in order
func NewMerger(cfg model.MergeConfig) *Merger {
	return &Merger{
		questionKeys: cfg.QuestionKeys,
		answerKeys:   cfg.AnswerKeys,
		Shuffle: func(pairs []model.QAPair) {
			rand.Shuffle(len(pairs), func(i, j int) { pairs[i], pairs[j] = pairs[j], pairs[i] })
		},
	}
}

// MergeResult holds the merge outputs and line accounting
type MergeResult struct {
	Unique     []model.QAPair
	Duplicates []model.DuplicateRecord
	Lines      int // non-empty lines read
	Malformed  int // not a JSON object
	Missing    int // no question or no answer
}

// Merge reads paths in order. Every path must exist before any is read.
// Unique + Duplicates + Malformed + Missing always equals Lines.
func (m *Merger) Merge(paths []string) (*MergeResult, error) {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("input %s: %w", p, err)
		}
	}

	res := &MergeResult{}
	seen := make(map[[2]string]bool)

	for _, path := range paths {
		name := filepath.Base(path)
		err := ReadLines(path, func(l Line) error {
			res.Lines++

			var obj map[string]any
			if json.Unmarshal(l.Raw, &obj) != nil || obj == nil {
				res.Malformed++
				return nil
			}

			q, okQ := Probe(obj, m.questionKeys)
			a, okA := Probe(obj, m.answerKeys)
			if !okQ || !okA {
				res.Missing++
				return nil
			}

			sig := [2]string{q, a}
			if seen[sig] {
				res.Duplicates = append(res.Duplicates, model.DuplicateRecord{
					Question:   q,
					Answer:     a,
					SourceFile: name,
					Note:       DuplicateNote,
				})
				return nil
			}
			seen[sig] = true
			res.Unique = append(res.Unique, model.QAPair{Question: q, Answer: a})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if m.Shuffle != nil {
		m.Shuffle(res.Unique)
	}
	return res, nil
}

// Probe returns the first key whose value is a non-empty scalar, trimmed.
// Numbers and booleans are stringified.
func Probe(obj map[string]any, keys []string) (string, bool) {
	for _, k := range keys {
		v, ok := obj[k]
		if !ok {
			continue
		}
		var s string
		switch t := v.(type) {
		case string:
			s = t
		case float64:
			s = strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			s = strconv.FormatBool(t)
		default:
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			return s, true
		}
	}
	return "", false
}

// ResolveInputs expands directories to their *.jsonl files (sorted) and
// keeps plain files as given
func ResolveInputs(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", arg, err)
		}
		if !info.IsDir() {
			out = append(out, arg)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(arg, "*.jsonl"))
		if err != nil {
			return nil, err
		}
		sort.Strings(matches)
		out = append(out, matches...)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no .jsonl inputs found in %s", strings.Join(args, ", "))
	}
	return out, nil
}
