// Package train prepares classifier datasets and launches the external
// trainer.
package train

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"path/filepath"

	"github.com/ppiankov/medqa/internal/dataset"
	"github.com/ppiankov/medqa/internal/model"
)

// LabelMap is the exact answer → class index mapping
var LabelMap = map[string]int{
	string(model.LabelFalse): 0,
	string(model.LabelTrue):  1,
}

// Example is one classifier row
type Example struct {
	Text  string `json:"text"`
	Label int    `json:"label"`
}

// LoadStats counts what LoadExamples kept and why it dropped lines
type LoadStats struct {
	Kept   int
	Counts model.Counter
}

// LoadExamples reads merged {question, answer} lines, keeping answers that
// are exactly one of the LabelMap keys
func LoadExamples(path string) ([]Example, LoadStats, error) {
	stats := LoadStats{Counts: model.Counter{}}
	var out []Example
	err := dataset.ReadLines(path, func(l dataset.Line) error {
		var obj map[string]any
		if json.Unmarshal(l.Raw, &obj) != nil {
			stats.Counts.Add(model.Skip(model.SkipMalformed, fmt.Sprintf("line %d", l.Number)))
			return nil
		}
		q, okQ := dataset.Probe(obj, []string{"question"})
		a, _ := dataset.Probe(obj, []string{"answer"})
		label, okA := LabelMap[a]
		if !okQ || !okA {
			stats.Counts.Add(model.Skip(model.SkipMissingField, fmt.Sprintf("line %d", l.Number)))
			return nil
		}
		out = append(out, Example{Text: q, Label: label})
		return nil
	})
	stats.Kept = len(out)
	return out, stats, err
}

// Split makes a stratified train/validation split. Each class contributes
// round(n*valFraction) examples to validation; both halves are shuffled.
// The same seed always yields the same split.
func Split(examples []Example, valFraction float64, seed uint64) (trainSet, valSet []Example) {
	rng := rand.New(rand.NewPCG(seed, seed))

	byLabel := make(map[int][]Example)
	var labels []int
	for _, ex := range examples {
		if _, ok := byLabel[ex.Label]; !ok {
			labels = append(labels, ex.Label)
		}
		byLabel[ex.Label] = append(byLabel[ex.Label], ex)
	}

	for _, label := range labels {
		group := append([]Example(nil), byLabel[label]...)
		rng.Shuffle(len(group), func(i, j int) { group[i], group[j] = group[j], group[i] })

		n := int(math.Round(float64(len(group)) * valFraction))
		valSet = append(valSet, group[:n]...)
		trainSet = append(trainSet, group[n:]...)
	}

	rng.Shuffle(len(trainSet), func(i, j int) { trainSet[i], trainSet[j] = trainSet[j], trainSet[i] })
	rng.Shuffle(len(valSet), func(i, j int) { valSet[i], valSet[j] = valSet[j], valSet[i] })
	return trainSet, valSet
}

// WriteSplit writes train.jsonl and val.jsonl under dir
func WriteSplit(dir string, trainSet, valSet []Example) (trainPath, valPath string, err error) {
	trainPath = filepath.Join(dir, "train.jsonl")
	valPath = filepath.Join(dir, "val.jsonl")
	if err := dataset.WriteAll(trainPath, trainSet); err != nil {
		return "", "", fmt.Errorf("write train split: %w", err)
	}
	if err := dataset.WriteAll(valPath, valSet); err != nil {
		return "", "", fmt.Errorf("write validation split: %w", err)
	}
	return trainPath, valPath, nil
}
