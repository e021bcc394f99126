package synth

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/ppiankov/medqa/internal/dataset"
)

// PubMedRow is one PubMedQA question with its yes/no/maybe decision
type PubMedRow struct {
	ID       string
	Question string
	Decision string
}

// pubmedParquetRow mirrors the PubMedQA parquet columns medqa reads
type pubmedParquetRow struct {
	PubID         int64  `parquet:"pubid"`
	Question      string `parquet:"question"`
	FinalDecision string `parquet:"final_decision"`
}

// LoadPubMed reads PubMedQA rows from a .parquet file or a JSONL file with
// pubid/id, question and final_decision/label fields
func LoadPubMed(path string) ([]PubMedRow, error) {
	if strings.EqualFold(filepath.Ext(path), ".parquet") {
		return loadPubMedParquet(path)
	}
	return loadPubMedJSONL(path)
}

func loadPubMedParquet(path string) ([]PubMedRow, error) {
	rows, err := parquet.ReadFile[pubmedParquetRow](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet %s: %w", path, err)
	}
	out := make([]PubMedRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, PubMedRow{
			ID:       strconv.FormatInt(r.PubID, 10),
			Question: r.Question,
			Decision: r.FinalDecision,
		})
	}
	return out, nil
}

func loadPubMedJSONL(path string) ([]PubMedRow, error) {
	var out []PubMedRow
	err := dataset.ReadLines(path, func(l dataset.Line) error {
		var obj map[string]any
		if json.Unmarshal(l.Raw, &obj) != nil {
			return nil
		}
		id, okID := dataset.Probe(obj, []string{"pubid", "id"})
		q, okQ := dataset.Probe(obj, []string{"question"})
		if !okID || !okQ {
			return nil
		}
		decision, _ := dataset.Probe(obj, []string{"final_decision", "label"})
		out = append(out, PubMedRow{ID: id, Question: q, Decision: decision})
		return nil
	})
	return out, err
}
