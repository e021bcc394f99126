package pipeline

import (
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/medqa/internal/model"
)

// Emitter flattens page sections into records
type Emitter struct {
	minText int
}

// NewEmitter creates an emitter that drops sections shorter than minText
// runes
func NewEmitter(minText int) *Emitter {
	return &Emitter{minText: minText}
}

// Emit returns one record per section with non-trivial text, in section
// order. A page yielding none is reported as no_content.
func (e *Emitter) Emit(meta model.PageMeta, sections []model.Section) ([]model.Record, model.Outcome) {
	records := make([]model.Record, 0, len(sections))
	for _, s := range sections {
		text := strings.TrimSpace(s.Text)
		if text == "" || utf8.RuneCountInString(text) <= e.minText {
			continue
		}
		records = append(records, model.Record{
			Name:     meta.Title,
			URL:      meta.URL,
			Source:   meta.Source,
			Category: s.Category.Label(),
			Text:     text,
		})
	}
	if len(records) == 0 {
		return nil, model.Skip(model.SkipNoContent, "no section above minimum length")
	}
	return records, model.Outcome{}
}
