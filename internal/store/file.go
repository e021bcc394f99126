package store

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ppiankov/medqa/internal/dataset"
	"github.com/ppiankov/medqa/internal/model"
)

// JSONLSink appends one record per line and flushes after every page
type JSONLSink struct {
	w *dataset.Writer
}

// NewJSONLSink opens path in append mode so repeated runs accumulate
func NewJSONLSink(path string) (*JSONLSink, error) {
	w, err := dataset.OpenWriter(path, false)
	if err != nil {
		return nil, err
	}
	return &JSONLSink{w: w}, nil
}

// Write appends records
func (s *JSONLSink) Write(_ context.Context, records []model.Record) error {
	for _, r := range records {
		if err := s.w.Write(r); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	return s.w.Flush()
}

// Close closes the file
func (s *JSONLSink) Close() error {
	return s.w.Close()
}

// WideRow is one page with one column per category
type WideRow struct {
	URL      string            `json:"url"`
	Source   string            `json:"source"`
	Disease  string            `json:"disease"`
	Sections map[string]string `json:"sections"`
}

// wideRow folds a page's records into one row. Repeated categories are
// joined by newline.
func wideRow(records []model.Record) WideRow {
	row := WideRow{Sections: make(map[string]string)}
	for _, r := range records {
		row.URL, row.Source, row.Disease = r.URL, r.Source, r.Name
		c, _ := model.ParseCategory(r.Category)
		if prev := row.Sections[string(c)]; prev != "" {
			row.Sections[string(c)] = prev + "\n" + r.Text
		} else {
			row.Sections[string(c)] = r.Text
		}
	}
	return row
}

// CSVSink writes one wide row per page
type CSVSink struct {
	f *os.File
	w *csv.Writer
}

// NewCSVSink creates path (truncating) and writes the header
func NewCSVSink(path string) (*CSVSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	// BOM so spreadsheet tools detect UTF-8
	if _, err := f.WriteString("\ufeff"); err != nil {
		_ = f.Close()
		return nil, err
	}
	w := csv.NewWriter(f)
	header := []string{"url", "source", "disease"}
	for _, c := range model.Categories {
		header = append(header, string(c))
	}
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return nil, err
	}
	return &CSVSink{f: f, w: w}, nil
}

// Write appends one row for the page
func (s *CSVSink) Write(_ context.Context, records []model.Record) error {
	if len(records) == 0 {
		return nil
	}
	row := wideRow(records)
	line := []string{row.URL, row.Source, row.Disease}
	for _, c := range model.Categories {
		line = append(line, row.Sections[string(c)])
	}
	if err := s.w.Write(line); err != nil {
		return err
	}
	s.w.Flush()
	return s.w.Error()
}

// Close flushes and closes the file
func (s *CSVSink) Close() error {
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		_ = s.f.Close()
		return err
	}
	return s.f.Close()
}

// JSONArraySink collects wide rows and writes an indented array on Close
type JSONArraySink struct {
	path string
	rows []WideRow
}

// NewJSONArraySink creates a sink writing to path on Close
func NewJSONArraySink(path string) *JSONArraySink {
	return &JSONArraySink{path: path}
}

// Write buffers one row
func (s *JSONArraySink) Write(_ context.Context, records []model.Record) error {
	if len(records) > 0 {
		s.rows = append(s.rows, wideRow(records))
	}
	return nil
}

// Close writes the array
func (s *JSONArraySink) Close() error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create %s: %w", s.path, err)
	}
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	rows := s.rows
	if rows == nil {
		rows = []WideRow{}
	}
	if err := enc.Encode(rows); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
