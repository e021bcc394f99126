package store

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/medqa/internal/dataset"
	"github.com/ppiankov/medqa/internal/model"
)

var page = []model.Record{
	{Name: "Lao phổi", URL: "https://medlatec.vn/a", Source: "medlatec", Category: "Tổng quan", Text: "Lao phổi là bệnh <truyền nhiễm>."},
	{Name: "Lao phổi", URL: "https://medlatec.vn/a", Source: "medlatec", Category: "Triệu chứng", Text: "Ho kéo dài."},
	{Name: "Lao phổi", URL: "https://medlatec.vn/a", Source: "medlatec", Category: "Triệu chứng", Text: "Sốt về chiều."},
}

func TestJSONLSinkAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.jsonl")
	ctx := context.Background()

	for run := 0; run < 2; run++ {
		s, err := NewJSONLSink(path)
		if err != nil {
			t.Fatal(err)
		}
		if err := s.Write(ctx, page[:1]); err != nil {
			t.Fatal(err)
		}
		if err := s.Close(); err != nil {
			t.Fatal(err)
		}
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "Lao phổi") || !strings.Contains(string(data), "<truyền nhiễm>") {
		t.Errorf("non-ASCII or HTML escaped: %s", data)
	}
	records, skipped, err := dataset.ReadObjects[model.Record](path)
	if err != nil || skipped != 0 || len(records) != 2 {
		t.Errorf("records=%d skipped=%d err=%v", len(records), skipped, err)
	}
}

func TestCSVSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	s, err := NewCSVSink(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Write(context.Background(), page); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	f, _ := os.Open(path)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}
	header := rows[0]
	idx := -1
	for i, h := range header {
		if h == "symptoms" {
			idx = i
		}
	}
	if idx < 0 || rows[1][idx] != "Ho kéo dài.\nSốt về chiều." {
		t.Errorf("symptoms column = %q", rows[1])
	}
}

func TestJSONArraySink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	s := NewJSONArraySink(path)
	_ = s.Write(context.Background(), page)
	_ = s.Write(context.Background(), nil)
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	var rows []WideRow
	if err := json.Unmarshal(data, &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Disease != "Lao phổi" || rows[0].Sections["overview"] == "" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestFoldByCategory(t *testing.T) {
	records := append(append([]model.Record(nil), page...),
		model.Record{Name: "Lao phổi", URL: "https://medlatec.vn/a", Source: "medlatec", Category: "other", Text: "Hỏi đáp."},
		model.Record{Name: "Lao phổi", URL: "https://medlatec.vn/a", Source: "medlatec", Category: "other", Text: "Phòng khám."},
	)
	got := foldByCategory(records)
	if len(got) != 3 {
		t.Fatalf("got %d records, want 3: %+v", len(got), got)
	}
	if got[1].Category != "Triệu chứng" || got[1].Text != "Ho kéo dài.\nSốt về chiều." {
		t.Errorf("symptoms = %+v", got[1])
	}
	if got[2].Category != "other" || got[2].Text != "Hỏi đáp.\nPhòng khám." {
		t.Errorf("other = %+v", got[2])
	}
	if page[1].Text != "Ho kéo dài." {
		t.Errorf("input mutated: %q", page[1].Text)
	}
}

func TestOpenUnknown(t *testing.T) {
	ctx := context.Background()
	if _, err := Open(ctx, "sqlite", "x", model.StoreConfig{}); err == nil {
		t.Error("expected error for unknown sink")
	}
	if _, err := Open(ctx, "mongo", "x", model.StoreConfig{}); err == nil {
		t.Error("expected error for mongo without uri")
	}
	if _, err := Open(ctx, "postgres", "x", model.StoreConfig{}); err == nil {
		t.Error("expected error for postgres without dsn")
	}
}

type countingSink struct{ writes, closes int }

func (c *countingSink) Write(context.Context, []model.Record) error { c.writes++; return nil }
func (c *countingSink) Close() error                                  { c.closes++; return nil }

func TestMulti(t *testing.T) {
	a, b := &countingSink{}, &countingSink{}
	m := Multi{a, b}
	_ = m.Write(context.Background(), page)
	_ = m.Close()
	if a.writes != 1 || b.writes != 1 || a.closes != 1 || b.closes != 1 {
		t.Errorf("a=%+v b=%+v", a, b)
	}
}
