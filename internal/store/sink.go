// Package store persists scraped records. Every sink receives one page's
// records per Write call, from a single goroutine.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/medqa/internal/model"
)

// Sink receives the records of one page at a time
type Sink interface {
	Write(ctx context.Context, records []model.Record) error
	Close() error
}

// Open creates the sink named by kind
func Open(ctx context.Context, kind, output string, cfg model.StoreConfig) (Sink, error) {
	switch strings.ToLower(kind) {
	case "", "jsonl":
		return NewJSONLSink(output)
	case "csv":
		return NewCSVSink(output)
	case "json":
		return NewJSONArraySink(output), nil
	case "mongo", "mongodb":
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("mongo sink requires store.mongo_uri")
		}
		return NewMongoSink(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	case "postgres", "pg":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres sink requires store.postgres_dsn")
		}
		return NewPostgresSink(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown sink: %s (supported: jsonl, csv, json, mongo, postgres)", kind)
	}
}

// Multi fans records out to several sinks
type Multi []Sink

// Write writes to every sink, stopping at the first error
func (m Multi) Write(ctx context.Context, records []model.Record) error {
	for _, s := range m {
		if err := s.Write(ctx, records); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink, returning the first error
func (m Multi) Close() error {
	var first error
	for _, s := range m {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// foldByCategory merges records sharing (url, category) into the first
// one, joining text by newline, so keyed sinks keep every section.
func foldByCategory(records []model.Record) []model.Record {
	type key struct{ url, category string }
	index := make(map[key]int, len(records))
	out := make([]model.Record, 0, len(records))
	for _, r := range records {
		k := key{r.URL, r.Category}
		if i, ok := index[k]; ok {
			out[i].Text += "\n" + r.Text
			continue
		}
		index[k] = len(out)
		out = append(out, r)
	}
	return out
}
