package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ppiankov/medqa/internal/model"
)

const createRecordsTable = `
CREATE TABLE IF NOT EXISTS medqa_records (
    id         BIGSERIAL PRIMARY KEY,
    url        TEXT NOT NULL,
    category   TEXT NOT NULL,
    disease    TEXT NOT NULL,
    source     TEXT,
    content    TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (url, category)
)`

const upsertRecord = `
INSERT INTO medqa_records (url, category, disease, source, content)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (url, category) DO UPDATE
SET disease = EXCLUDED.disease,
    source = EXCLUDED.source,
    content = EXCLUDED.content,
    updated_at = now()`

// PostgresSink upserts records into medqa_records
type PostgresSink struct {
	pool *pgxpool.Pool
}

// NewPostgresSink connects and creates the table if missing
func NewPostgresSink(ctx context.Context, dsn string) (*PostgresSink, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, createRecordsTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}
	return &PostgresSink{pool: pool}, nil
}

// Write upserts the page's records in one transaction
func (s *PostgresSink) Write(ctx context.Context, records []model.Record) error {
	if len(records) == 0 {
		return nil
	}
	records = foldByCategory(records)
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, r := range records {
			batch.Queue(upsertRecord, r.URL, r.Category, r.Name, r.Source, r.Text)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

// Close closes the pool
func (s *PostgresSink) Close() error {
	s.pool.Close()
	return nil
}
