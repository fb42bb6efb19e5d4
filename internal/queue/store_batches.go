package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewBatch creates a batch record with a fresh identifier.
func (s *Store) NewBatch(ctx context.Context, variant string, numberingEnabled bool) (*Batch, error) {
	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO batches (id, variant, numbering_enabled, created_at) VALUES (?, ?, ?, ?)`,
		id,
		variant,
		boolToInt(numberingEnabled),
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert batch: %w", err)
	}
	return s.GetBatch(ctx, id)
}

// GetBatch fetches a batch by identifier. Returns nil when absent.
func (s *Store) GetBatch(ctx context.Context, id string) (*Batch, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, variant, numbering_enabled, created_at, started_at, finished_at FROM batches WHERE id = ?`,
		id,
	)
	batch, err := scanBatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return batch, nil
}

// LatestBatch returns the most recently created batch, or nil when none exist.
func (s *Store) LatestBatch(ctx context.Context) (*Batch, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, variant, numbering_enabled, created_at, started_at, finished_at
         FROM batches ORDER BY created_at DESC, id DESC LIMIT 1`,
	)
	batch, err := scanBatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest batch: %w", err)
	}
	return batch, nil
}

// ListBatches returns all batches ordered newest first.
func (s *Store) ListBatches(ctx context.Context) ([]*Batch, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, variant, numbering_enabled, created_at, started_at, finished_at
         FROM batches ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	var batches []*Batch
	for rows.Next() {
		batch, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, batch)
	}
	return batches, rows.Err()
}

// MarkBatchStarted stamps the batch start time.
func (s *Store) MarkBatchStarted(ctx context.Context, id string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.execWithRetry(ctx, `UPDATE batches SET started_at = ? WHERE id = ?`, now, id); err != nil {
		return fmt.Errorf("mark batch started: %w", err)
	}
	return nil
}

// MarkBatchFinished stamps the batch finish time.
func (s *Store) MarkBatchFinished(ctx context.Context, id string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.execWithRetry(ctx, `UPDATE batches SET finished_at = ? WHERE id = ?`, now, id); err != nil {
		return fmt.Errorf("mark batch finished: %w", err)
	}
	return nil
}

func scanBatch(scanner interface{ Scan(dest ...any) error }) (*Batch, error) {
	var (
		id          string
		variant     sql.NullString
		numbering   sql.NullInt64
		createdRaw  sql.NullString
		startedRaw  sql.NullString
		finishedRaw sql.NullString
	)
	if err := scanner.Scan(&id, &variant, &numbering, &createdRaw, &startedRaw, &finishedRaw); err != nil {
		return nil, err
	}
	batch := &Batch{ID: id, Variant: variant.String}
	if numbering.Valid {
		batch.NumberingEnabled = numbering.Int64 != 0
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		batch.CreatedAt = created
	}
	if startedRaw.Valid {
		if started, err := parseTimeString(startedRaw.String); err == nil {
			batch.StartedAt = &started
		}
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			batch.FinishedAt = &finished
		}
	}
	return batch, nil
}
