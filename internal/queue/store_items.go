package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// AddItem appends a media file to a batch. The ordinal continues from the
// batch's current maximum so enqueue order is preserved.
func (s *Store) AddItem(ctx context.Context, batchID, sourcePath string, kind MediaKind, attributesJSON string) (*Item, error) {
	ctx = ensureContext(ctx)
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	var inserted int64
	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin add item: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		var next int
		row := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(ordinal) + 1, 0) FROM items WHERE batch_id = ?`, batchID)
		if err := row.Scan(&next); err != nil {
			return fmt.Errorf("next ordinal: %w", err)
		}

		res, err := tx.ExecContext(
			ctx,
			`INSERT INTO items (
                batch_id, ordinal, source_path, media_kind, status, attributes_json,
                created_at, updated_at, progress_percent
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			batchID,
			next,
			sourcePath,
			string(kind),
			StatusPending,
			nullableString(attributesJSON),
			timestamp,
			timestamp,
			0.0,
		)
		if err != nil {
			return fmt.Errorf("insert item: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit add item: %w", err)
		}
		inserted = id
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, inserted)
}

// GetByID fetches an item by identifier. Returns nil when absent.
func (s *Store) GetByID(ctx context.Context, id int64) (*Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// Update persists changes to an existing item.
func (s *Store) Update(ctx context.Context, item *Item) error {
	if item == nil {
		return errors.New("item is nil")
	}
	item.UpdatedAt = time.Now().UTC()
	_, err := s.execWithRetry(
		ctx,
		`UPDATE items
         SET batch_id = ?, ordinal = ?, source_path = ?, media_kind = ?, source_info_json = ?, status = ?,
             attributes_json = ?, naming_json = ?, bundle_json = ?, metadata_variant = ?,
             degraded = ?, degraded_reason = ?, staged_path = ?, output_path = ?, poster_path = ?,
             error_message = ?, error_kind = ?, needs_review = ?, review_reason = ?,
             progress_stage = ?, progress_percent = ?, progress_message = ?,
             last_heartbeat = ?, updated_at = ?
         WHERE id = ?`,
		item.BatchID,
		item.Ordinal,
		item.SourcePath,
		string(item.MediaKind),
		nullableString(item.SourceInfoJSON),
		item.Status,
		nullableString(item.AttributesJSON),
		nullableString(item.NamingJSON),
		nullableString(item.BundleJSON),
		nullableString(item.MetadataVariant),
		boolToInt(item.Degraded),
		nullableString(item.DegradedReason),
		nullableString(item.StagedPath),
		nullableString(item.OutputPath),
		nullableString(item.PosterPath),
		nullableString(item.ErrorMessage),
		nullableString(item.ErrorKind),
		boolToInt(item.NeedsReview),
		nullableString(item.ReviewReason),
		nullableString(item.ProgressStage),
		item.ProgressPercent,
		nullableString(item.ProgressMessage),
		nullableTime(item.LastHeartbeat),
		item.UpdatedAt.Format(time.RFC3339Nano),
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// UpdateProgress persists only the progress columns. The heartbeat column is
// left alone so a concurrent UpdateHeartbeat is never clobbered by a stale
// in-memory value.
func (s *Store) UpdateProgress(ctx context.Context, item *Item) error {
	if item == nil {
		return errors.New("item is nil")
	}
	item.UpdatedAt = time.Now().UTC()
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE items
         SET progress_stage = ?, progress_percent = ?, progress_message = ?, updated_at = ?
         WHERE id = ?`,
		nullableString(item.ProgressStage),
		item.ProgressPercent,
		nullableString(item.ProgressMessage),
		item.UpdatedAt.Format(time.RFC3339Nano),
		item.ID,
	); err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return nil
}

// ItemsByBatch returns a batch's items in ordinal order.
func (s *Store) ItemsByBatch(ctx context.Context, batchID string) ([]*Item, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+itemColumns+` FROM items WHERE batch_id = ? ORDER BY ordinal`,
		batchID,
	)
	if err != nil {
		return nil, fmt.Errorf("query batch items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ItemsByStatus returns items matching a status ordered by batch and ordinal.
func (s *Store) ItemsByStatus(ctx context.Context, status Status) ([]*Item, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+itemColumns+` FROM items WHERE status = ? ORDER BY batch_id, ordinal`,
		status,
	)
	if err != nil {
		return nil, fmt.Errorf("query by status: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// List returns items filtered by status set (or all items when no status is
// provided), ordered by batch and ordinal.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Item, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + itemColumns + ` FROM items`
	orderClause := ` ORDER BY batch_id, ordinal`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		query := baseQuery + ` WHERE status IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// NextForStatuses returns the lowest-ordinal item matching any of the
// provided statuses within a batch. Pass an empty batch ID to search across
// batches in creation order.
func (s *Store) NextForStatuses(ctx context.Context, batchID string, statuses ...Status) (*Item, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := makePlaceholders(len(statuses))
	args := make([]any, 0, len(statuses)+1)
	query := `SELECT ` + itemColumns + ` FROM items WHERE status IN (` + placeholders + `)`
	for _, status := range statuses {
		args = append(args, status)
	}
	if batchID != "" {
		query += ` AND batch_id = ?`
		args = append(args, batchID)
	}
	query += ` ORDER BY batch_id, ordinal LIMIT 1`

	row := s.db.QueryRowContext(ctx, query, args...)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ClaimNext atomically transitions the lowest-ordinal item with status from
// to status to and returns it. Returns nil when no item is claimable.
// Concurrent workers calling ClaimNext never receive the same item.
func (s *Store) ClaimNext(ctx context.Context, batchID string, from, to Status) (*Item, error) {
	ctx = ensureContext(ctx)
	var claimed int64

	err := retryOnBusy(ctx, func() error {
		claimed = 0
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin claim: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		query := `SELECT id FROM items WHERE status = ?`
		args := []any{from}
		if batchID != "" {
			query += ` AND batch_id = ?`
			args = append(args, batchID)
		}
		query += ` ORDER BY batch_id, ordinal LIMIT 1`

		var id int64
		row := tx.QueryRowContext(ctx, query, args...)
		if err := row.Scan(&id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("select claimable: %w", err)
		}

		now := time.Now().UTC().Format(time.RFC3339Nano)
		res, err := tx.ExecContext(
			ctx,
			`UPDATE items SET status = ?, last_heartbeat = ?, updated_at = ? WHERE id = ? AND status = ?`,
			to, now, now, id, from,
		)
		if err != nil {
			return fmt.Errorf("claim item: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("claim rows affected: %w", err)
		}
		if affected == 0 {
			return nil
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit claim: %w", err)
		}
		claimed = id
		return nil
	})
	if err != nil {
		return nil, err
	}
	if claimed == 0 {
		return nil, nil
	}
	return s.GetByID(ctx, claimed)
}

// ReassignOrdinals rewrites a batch's ordering to match the given item ID
// sequence and clears any cached naming results so names are planned again
// under the new order. The caller validates that ids covers the batch
// exactly.
func (s *Store) ReassignOrdinals(ctx context.Context, batchID string, ids []int64) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin reorder: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		now := time.Now().UTC().Format(time.RFC3339Nano)
		for ordinal, id := range ids {
			res, err := tx.ExecContext(
				ctx,
				`UPDATE items SET ordinal = ?, naming_json = NULL, updated_at = ? WHERE id = ? AND batch_id = ?`,
				ordinal, now, id, batchID,
			)
			if err != nil {
				return fmt.Errorf("reorder item %d: %w", id, err)
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("reorder rows affected: %w", err)
			}
			if affected != 1 {
				return fmt.Errorf("reorder item %d: not part of batch %s", id, batchID)
			}
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit reorder: %w", err)
		}
		return nil
	})
}

// Remove deletes an item by identifier.
func (s *Store) Remove(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}
