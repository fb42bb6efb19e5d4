package queue

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ManifestEntry is one append-only record of an item reaching a terminal
// status. Retried items append a fresh entry rather than rewriting history.
type ManifestEntry struct {
	ID               int64
	BatchID          string
	ItemID           int64
	Ordinal          int
	SourcePath       string
	OriginalFilename string
	SourceInfoJSON   string
	NewFilename      string
	OutputPath       string
	PosterPath       string
	Status           Status
	MetadataVariant  string
	Degraded         bool
	DegradedReason   string
	BundleJSON       string
	ErrorKind        string
	ErrorMessage     string
	CompletedAt      time.Time
}

const manifestColumns = "id, batch_id, item_id, ordinal, source_path, original_filename, source_info_json, new_filename, output_path, poster_path, status, metadata_variant, degraded, degraded_reason, bundle_json, error_kind, error_message, completed_at"

// AppendManifest records an item's terminal outcome. Entries are never
// updated or deleted.
func (s *Store) AppendManifest(ctx context.Context, entry *ManifestEntry) error {
	if entry == nil {
		return fmt.Errorf("manifest entry is nil")
	}
	if entry.CompletedAt.IsZero() {
		entry.CompletedAt = time.Now().UTC()
	}
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO manifest_entries (
            batch_id, item_id, ordinal, source_path, original_filename, source_info_json,
            new_filename, output_path, poster_path, status, metadata_variant, degraded,
            degraded_reason, bundle_json, error_kind, error_message, completed_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.BatchID,
		entry.ItemID,
		entry.Ordinal,
		entry.SourcePath,
		entry.OriginalFilename,
		nullableString(entry.SourceInfoJSON),
		nullableString(entry.NewFilename),
		nullableString(entry.OutputPath),
		nullableString(entry.PosterPath),
		entry.Status,
		nullableString(entry.MetadataVariant),
		boolToInt(entry.Degraded),
		nullableString(entry.DegradedReason),
		nullableString(entry.BundleJSON),
		nullableString(entry.ErrorKind),
		nullableString(entry.ErrorMessage),
		entry.CompletedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append manifest entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("manifest entry id: %w", err)
	}
	entry.ID = id
	return nil
}

// ManifestForBatch returns a batch's manifest entries in ordinal order.
// Entries for the same item appear oldest first.
func (s *Store) ManifestForBatch(ctx context.Context, batchID string) ([]*ManifestEntry, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+manifestColumns+` FROM manifest_entries WHERE batch_id = ? ORDER BY ordinal, id`,
		batchID,
	)
	if err != nil {
		return nil, fmt.Errorf("query manifest: %w", err)
	}
	defer rows.Close()

	var entries []*ManifestEntry
	for rows.Next() {
		entry, err := scanManifestEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func scanManifestEntry(scanner interface{ Scan(dest ...any) error }) (*ManifestEntry, error) {
	var (
		id           int64
		batchID      string
		itemID       int64
		ordinal      int
		sourcePath   string
		originalName string
		sourceInfo   sql.NullString
		newFilename  sql.NullString
		outputPath   sql.NullString
		posterPath   sql.NullString
		statusStr    string
		variant      sql.NullString
		degraded     int
		degradedWhy  sql.NullString
		bundleJSON   sql.NullString
		errorKind    sql.NullString
		errorMessage sql.NullString
		completedRaw string
	)
	if err := scanner.Scan(
		&id,
		&batchID,
		&itemID,
		&ordinal,
		&sourcePath,
		&originalName,
		&sourceInfo,
		&newFilename,
		&outputPath,
		&posterPath,
		&statusStr,
		&variant,
		&degraded,
		&degradedWhy,
		&bundleJSON,
		&errorKind,
		&errorMessage,
		&completedRaw,
	); err != nil {
		return nil, fmt.Errorf("scan manifest entry: %w", err)
	}

	entry := &ManifestEntry{
		ID:               id,
		BatchID:          batchID,
		ItemID:           itemID,
		Ordinal:          ordinal,
		SourcePath:       sourcePath,
		OriginalFilename: originalName,
		SourceInfoJSON:   sourceInfo.String,
		NewFilename:      newFilename.String,
		OutputPath:       outputPath.String,
		PosterPath:       posterPath.String,
		Status:           Status(statusStr),
		MetadataVariant:  variant.String,
		Degraded:         degraded != 0,
		DegradedReason:   degradedWhy.String,
		BundleJSON:       bundleJSON.String,
		ErrorKind:        errorKind.String,
		ErrorMessage:     errorMessage.String,
	}
	if completed, err := parseTimeString(completedRaw); err == nil {
		entry.CompletedAt = completed
	}
	return entry, nil
}
