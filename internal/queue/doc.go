// Package queue persists batches and their media items in SQLite and exposes
// helpers for driving the item lifecycle.
//
// The Store manages database connections, schema initialization, stats queries,
// heartbeat tracking, stuck-item recovery, and status transitions that mirror
// the public workflow enum. Items capture taxonomy attributes, planned naming,
// tag bundles, progress, and review flags as raw JSON columns so stages can
// coordinate without the queue importing domain packages.
//
// The manifest_entries table is the one append-only surface: every item that
// reaches a terminal status gets a new row, and retries append rather than
// rewrite, so the manifest doubles as an audit trail.
//
// Treat this package as the single source of truth for queue semantics; when you
// add new statuses or columns, update schema.sql and bump schemaVersion.
package queue
