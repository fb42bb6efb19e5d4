// Package workflow drives a batch of media items through the processing
// stages with a bounded worker pool.
//
// The Manager owns the stage table (convert, name, tag, finalize), a
// process-level file lock, and the heartbeat monitor. Run plans final
// filenames for the whole batch up front on a single goroutine, then
// starts workers that atomically claim items stage by stage; per-item
// failures isolate to that item while the rest of the batch continues.
// Cancellation stops claiming immediately, grants in-flight stages a
// bounded grace period, and sweeps everything unfinished to skipped with
// manifest entries so no item is left in an indeterminate status.
//
// Add a new lifecycle stage by extending StageSet, adding the status
// pair to the queue package, and registering the lane in ConfigureStages;
// this package is the authoritative home for that coordination logic.
package workflow
