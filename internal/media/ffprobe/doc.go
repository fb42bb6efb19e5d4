// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// This package has no woodway-specific dependencies and could be
// extracted as a standalone library.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video stream properties
//   - Format: container-level metadata (duration, size, bitrate)
//
// Primary entry point:
//   - Inspect: executes ffprobe and returns parsed Result
//
// Helper methods on Result provide convenient access to dimensions,
// frame rate, stream counts, and duration parsing. Still images probe
// as a single video stream, so the same helpers serve both media kinds.
package ffprobe
