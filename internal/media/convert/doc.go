// Package convert builds and runs the ffmpeg invocations that turn
// source product media into web deliverables: images to webp, jpg, or
// png; videos to mp4 (h264/aac) or webm (vp9/opus) with an optional
// poster frame.
//
// Argument builders are pure functions so the exact command shape is
// testable without executing anything. The Runner owns process
// execution, progress parsing, stderr summarization, and output
// verification; it reports cancellation as the context error so
// callers can tell an aborted conversion from a failed one.
package convert
