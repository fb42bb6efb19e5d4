// Package logging wires slog with woodway conventions: a console handler
// that surfaces batch, item, and stage context in the header line, a JSON
// handler for machine-readable logs, shared field-name constants, and
// helpers for progress sampling and log retention.
package logging
