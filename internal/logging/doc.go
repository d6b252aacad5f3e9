// Package logging wires log/slog with a human-readable console handler, a
// JSON handler, and helpers for component loggers and context-derived fields.
package logging
