// Package logging assembles structured slog loggers and formatting helpers used
// across lyricrater.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with run identifiers, row numbers, and provider names. The package
// also provides a no-op logger for tests and wiring code that cannot fail.
//
// Logs default to stderr so stdout stays free for result tables and JSON.
package logging
