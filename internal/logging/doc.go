// Package logging assembles structured slog loggers and formatting helpers
// used across plinth components.
//
// It owns the configurable console/JSON handlers, centralizes level and
// output plumbing, and exposes attr helpers so import code tags log lines
// with session IDs, directories, and item names consistently. The package
// also provides a no-op logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape.
package logging
