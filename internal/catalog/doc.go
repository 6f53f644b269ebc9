// Package catalog persists imported model items in SQLite and exposes the
// staging operations the import pipeline depends on.
//
// The Store manages the database connection, schema initialization, the
// registered-directory table, and item rows whose lifecycle is pending ->
// confirmed. Stage performs the idempotent upsert keyed on
// (directory, relative path) and always reports the canonical row
// identifier; ConfirmBatch and CancelBatch flip or remove rows in a single
// transaction. A lock file beside the database enforces one writer process.
//
// Treat this package as the single source of truth for staging semantics;
// when you add item fields, update schema.sql and bump schemaVersion.
package catalog
