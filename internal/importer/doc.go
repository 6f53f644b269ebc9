// Package importer drives the staged-import pipeline: scan a registered
// directory, process each candidate, stage results into the catalog, and
// hold them for review until the caller confirms or cancels.
//
// The pipeline is a single cooperative flow. The per-item loop runs
// synchronously inside StartScan, yielding to the scheduler every few
// items; only the staging writes are dispatched asynchronously, tracked,
// and joined before any phase transition that depends on their outcome.
// Exactly one session may be live at a time, and every store operation
// issued on its behalf addresses canonical identifiers resolved through
// the session's reconciliation map.
package importer
