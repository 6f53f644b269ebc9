// Package scanner enumerates candidate model files under an import root.
//
// Scan walks the tree in deterministic order and materializes the full
// candidate list eagerly. Entries that cannot be read are skipped and
// reported; a partial tree never aborts the scan.
package scanner
