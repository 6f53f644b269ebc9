// Package main hosts the plinth CLI entrypoint and command graph.
//
// The Cobra-based command tree surfaces directory registration, interactive
// imports with review, catalog listings, the filesystem watcher, and
// configuration scaffolding. It centralizes configuration resolution, store
// access, and logger setup so subcommands can focus on user experience.
//
// The import pipeline itself lives in internal/importer; commands here only
// drive it and render its output.
package main
