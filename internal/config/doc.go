// Package config loads, validates, and normalizes plinth configuration.
//
// Configuration lives in a TOML file (default ~/.config/plinth/config.toml)
// and is organized into sections mirroring the subsystems that consume them.
// Load applies defaults, environment fallbacks, tilde expansion, and
// validation so callers receive a ready-to-use Config or a descriptive error.
package config
