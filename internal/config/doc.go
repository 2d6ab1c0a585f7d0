// Package config loads and validates the TOML configuration shared by the
// daemon and CLI. Load resolves ~/.config/verso/config.toml or a project
// verso.toml, applies defaults for missing values, expands paths, and pulls
// API keys from the environment when the file omits them.
package config
