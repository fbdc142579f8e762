// Package config loads and validates the TOML configuration file, applying
// defaults and environment fallbacks for source API keys.
package config
