// Package config loads, normalizes, and validates WhisperFlow's TOML
// configuration.
package config
