// Package config loads, normalizes, and validates the TOML configuration
// that drives a reconciliation run.
package config
