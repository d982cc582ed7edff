// Package config handles configuration for the delg command line.
// It layers embedded defaults, an optional TOML file, DELG_* environment
// variables and flag overrides, in that order.
package config
