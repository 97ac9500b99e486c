// Package config loads, normalizes, and validates upmconv configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob
// the CLI needs, so downstream code always receives sanitized paths,
// canonical log formats, and clear validation errors.
package config
