// Package config loads, normalizes, and validates mashup configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// MASHUP_SMTP_PASSWORD. The Config type centralizes every knob the CLI and the
// daemon need so scratch/output directories, external binaries, and delivery
// credentials are discovered in one pass.
package config
