// Package api defines the wire-format types shared by the daemon's HTTP
// server and the CLI client.
//
// Job snapshots and daemon status are translated into transport DTOs with
// snake_case JSON tags, matching the field names the web form polls
// (percent, message, done, error). Timestamps use RFC3339 with milliseconds.
//
// Client is a small HTTP client for the same endpoints, used by CLI
// commands that talk to a running daemon.
package api
