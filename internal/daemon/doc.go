// Package daemon coordinates the long-running mashup server.
//
// It wires configuration, job history storage, and the job manager into a
// single lifecycle with flock-based locking to prevent multiple instances.
// Startup housekeeping removes stale scratch workspaces, marks jobs
// interrupted by a previous crash as failed, prunes old history and logs,
// and reports failed preflight checks.
//
// The HTTP surface serves the submission form, the JSON job API, and the
// legacy progress endpoint polled by the form. Pipeline work itself lives in
// internal/workflow and internal/jobs; the daemon only owns startup,
// shutdown, and request plumbing.
package daemon
