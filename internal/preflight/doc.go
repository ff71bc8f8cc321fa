// Package preflight provides readiness checks for the filesystem paths,
// external binaries, and mail relay mashup depends on.
//
// The daemon runs RunAll at startup and logs failures as warnings; the CLI
// "mashup deps" command prints CheckSystemDeps as a table. Checks for
// optional features are skipped when the feature is disabled.
package preflight
