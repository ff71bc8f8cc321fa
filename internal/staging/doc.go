// Package staging owns the per-run scratch workspaces the pipeline writes
// downloads and clips into.
//
// Each run gets a fresh mashup_* directory under the configured scratch root
// with downloads/ and trimmed/ subdirectories. Release removes it
// recursively and only logs failures. CleanStale sweeps workspaces left
// behind by crashed processes when the daemon starts.
package staging
