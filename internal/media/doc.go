// Package media defines the audio artifacts that flow between the mashup
// pipeline stages.
//
// A SourceFile is produced by the acquirer inside the scratch workspace; the
// trimmer derives exactly one TrimmedFile from each, carrying the same ordinal.
// Ordinals record arrival order and fix the concatenation order; nothing in
// the pipeline re-sorts them.
package media
