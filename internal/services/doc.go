// Package services holds the error taxonomy and context plumbing shared by the
// mashup pipeline stages and the surfaces that call them.
//
// Stage code tags failures with one of the sentinel markers through Wrap so the
// CLI, the job manager, and the HTTP API can classify an error with errors.Is
// without string matching. Context helpers carry job, stage, and request
// identifiers into structured logs.
package services
