// Package queue persists mashup job records in SQLite.
//
// The Store keeps one row per submitted job: the request parameters, the
// delivery recipient, the last reported progress, and the terminal outcome.
// Live progress is owned by the in-memory job handles; rows are written at
// state transitions so job history survives daemon restarts. Jobs that were
// in flight when the process died are marked failed on the next start.
//
// Schema changes bump schemaVersion in schema.go; users delete the database
// to adopt the new schema.
package queue
