// Package workflow runs the mashup pipeline for a single request.
//
// The Coordinator validates the Request, takes a private scratch workspace,
// and drives the acquire, trim, and merge stages strictly in sequence. It
// reports fixed progress checkpoints to an optional Observer and releases the
// workspace on every exit path. The first stage error ends the run and is
// returned as a *StageError naming the state the pipeline was in.
//
// Stages are injected as small interfaces so callers can substitute search
// backends or codecs; NewDefault wires the yt-dlp searcher and ffmpeg codec
// from configuration.
package workflow
