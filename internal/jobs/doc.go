// Package jobs runs mashup requests in the background for the daemon.
//
// Submit validates a Submission, records it in the job store, and returns a
// Handle immediately. Each Handle owns its own progress cell, so pollers
// look jobs up by ID and concurrent jobs never share state. A semaphore caps
// how many pipelines run at once; queued jobs report that they are waiting.
// Job contexts are detached from the submitting request, so a started job
// always runs to completion. Successful mashups are zipped and mailed when
// delivery is enabled.
package jobs
