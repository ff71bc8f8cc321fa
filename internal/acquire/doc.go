// Package acquire turns a search term into local source audio files.
//
// The Acquirer issues one search through an injected Searcher and keeps every
// candidate that resolved to a usable file, in arrival order. Candidates that
// failed, duplicate an earlier title, or left no readable file behind are
// skipped and counted; the batch fails only when nothing usable remains.
//
// YTDLP is the production Searcher. It drives yt-dlp through go-ytdlp with a
// "ytsearchN:" query, extracting audio during download, and recovers the
// candidate list from the files left in the output directory.
package acquire
