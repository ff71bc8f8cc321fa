// Package audio is the codec capability the trimmer and merger depend on.
//
// Codec abstracts the three operations the pipeline needs: measuring a file,
// writing the leading window of a file to a new path, and concatenating files
// in order. FFmpeg implements Codec by shelling out to ffmpeg and ffprobe; the
// output is always a single constant-bitrate MP3 stream.
package audio
