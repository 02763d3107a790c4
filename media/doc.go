// Package media splits uploaded audio and video assets into byte-budgeted
// parts that individually fit the transcription API's per-request size
// ceiling. Splitting is purely byte-driven over a normalized single-channel
// PCM representation; parts are not aligned on semantic boundaries.
//
// External tooling (ffmpeg/ffprobe) is reached through the Converter
// interface so the splitting logic is testable without it.
package media
