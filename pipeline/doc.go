// Package pipeline implements the asynchronous course enrichment pipeline.
//
// A course moves through up to three stages, detected from its field state
// each tick rather than stored: generation (topic request → course document),
// transcription (media asset → text), and indexing (combined text → vector
// collection). The Scheduler runs all stages from a single goroutine; stage
// failures leave the course's fields untouched so the next tick retries them.
package pipeline
