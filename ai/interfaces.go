package ai

import (
	"context"

	"github.com/poiesic/courseforge/core"
)

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// CourseGenerator produces a structured course document from a topic request.
// Implementations must be thread-safe for concurrent use.
type CourseGenerator interface {
	// GenerateCourse asks the model for a complete course document. The
	// upstream response is streamed and drained internally; the caller only
	// sees the parsed result. Malformed model output is reported as an error
	// wrapping ErrMalformedDocument so the caller can leave the course
	// untouched and retry later.
	GenerateCourse(ctx context.Context, req *core.TopicRequest) (*core.CourseDocument, error)
}

// Transcriber converts one audio part into text.
// Implementations must be thread-safe for concurrent use.
type Transcriber interface {
	// TranscribePart transcribes the audio file at path and returns its text.
	TranscribePart(ctx context.Context, path string) (string, error)
}

// ChatStreamer streams model output for a conversational request as a
// sequence of deduplicated text deltas.
type ChatStreamer interface {
	// StreamChat sends the request upstream with streaming enabled and calls
	// emit for every delta that survives deduplication. It returns when the
	// upstream stream completes, when emit returns an error, or when ctx is
	// cancelled. An error from emit or the upstream connection is returned;
	// normal completion returns nil.
	StreamChat(ctx context.Context, req *ChatRequest, emit func(delta string) error) error
}

// AIProvider aggregates AI services for convenient initialization and
// lifecycle management. A provider creates and manages service instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Generator returns the course generation service.
	Generator() CourseGenerator

	// Transcriber returns the speech-to-text service.
	Transcriber() Transcriber

	// ChatStreamer returns the streaming chat service.
	ChatStreamer() ChatStreamer

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
