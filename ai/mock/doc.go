// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.CourseGenerator,
// ai.Transcriber, ai.ChatStreamer, and ai.AIProvider for use in unit tests. The
// mocks allow tests to run without external AI service dependencies and enable
// controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	embeddings, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	mockEmbedder := mock.NewMockEmbedder()
//	mockEmbedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return []float32{0.1, 0.2, 0.3}, nil
//	}
//
//	// Check call counts
//	count := mockEmbedder.CallCount()
//
// # Default Behavior
//
// The mock implementations provide sensible defaults:
//
//   - MockEmbedder: Returns deterministic vectors based on text hash
//   - MockGenerator: Returns a small valid course document for the topic
//   - MockTranscriber: Returns a fixed transcript naming the part file
//   - MockChatStreamer: Emits the last user message back as a single delta
//   - MockProvider: Aggregates all four mock services
package mock
