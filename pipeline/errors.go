package pipeline

import "errors"

var (
	// ErrCourseRepositoryRequired is returned when a course repository is not provided.
	ErrCourseRepositoryRequired = errors.New("course repository required")

	// ErrVectorRepositoryRequired is returned when a vector repository is not provided.
	ErrVectorRepositoryRequired = errors.New("vector repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrChunkerRequired is returned when a media chunker is not provided.
	ErrChunkerRequired = errors.New("media chunker required")

	// ErrNothingToIndex is returned when a course has no text to index.
	ErrNothingToIndex = errors.New("course has no text to index")

	// ErrInvalidMaxAttempts is returned when retry is configured with a
	// non-positive attempt count.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")
)
