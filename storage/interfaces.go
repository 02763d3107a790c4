package storage

import (
	"context"

	"github.com/poiesic/courseforge/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// CourseRepository provides operations for managing courses.
type CourseRepository interface {
	Repository
	// AddCourses adds one or more courses to storage.
	// For courses with ID=0, generates new IDs from sequence.
	// Sets InsertedAt timestamp if not already set.
	// Returns the courses with generated IDs and timestamps populated.
	AddCourses(ctx context.Context, courses ...*core.Course) ([]*core.Course, error)

	// UpdateCourses updates existing courses.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any course doesn't exist.
	UpdateCourses(ctx context.Context, courses ...*core.Course) ([]*core.Course, error)

	// DeleteCourses removes courses by their IDs, along with their vector
	// chunks. Returns ErrNotFound if any course doesn't exist.
	DeleteCourses(ctx context.Context, ids ...core.ID) error

	// GetCourse retrieves a single course by ID.
	// Returns ErrNotFound if the course doesn't exist.
	GetCourse(ctx context.Context, id core.ID) (*core.Course, error)

	// ListCourses retrieves all courses ordered by ID.
	ListCourses(ctx context.Context) ([]*core.Course, error)

	// ListPendingCourses retrieves courses that still have an enrichment
	// stage to run, ordered by ID.
	ListPendingCourses(ctx context.Context) ([]*core.Course, error)
}

// VectorRepository provides operations for managing vector chunks.
type VectorRepository interface {
	Repository
	// ReplaceChunks atomically replaces all chunks belonging to a course
	// with the given set. Chunks with ID=0 get content-based IDs.
	ReplaceChunks(ctx context.Context, courseID core.ID, chunks ...*core.VectorChunk) ([]*core.VectorChunk, error)

	// DeleteChunks removes all chunks belonging to a course. Deleting
	// chunks for a course with no chunks is not an error.
	DeleteChunks(ctx context.Context, courseID core.ID) error

	// CountChunks reports how many chunks a course has.
	CountChunks(ctx context.Context, courseID core.ID) (int, error)

	// FindSimilar finds chunks of the given course similar to the vector.
	// Returns matches with similarity >= minSimilarity, up to limit results,
	// ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, courseID core.ID, vector []float32, minSimilarity float32, limit int) ([]*core.RetrievalMatch, error)
}
