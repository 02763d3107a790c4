package ai

import "errors"

var (
	// ErrMalformedDocument indicates the model returned output that could not
	// be parsed into a CourseDocument. The raw text is carried in the wrapping
	// error's message; callers should leave the course unchanged and retry on
	// a later tick.
	ErrMalformedDocument = errors.New("malformed course document")

	// ErrEmptyResponse indicates the model returned no content at all.
	ErrEmptyResponse = errors.New("empty model response")
)
