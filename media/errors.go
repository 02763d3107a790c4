package media

import "errors"

var (
	// ErrUnsupportedMedia indicates a source file that is neither audio nor
	// video by content type.
	ErrUnsupportedMedia = errors.New("unsupported media type")
)
