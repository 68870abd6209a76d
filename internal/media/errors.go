package media

import "errors"

var (
	// ErrNotFound is returned when the input path does not exist.
	ErrNotFound = errors.New("media: input not found")

	// ErrUnsupportedFormat is returned when the input extension is not in the allowlist.
	ErrUnsupportedFormat = errors.New("media: unsupported format")

	// ErrSinkOpen is returned when a video or image output cannot be opened.
	ErrSinkOpen = errors.New("media: sink open failed")
)
