package posts

import "errors"

var (
	// ErrNotAuthenticated is returned by operations that require a signed-in
	// user when called with an empty viewer id.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrPostNotFound is returned when an operation references a story that
	// does not exist.
	ErrPostNotFound = errors.New("post not found")

	// ErrImageURLRequired is returned by CreatePost when no uploaded image
	// URL was supplied.
	ErrImageURLRequired = errors.New("image url required")
)
