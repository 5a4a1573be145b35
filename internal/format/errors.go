package format

import "errors"

// ErrTruncated indicates a slot would extend past the end of the arena.
var ErrTruncated = errors.New("format: truncated slot")
