package aseprite

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformed is returned for structurally corrupt input: bad magic
	// numbers, truncated data, inconsistent sizes or indices.
	ErrMalformed = errors.New("aseprite: malformed file")

	// ErrUnsupported is returned for valid files that use a feature this
	// decoder does not handle.
	ErrUnsupported = errors.New("aseprite: unsupported feature")
)

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}

func unsupported(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnsupported, fmt.Sprintf(format, args...))
}
