package codec

import "errors"

var (
	// ErrTypeMismatch is returned at encode time when a value's shape
	// disagrees with the type it was declared as.
	ErrTypeMismatch = errors.New("abi: type mismatch")
	// ErrTruncatedData is returned at decode time when the buffer is shorter
	// than a field, offset or count requires.
	ErrTruncatedData = errors.New("abi: truncated data")
	// ErrInvalidEncoding is returned at decode time when bytes cannot
	// represent the declared type.
	ErrInvalidEncoding = errors.New("abi: invalid encoding")
	// ErrInvalidSignature is returned for malformed function names or types.
	ErrInvalidSignature = errors.New("abi: invalid signature")
)
