package reembed

import "errors"

var (
	// ErrInvalidMaxAttempts indicates a non-positive retry attempt count.
	ErrInvalidMaxAttempts = errors.New("max attempts must be greater than 0")

	// ErrInvalidBatchSize indicates a non-positive embedding batch size.
	ErrInvalidBatchSize = errors.New("batch size must be greater than 0")
)
