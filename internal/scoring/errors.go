package scoring

import "errors"

var (
	ErrMissingAnswer   = errors.New("step has no answer")
	ErrValueOutOfRange = errors.New("answer value out of range")
	ErrUnknownSeverity = errors.New("unknown leak severity")
	ErrInvalidInputs   = errors.New("all ROI inputs must be greater than zero")
)
