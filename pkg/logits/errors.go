package logits

import "errors"

var (
	ErrLengthMismatch     = errors.New("buffer length mismatch")
	ErrEmptyInput         = errors.New("empty input buffer")
	ErrInvalidTemperature = errors.New("temperature must be positive")
	ErrInvalidTopK        = errors.New("top-k must be at least 1")
	ErrInvalidTopP        = errors.New("top-p must be in (0, 1]")
	ErrDegenerateVector   = errors.New("vector has zero norm")
	ErrNumericOverflow    = errors.New("numeric overflow")
)
