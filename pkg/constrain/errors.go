package constrain

import "errors"

var (
	ErrConstraintViolation = errors.New("token violates constraint")
	ErrConstraintTerminal  = errors.New("constraint already in terminal state")
	ErrUnsupportedSchema   = errors.New("unsupported schema construct")
)
