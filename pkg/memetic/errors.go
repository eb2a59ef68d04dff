package memetic

import "errors"

var (
	ErrDegenerateInput = errors.New("degenerate input")
	ErrInvalidConfig   = errors.New("invalid engine configuration")
)
