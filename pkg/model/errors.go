package model

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidIndex    = errors.New("index out of range")
	ErrInvalidRange    = errors.New("value out of range")
	ErrInvalidInstance = errors.New("invalid problem instance")
)

// IndexError reports an access outside of a grid's bounds
type IndexError struct {
	X, Y          int
	Width, Height int
}

func (err *IndexError) Error() string {
	return fmt.Sprintf("grid access (%d, %d) outside of %dx%d", err.X, err.Y, err.Width, err.Height)
}

func (err *IndexError) Unwrap() error {
	return ErrInvalidIndex
}
