package solution

import (
	"errors"
	"fmt"
)

var ErrStructuralInvariant = errors.New("structural invariant violated")

// InvariantError reports that the events held by a candidate no longer add up to the events of its instance
type InvariantError struct {
	Allocated   int
	Unallocated int
	Events      int
}

func (err InvariantError) Error() string {
	return fmt.Sprintf("%v: %d allocated + %d unallocated events in a candidate of %d events",
		ErrStructuralInvariant, err.Allocated, err.Unallocated, err.Events)
}

func (err InvariantError) Unwrap() error {
	return ErrStructuralInvariant
}
