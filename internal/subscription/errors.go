package subscription

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMatch is returned when metadata search found nothing for a name.
	ErrNoMatch = errors.New("no metadata match")

	// ErrNoName is returned when a feed yields no usable series name.
	ErrNoName = errors.New("series name not found")

	// ErrAlreadySubscribed is returned when the series or its name is already known.
	ErrAlreadySubscribed = errors.New("already subscribed")
)

// CandidateError records why one discovered series could not be added.
type CandidateError struct {
	Name string
	Err  error
}

func (e *CandidateError) Error() string {
	return fmt.Sprintf("candidate %q: %v", e.Name, e.Err)
}

func (e *CandidateError) Unwrap() error {
	return e.Err
}
