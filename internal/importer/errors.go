package importer

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionActive reports a scan request while another session is live.
	ErrSessionActive = errors.New("an import session is already active")
	// ErrNoSession reports confirm or cancel without a live session.
	ErrNoSession = errors.New("no active import session")
	// ErrNotReviewing reports confirm before the pipeline reached review.
	ErrNotReviewing = errors.New("session is not in the reviewing phase")
	// ErrOperation marks a store-level failure during confirm or cancel.
	// The session survives such failures so the caller may retry.
	ErrOperation = errors.New("catalog operation failed")
)

func operationError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrOperation, err)
}

// ItemError records a per-item failure surfaced to the review boundary.
type ItemError struct {
	Name string
	Err  error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e ItemError) Unwrap() error { return e.Err }
