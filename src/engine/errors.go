package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrOrderNotFound is returned when an order id is not in the book.
	// A double cancel or a stale id from a caller surfaces this way.
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidSize is returned for a non-positive order size. An amend
	// to zero must use cancel instead.
	ErrInvalidSize = errors.New("size must be greater than zero")

	// ErrInvalidDepth is returned for a non-positive level count on a
	// formatted depth query.
	ErrInvalidDepth = errors.New("levels must be greater than zero")

	// ErrUnsupportedStyle is returned when no registered plugin handles
	// the requested order style.
	ErrUnsupportedStyle = errors.New("unsupported order style")
)

// InvariantError reports internal book corruption: a price mismatch between
// an order and its level, or a level missing where one must exist. It is
// never expected under correct operation and is not recoverable.
type InvariantError struct {
	Reason string
}

func (e *InvariantError) Error() string {
	return "order book invariant violated: " + e.Reason
}

func invariantErrorf(format string, args ...any) error {
	return &InvariantError{Reason: fmt.Sprintf(format, args...)}
}
