package cart

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidOperation is returned when an operation's preconditions are
	// violated. Nothing is mutated or persisted.
	ErrInvalidOperation = errors.New("invalid cart operation")

	// ErrNotReady is returned for mutations issued before Hydrate completed
	ErrNotReady = errors.New("cart store is not hydrated")
)

// PersistOp names the storage operation that failed
type PersistOp string

const (
	OpRead  PersistOp = "read"
	OpWrite PersistOp = "write"
)

// PersistenceError reports a failed round trip to the key-value store. It
// never means the in-memory cart was rolled back.
type PersistenceError struct {
	Op  PersistOp
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("cart persistence %s failed for key %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsPersistenceError reports whether err is a persistence failure and returns it
func IsPersistenceError(err error) (*PersistenceError, bool) {
	var perr *PersistenceError
	if errors.As(err, &perr) {
		return perr, true
	}
	return nil, false
}

func invalidOperation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidOperation, fmt.Sprintf(format, args...))
}
