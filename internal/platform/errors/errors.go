package apperrors

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidConfig       = errors.New("invalid config")
	ErrInvalidProfile      = errors.New("invalid profile")
	ErrInvalidEvent        = errors.New("invalid event")
	ErrNotFound            = errors.New("not found")
	ErrSessionClosed       = errors.New("session closed")
	ErrPersistence         = errors.New("persistence failure")
	ErrNoActiveSession     = errors.New("no active session")
	ErrActiveSessionExists = errors.New("active session already exists")
	ErrNoActiveProfile     = errors.New("no active profile")
)

// PersistenceError wraps a store failure. The in-memory result that
// accompanies it is still authoritative; callers may retry the save.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return "persistence failure: " + e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}
