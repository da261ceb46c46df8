package ports

import "errors"

var (
	// ErrLockTimeout is returned by storage when a lock wait exceeds its bound.
	ErrLockTimeout = errors.New("lock wait timeout")
	// ErrDuplicate is returned by storage on a unique-key conflict.
	ErrDuplicate = errors.New("duplicate key")
	// ErrLockHeld is returned when a cluster lock is owned by someone else.
	ErrLockHeld = errors.New("lock held by another owner")
)
