package store

import "errors"

// Error kinds returned by every store implementation. Callers branch with
// errors.Is; GORM adapters wrap the driver error alongside the kind.
var (
	// ErrNotFound means the referenced record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrStoreUnavailable means a transient I/O failure; read paths may
	// retry, the triage write path must not.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrPreconditionFailed means a conditional update matched no row
	// because the record's status changed concurrently.
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrInvalidInput means the caller supplied malformed fields.
	ErrInvalidInput = errors.New("invalid input")
)
