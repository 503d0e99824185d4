package storage

import "errors"

var (
	// ErrConflict means a compare-and-swap update kept losing to concurrent writers
	ErrConflict = errors.New("storage: concurrent update conflict")
	// ErrStoreUnavailable wraps backend read and write failures
	ErrStoreUnavailable = errors.New("storage: record store unavailable")
)

const DefaultMaxRetries = 5
