package memory

import "errors"

// Sentinel errors for the memory package.
// Use errors.Is to check: errors.Is(err, memory.ErrConceptNotFound)
var (
	ErrConceptNotFound = errors.New("memory: concept not found")
	ErrInvalidInput    = errors.New("memory: invalid input")
)
