package storage

import "errors"

// Standard storage errors.
//
// Adapters wrap these with context so callers can branch with errors.Is
// while logs retain backend detail:
//
//	if err != nil {
//	    return fmt.Errorf("copy %s: %w", src, storage.ErrStorageIO)
//	}
var (
	// ErrStorageIO indicates a backend failure: permission denied, network
	// error, disk full. The client sees a generic message; the wrapped
	// detail is for server-side logs only.
	ErrStorageIO = errors.New("storage I/O failure")

	// ErrNameExhausted indicates the "name copy N" collision loop ran out
	// of attempts without finding a free name.
	ErrNameExhausted = errors.New("no free name available")

	// ErrNotSupported indicates the backend cannot perform the operation.
	ErrNotSupported = errors.New("operation not supported")
)
