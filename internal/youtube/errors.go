package youtube

import (
	"errors"
	"fmt"
)

// Credential failures are terminal for the whole enrichment phase; the
// caller falls back to count-only statistics instead of failing the run.
var (
	// ErrAPIKeyMissing means no key was configured at all.
	ErrAPIKeyMissing = errors.New("youtube: API key not configured")

	// ErrAPIKeyInvalid means the configured key is a template placeholder.
	ErrAPIKeyInvalid = errors.New("youtube: API key is a placeholder value, replace it with a real key")
)

// KeyRejectedError reports a credential the remote service refused during
// validation.
type KeyRejectedError struct {
	StatusCode int
	Detail     string
}

func (e *KeyRejectedError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("youtube: API key rejected (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("youtube: API key rejected (status %d): %s", e.StatusCode, e.Detail)
}

// BatchError records one failed enrichment batch by its index range within
// the valid ID set. Batch failures are non-fatal: the remaining batches
// still run and partial results are returned.
type BatchError struct {
	First int
	Last  int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("youtube: batch %d-%d failed: %v", e.First, e.Last, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }
