package wingadmin

import (
	"errors"
	"fmt"
)

// Common errors returned by the wingadmin client.
var (
	// ErrUnauthenticated is returned when a mutating operation is attempted
	// without a credential. Never auto-retried; the caller must log in.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrNotFound is returned when a document or blob is absent from the
	// remote store.
	ErrNotFound = errors.New("document not found")

	// ErrVersionConflict is returned when a tagged write is rejected because
	// the remote document changed since the tag was read. Transient; the
	// gateway retries it internally.
	ErrVersionConflict = errors.New("stale version tag")

	// ErrWingNotFound is returned when a wing ID does not exist in the
	// current snapshot.
	ErrWingNotFound = errors.New("wing not found")

	// ErrManufacturerNotFound is returned when a manufacturer ID does not
	// exist in the current snapshot.
	ErrManufacturerNotFound = errors.New("manufacturer not found")

	// ErrCatalogNotLoaded is returned when a mutation is attempted before
	// the catalog document has been loaded.
	ErrCatalogNotLoaded = errors.New("catalog not loaded")
)

// IntegrityError is returned when a proposed change would violate
// referential integrity. Rejected locally before any network call.
// Extractable via errors.As().
type IntegrityError struct {
	Entity  string // "wing" or "manufacturer"
	ID      string
	Message string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity: %s %q: %s", e.Entity, e.ID, e.Message)
}

// TransportError is returned when a remote API call fails at the network or
// HTTP layer. Extractable via errors.As(). Supports Unwrap().
type TransportError struct {
	Operation  string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("github: %s failed (status %d): %v", e.Operation, e.StatusCode, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// SaveError is the terminal failure after the write retry budget is
// exhausted. It triggers rollback of the in-memory snapshot.
// Extractable via errors.As(). Supports Unwrap().
type SaveError struct {
	Attempts int
	Err      error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("save failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

// ValidationError is returned when configuration or input validation fails.
// Extractable via errors.As().
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}
