package tokenmeta

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrInvalidArgument indicates an empty value where a non-empty one is required
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnauthorized indicates the caller lacks the administrative capability
	ErrUnauthorized = errors.New("unauthorized")

	// ErrBatchTooLarge indicates a bulk request exceeds MaxBatchSize
	ErrBatchTooLarge = errors.New("batch too large")

	// ErrLengthMismatch indicates parallel bulk slices differ in length
	ErrLengthMismatch = errors.New("length mismatch")

	// ErrDocumentNotFound indicates a metadata document was not found
	ErrDocumentNotFound = errors.New("metadata document not found")

	// ErrDocumentStoreNotConfigured indicates the service was built without a document store
	ErrDocumentStoreNotConfigured = errors.New("document store not configured")
)

// TokenConfigError represents an error related to token configuration operations
type TokenConfigError struct {
	TokenID TokenID
	Op      string
	Err     error
}

func (e *TokenConfigError) Error() string {
	return fmt.Sprintf("token operation %s failed for token %s: %v", e.Op, e.TokenID, e.Err)
}

func (e *TokenConfigError) Unwrap() error {
	return e.Err
}

// DocumentError represents an error related to metadata document operations
type DocumentError struct {
	TokenID TokenID
	Key     string
	Op      string
	Err     error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("document operation %s failed for token %s (key %q): %v", e.Op, e.TokenID, e.Key, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}
