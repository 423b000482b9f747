package domain

import "fmt"

// DomainError represents a domain-specific error. Sentinels below are
// wrapped with fmt.Errorf("%w", ...) to attach context, so callers match
// them with errors.Is or recover the code with errors.As.
type DomainError struct {
	Code    string
	Message string
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
	ErrCodeUnavailable      = "UNAVAILABLE"
)

// Validation errors
var (
	ErrEmptyQuestion    = NewDomainError(ErrCodeValidation, "question cannot be empty")
	ErrMissingSessionID = NewDomainError(ErrCodeValidation, "session_id is required")
	ErrInvalidTopK      = NewDomainError(ErrCodeValidation, "top_k_per_corpus must be at least 1")
)

// Startup / integrity errors. A corrupt artifact aborts startup: an index
// silently misaligned with its metadata would return wrong passages.
var (
	ErrStorageRootMissing = NewDomainError(ErrCodeInvalidOperation, "corpus storage root does not exist")
	ErrCorpusCorrupt      = NewDomainError(ErrCodeInternalError, "corpus artifact is corrupt")
)

// Availability errors
var (
	ErrAnswerNotConfigured = NewDomainError(ErrCodeUnavailable, "answer service not configured: chat model required")
)
