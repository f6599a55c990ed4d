package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeAlreadyExists    = "ALREADY_EXISTS"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeConfiguration    = "CONFIGURATION_ERROR"
	ErrCodeProviderQuota    = "PROVIDER_QUOTA"
	ErrCodeProviderFailure  = "PROVIDER_UNAVAILABLE"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
)

// Validation errors
var (
	ErrInvalidQALogStatus   = NewDomainError(ErrCodeValidation, "invalid qa log status")
	ErrInvalidCitation      = NewDomainError(ErrCodeValidation, "invalid citation record")
	ErrInvalidFileType      = NewDomainError(ErrCodeValidation, "unsupported document file type")
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
)

// Not found errors
var (
	ErrCourseNotFound         = NewDomainError(ErrCodeNotFound, "course not found")
	ErrQALogNotFound          = NewDomainError(ErrCodeNotFound, "qa log not found")
	ErrUserNotFound           = NewDomainError(ErrCodeNotFound, "user not found")
	ErrVerifiedAnswerNotFound = NewDomainError(ErrCodeNotFound, "verified answer not found")
	ErrCourseDocumentNotFound = NewDomainError(ErrCodeNotFound, "course document not found")
)

// Authorization errors
var (
	ErrInvalidToken   = NewDomainError(ErrCodeUnauthorized, "invalid or expired token")
	ErrReviewerOnly   = NewDomainError(ErrCodeForbidden, "requires ta or instructor role")
	ErrCourseMismatch = NewDomainError(ErrCodeForbidden, "record does not belong to course")
)

// Configuration errors: fatal, never retried
var (
	ErrMissingProviderKey   = NewDomainError(ErrCodeConfiguration, "model provider api key is not configured")
	ErrEmbeddingDimension   = NewDomainError(ErrCodeConfiguration, "embedding dimension does not match configured storage dimension")
	ErrUnknownProvider      = NewDomainError(ErrCodeConfiguration, "unknown model provider")
	ErrMissingJWTSecret     = NewDomainError(ErrCodeConfiguration, "jwt secret is not configured")
	ErrMissingDatabaseURL   = NewDomainError(ErrCodeConfiguration, "database url is not configured")
	ErrInvalidEmbeddingRate = NewDomainError(ErrCodeConfiguration, "embedding rate limit must be positive")
)

// Provider errors
var (
	ErrProviderQuotaExceeded = NewDomainError(ErrCodeProviderQuota, "model provider quota exceeded, retrieval unavailable")
	ErrProviderUnavailable   = NewDomainError(ErrCodeProviderFailure, "model provider request failed")
)

// Operation errors
var (
	ErrCannotFlagReviewed  = NewDomainError(ErrCodeInvalidOperation, "reviewed qa logs cannot be flagged")
	ErrEmptyQuestion       = NewDomainError(ErrCodeValidation, "question cannot be empty")
	ErrEmptyCorrection     = NewDomainError(ErrCodeValidation, "verified answer cannot be empty")
	ErrEmptyDocumentUpload = NewDomainError(ErrCodeValidation, "uploaded document is empty")
)
