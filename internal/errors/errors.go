// Package errors provides domain-specific error types and sentinel errors
// shared by the exporter, the asset store and the HTTP layer.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrNotFound indicates a requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates the caller provided invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedImage indicates an upload is not a decodable image.
	ErrUnsupportedImage = errors.New("unsupported image")

	// ErrExportFailed indicates a document could not be captured or packaged.
	// Exports that fail produce no artifact.
	ErrExportFailed = errors.New("export failed")

	// ErrRateLimitExceeded indicates rate limit has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrAssetExpired indicates a stored asset is past its TTL.
	ErrAssetExpired = errors.New("asset expired")
)

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsInvalidInput reports whether err is or wraps ErrInvalidInput or a ValidationError.
func IsInvalidInput(err error) bool {
	var ve *ValidationError
	return errors.Is(err, ErrInvalidInput) || errors.As(err, &ve)
}

// IsRateLimitExceeded reports whether err is or wraps ErrRateLimitExceeded.
func IsRateLimitExceeded(err error) bool { return errors.Is(err, ErrRateLimitExceeded) }

// IsExportFailed reports whether err is or wraps ErrExportFailed.
func IsExportFailed(err error) bool { return errors.Is(err, ErrExportFailed) }

// ValidationError represents input validation failures.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// ExportError records which document broke an export.
type ExportError struct {
	Document string
	Err      error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s: %v", e.Document, e.Err)
}

// Is makes every ExportError match ErrExportFailed.
func (e *ExportError) Is(target error) bool {
	return target == ErrExportFailed
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// NewExportError creates a new export error.
func NewExportError(document string, err error) *ExportError {
	return &ExportError{
		Document: document,
		Err:      err,
	}
}
