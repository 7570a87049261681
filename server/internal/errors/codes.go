package errors

import (
	"fmt"
)

// ErrorCode represents a specific error type for recommendation operations.
type ErrorCode string

const (
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeEmbeddingUnavailable indicates the embedding backend is not reachable
	// or misconfigured. Distinct from an empty result set.
	ErrCodeEmbeddingUnavailable ErrorCode = "EMBEDDING_UNAVAILABLE"
	// ErrCodeStoreFailure indicates the catalog snapshot store failed.
	ErrCodeStoreFailure ErrorCode = "STORE_FAILURE"
	// ErrCodeContextCanceled indicates the operation was canceled.
	ErrCodeContextCanceled ErrorCode = "CONTEXT_CANCELED"
	// ErrCodeInternal indicates an unclassified internal failure.
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// CoreError represents a structured error for recommendation operations.
type CoreError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *CoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *CoreError) Unwrap() error {
	return e.Cause
}

// GetCode returns the error code.
func (e *CoreError) GetCode() ErrorCode {
	return e.Code
}

// Convenience constructors for common error types.

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *CoreError {
	return &CoreError{Code: ErrCodeInvalidArgument, Message: msg}
}

// InvalidArgumentf creates an invalid argument error with formatting.
func InvalidArgumentf(format string, args ...any) *CoreError {
	return &CoreError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// EmbeddingUnavailable creates an embedding unavailable error.
func EmbeddingUnavailable(msg string, cause error) *CoreError {
	return &CoreError{Code: ErrCodeEmbeddingUnavailable, Message: msg, Cause: cause}
}

// StoreFailure creates a store failure error.
func StoreFailure(msg string, cause error) *CoreError {
	return &CoreError{Code: ErrCodeStoreFailure, Message: msg, Cause: cause}
}

// ContextCanceled creates a context canceled error.
func ContextCanceled(cause error) *CoreError {
	return &CoreError{Code: ErrCodeContextCanceled, Message: "operation canceled", Cause: cause}
}

// Wrap wraps an existing error with a code and message.
func Wrap(cause error, code ErrorCode, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg, Cause: cause}
}

// IsCode checks if an error is of a specific code.
func IsCode(err error, code ErrorCode) bool {
	if coreErr, ok := err.(*CoreError); ok {
		return coreErr.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
// Returns the provided default code if the error is not a CoreError.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	if coreErr, ok := err.(*CoreError); ok {
		return coreErr.Code
	}
	return defaultCode
}
