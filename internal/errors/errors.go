package errors

import "fmt"

// ErrorCode represents an engine error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrConflict       ErrorCode = "CONFLICT"        // 409
	ErrNoBrowser      ErrorCode = "NO_BROWSER"      // 503
	ErrStorage        ErrorCode = "STORAGE"         // 500
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// EngineError represents a structured error with code, status, and details.
// Errors of this type cross the messaging boundary as `{error: {...}}`
// payloads; they are never fatal to the process.
type EngineError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *EngineError {
	return &EngineError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a workspace id absent from the registry.
func NewNotFound(id string) *EngineError {
	return &EngineError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("workspace not found: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewConflict creates a 409 error for general conflicts.
func NewConflict(msg string) *EngineError {
	return &EngineError{
		Code:    ErrConflict,
		Status:  409,
		Message: msg,
	}
}

// NewNoBrowser creates a 503 error for operations that need a live browser
// connection when none is attached.
func NewNoBrowser() *EngineError {
	return &EngineError{
		Code:    ErrNoBrowser,
		Status:  503,
		Message: "no browser is connected to the host bridge",
	}
}

// NewStorage creates a 500 error for a failed durable-store read or write.
// The failure is recoverable: in-memory state is never mutated when the
// corresponding persisted write failed.
func NewStorage(err error) *EngineError {
	msg := "storage failure"
	if err != nil {
		msg = fmt.Sprintf("storage failure: %v", err)
	}
	return &EngineError{
		Code:    ErrStorage,
		Status:  500,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *EngineError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &EngineError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is an EngineError with the given code.
func Is(err error, code ErrorCode) bool {
	if eErr, ok := err.(*EngineError); ok {
		return eErr.Code == code
	}
	return false
}
