package herrors

import "fmt"

// HermesError is the structured error type used across the core.
type HermesError struct {
	Code     string
	Message  string
	Category Category
	Severity Severity
	Cause    error
}

func (e *HermesError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/errors.As.
func (e *HermesError) Unwrap() error {
	return e.Cause
}

// Is matches another *HermesError by code, so errors.Is works on codes.
func (e *HermesError) Is(target error) bool {
	t, ok := target.(*HermesError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a HermesError, deriving category and severity from the code.
func New(code, message string, cause error) *HermesError {
	return &HermesError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap turns an existing error into a HermesError under the given code.
// Returns nil if err is nil.
func Wrap(code string, err error) *HermesError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// StorageError wraps a database driver error unchanged in content, tagged
// for caller classification.
func StorageError(message string, cause error) *HermesError {
	return New(ErrCodeStorageError, message, cause)
}

// ValidationError creates an input-validation error.
func ValidationError(message string) *HermesError {
	return New(ErrCodeInvalidInput, message, nil)
}

// IsFatal reports whether err carries fatal severity.
func IsFatal(err error) bool {
	he, ok := err.(*HermesError)
	return ok && he.Severity == SeverityFatal
}

// Code extracts the error code, or "" if err isn't a HermesError.
func Code(err error) string {
	if he, ok := err.(*HermesError); ok {
		return he.Code
	}
	return ""
}
