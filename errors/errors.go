package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// --- Clause list constructors ---

// InvalidClause reports a structurally incomplete clause at position index (0-based).
func InvalidClause(index int, reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidClause, Message: fmt.Sprintf("clause %d: %s", index+1, reason),
		Details: map[string]any{"clause": index + 1},
	}
}

// DuplicateBinder reports a binder name introduced more than once.
func DuplicateBinder(name string, first, second int) *AppError {
	return &AppError{
		Code:    ErrCodeDuplicateBinder,
		Message: fmt.Sprintf("binder %q is introduced by clause %d and again by clause %d", name, first+1, second+1),
		Details: map[string]any{"binder": name, "first": first + 1, "second": second + 1},
	}
}

// UnboundBinder reports a reference from clause index to a name nothing binds.
func UnboundBinder(name string, index int) *AppError {
	return &AppError{
		Code:    ErrCodeUnboundBinder,
		Message: fmt.Sprintf("clause %d references unbound name %q", index+1, name),
		Details: map[string]any{"binder": name, "clause": index + 1},
	}
}

// ForwardReference reports a reference from clause index to a binder
// introduced by clause definedAt, which is not strictly earlier.
func ForwardReference(name string, index, definedAt int) *AppError {
	return &AppError{
		Code: ErrCodeForwardReference,
		Message: fmt.Sprintf("clause %d references %q, which is only bound by clause %d",
			index+1, name, definedAt+1),
		Details: map[string]any{"binder": name, "clause": index + 1, "defined_at": definedAt + 1},
	}
}

// --- Definition constructors ---

// InvalidExpression reports an expression that failed to compile or type-check.
func InvalidExpression(where, expr string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeInvalidExpression, Message: fmt.Sprintf("invalid %s expression %q", where, expr),
		Details: map[string]any{"location": where, "expression": expr}, Cause: cause,
	}
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("invalid input: %s", reason),
		Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidInput, Message: message}
}

// NotFound creates a new AppError for a resource that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("%s %q was not found", resource, id),
		Details: details,
	}
}

// Internal creates a new AppError for an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: "an unexpected error occurred", Cause: cause}
}

// --- Inspection ---

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsCode reports whether err is, or wraps, an AppError with the given code.
func IsCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// Wrap converts any error into an AppError. AppErrors (also wrapped ones)
// pass through; anything else becomes INTERNAL_ERROR with err as cause.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return Internal(err)
}
