package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Clause list errors
const (
	// ErrCodeInvalidClause indicates a clause is structurally incomplete.
	ErrCodeInvalidClause ErrorCode = "INVALID_CLAUSE"
	// ErrCodeDuplicateBinder indicates two clauses introduce the same binder.
	ErrCodeDuplicateBinder ErrorCode = "DUPLICATE_BINDER"
	// ErrCodeUnboundBinder indicates a reference to a name no clause binds.
	ErrCodeUnboundBinder ErrorCode = "UNBOUND_BINDER"
	// ErrCodeForwardReference indicates a reference to a binder that is
	// introduced by the same or a later clause.
	ErrCodeForwardReference ErrorCode = "FORWARD_REFERENCE"
)

// Definition errors
const (
	// ErrCodeInvalidExpression indicates an expression failed to compile or has the wrong type.
	ErrCodeInvalidExpression ErrorCode = "INVALID_EXPRESSION"
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected internal failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// authoringCodes are the codes that reject a clause list before assembly.
var authoringCodes = map[ErrorCode]bool{
	ErrCodeInvalidClause:     true,
	ErrCodeDuplicateBinder:   true,
	ErrCodeUnboundBinder:     true,
	ErrCodeForwardReference:  true,
	ErrCodeInvalidExpression: true,
}

// IsAuthoringCode returns true if the code describes a mistake in how a
// comprehension was written, as opposed to a failure while running it.
func IsAuthoringCode(code ErrorCode) bool {
	return authoringCodes[code]
}
