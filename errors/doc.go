// Package errors provides the structured error type used for authoring
// failures: malformed clause lists, bad expressions, invalid definitions.
// Errors raised by user code while a comprehension is being pulled are
// never converted to AppError.
package errors
