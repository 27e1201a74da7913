package errs

import (
	"errors"
	"fmt"
)

// ErrAccessCodeTaken means a generated access code collided with an issued
// one; the caller should generate another.
var ErrAccessCodeTaken = errors.New("access code already issued")

type ErrorMessage struct {
	Message string
}

func (e *ErrorMessage) Error() string { return e.Message }

type NotFoundError struct {
	ErrorMessage
}

// AlreadyExistsError reports a uniqueness conflict. Code is the machine
// readable code written to the client; empty means "already_exists".
type AlreadyExistsError struct {
	ErrorMessage
	Code string
}

type ValidationError struct {
	ErrorMessage
}

type UnauthorizedError struct {
	ErrorMessage
}

// DatabaseError wraps a storage failure. Retryable marks failures the caller
// may try again later (connectivity, exhausted retries) and maps to 503.
type DatabaseError struct {
	Operation string
	Message   string
	Err       error
	Retryable bool
}

func (e *DatabaseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Operation, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Operation, e.Message, e.Err)
}

func (e *DatabaseError) Unwrap() error { return e.Err }

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewAlreadyExistsError(message string) *AlreadyExistsError {
	return &AlreadyExistsError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewDuplicateReferenceError(reference string) *AlreadyExistsError {
	return &AlreadyExistsError{
		ErrorMessage: ErrorMessage{Message: "reference already exists: " + reference},
		Code:         "duplicate_reference",
	}
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewUnauthorizedError(message string) *UnauthorizedError {
	return &UnauthorizedError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewDatabaseError(operation, message string, err error) *DatabaseError {
	return &DatabaseError{Operation: operation, Message: message, Err: err}
}

func NewUnavailableError(operation, message string, err error) *DatabaseError {
	return &DatabaseError{Operation: operation, Message: message, Err: err, Retryable: true}
}
