// Package errors provides error types and handling for transfer operations.
package errors

import (
	"errors"
	"fmt"
)

// Error represents a transfer error with context about the operation that failed.
// It wraps the underlying transport or adapter error with the group and transfer involved.
type Error struct {
	// Op is the operation that failed (e.g., "cancel", "start", "download")
	Op string

	// Group is the group the transfer belongs to (if applicable)
	Group string

	// Transfer is the transfer handle id (if applicable)
	Transfer string

	// Err is the underlying error
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Group != "" && e.Transfer != "" {
		return fmt.Sprintf("transfer.%s %s/%s: %v", e.Op, e.Group, e.Transfer, e.Err)
	}
	if e.Group != "" {
		return fmt.Sprintf("transfer.%s group %s: %v", e.Op, e.Group, e.Err)
	}
	if e.Transfer != "" {
		return fmt.Sprintf("transfer.%s %s: %v", e.Op, e.Transfer, e.Err)
	}
	return fmt.Sprintf("transfer.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithGroup adds group context to an existing error.
func (e *Error) WithGroup(group string) *Error {
	e.Group = group
	return e
}

// WithTransfer adds transfer handle context to an existing error.
func (e *Error) WithTransfer(id string) *Error {
	e.Transfer = id
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewGroupError creates a new Error with group context.
func NewGroupError(op, group string, err error) *Error {
	return &Error{
		Op:    op,
		Group: group,
		Err:   err,
	}
}

// NewTransferError creates a new Error with group and transfer context.
func NewTransferError(op, group, id string, err error) *Error {
	return &Error{
		Op:       op,
		Group:    group,
		Transfer: id,
		Err:      err,
	}
}

// Sentinel errors for common transfer failures.
// These can be used with errors.Is() for error checking.
var (
	// ErrCancelled indicates the transfer was cancelled through its group action.
	// It is never produced by a transport, so callers can tell their own
	// cancellation apart from network failures.
	ErrCancelled = errors.New("transfer: operation was cancelled")

	// ErrAborted indicates the transport stopped the transfer on request
	// (an abort, or a challenge that was cancelled).
	ErrAborted = errors.New("transfer: aborted")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("transfer: invalid input")

	// ErrObjectNotFound indicates that the requested object does not exist
	ErrObjectNotFound = errors.New("transfer: object not found")

	// ErrAccessDenied indicates that access to the resource is denied
	ErrAccessDenied = errors.New("transfer: access denied")

	// ErrUnexpectedStatus indicates the remote end answered with a failure status
	ErrUnexpectedStatus = errors.New("transfer: unexpected status")

	// ErrInvalidBucketName indicates that the bucket name is invalid
	ErrInvalidBucketName = errors.New("transfer: invalid bucket name")

	// ErrInvalidObjectKey indicates that the object key is invalid
	ErrInvalidObjectKey = errors.New("transfer: invalid object key")

	// ErrUnsupported indicates the transport does not support the requested method or scheme
	ErrUnsupported = errors.New("transfer: unsupported request")
)

// IsCancelled checks if an error indicates a group cancellation.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// IsAborted checks if an error indicates a transport-level abort.
func IsAborted(err error) bool {
	return errors.Is(err, ErrAborted)
}

// IsInvalidInput checks if an error indicates invalid input.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsObjectNotFound checks if an error indicates that an object was not found.
func IsObjectNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound)
}
