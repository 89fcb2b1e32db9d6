package errors

import (
	"context"
	"errors"
)

// ErrorCode classifies a transfer error.
// Error codes are string-based for debuggability and natural JSON serialization.
type ErrorCode string

const (
	// CodeCancelled indicates the caller cancelled the transfer's group.
	CodeCancelled ErrorCode = "CANCELLED"

	// CodeAborted indicates the transport stopped the transfer on request.
	CodeAborted ErrorCode = "ABORTED"

	// CodeInvalidInput indicates the provided input is invalid or malformed.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeNotFound indicates a requested resource does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeForbidden indicates the caller lacks permission for the resource.
	CodeForbidden ErrorCode = "FORBIDDEN"

	// CodeTimeout indicates an operation exceeded its time limit.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeNetwork is reported for any other transport failure.
	CodeNetwork ErrorCode = "NETWORK_ERROR"

	// CodeNone is reported for a nil error.
	CodeNone ErrorCode = ""
)

// Code classifies err. Cancellation through a group action is checked first,
// so a cancelled transfer is never reported as a network failure.
func Code(err error) ErrorCode {
	switch {
	case err == nil:
		return CodeNone
	case errors.Is(err, ErrCancelled):
		return CodeCancelled
	case errors.Is(err, ErrAborted), errors.Is(err, context.Canceled):
		return CodeAborted
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInvalidBucketName),
		errors.Is(err, ErrInvalidObjectKey),
		errors.Is(err, ErrUnsupported):
		return CodeInvalidInput
	case errors.Is(err, ErrObjectNotFound):
		return CodeNotFound
	case errors.Is(err, ErrAccessDenied):
		return CodeForbidden
	case errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout
	default:
		return CodeNetwork
	}
}
