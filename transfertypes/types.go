// Package transfertypes provides shared type definitions for the transfer module.
// Transports depend on this package only, so they never import the adapter itself.
package transfertypes

import (
	"context"
	"io"
	"net/http"
)

// GroupAction is the pending bulk action associated with a group of transfers.
type GroupAction uint32

// Predefined group actions
const (
	// ActionNone means the group has no pending action.
	ActionNone GroupAction = 0

	// ActionCancel makes every member abort on its next event.
	ActionCancel GroupAction = 0x1

	// ActionUndefined is reported for groups that were never configured.
	ActionUndefined GroupAction = 0xFFFFFFFF
)

// String returns a human readable name for the action.
func (a GroupAction) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionCancel:
		return "cancel"
	case ActionUndefined:
		return "undefined"
	default:
		return "unknown"
	}
}

// GroupID identifies a logical batch of transfers. The zero value means "no group".
type GroupID string

// UnknownLength is reported as the expected length when it cannot be determined.
const UnknownLength int64 = -1

// Response is the metadata of a transfer's response.
// It is recorded once per transfer and never modified afterwards.
type Response struct {
	// URL is the final URL the response was received from
	URL string

	// StatusCode is the protocol status code (HTTP status for HTTP-like transports)
	StatusCode int

	// ContentType is the MIME type of the body, if known
	ContentType string

	// ExpectedLength is the announced body length or UnknownLength
	ExpectedLength int64

	// ETag is the entity tag of the resource, if any
	ETag string

	// Header holds the raw response headers
	Header http.Header
}

// Request describes a transfer for a Transport to perform.
type Request struct {
	// Method is the operation verb (GET, PUT, POST, HEAD)
	Method string

	// URL is the target. The S3 transport expects s3://bucket/key.
	URL string

	// Header holds additional request headers
	Header http.Header

	// Body is the upload payload. Nil for downloads.
	Body io.Reader

	// BodyPath names a file to upload when Body is nil.
	// It is resolved against the transport's filesystem.
	BodyPath string

	// BodyLength is the size of Body, or UnknownLength
	BodyLength int64

	// ContentType of the upload payload. Transports may sniff it when empty.
	ContentType string

	// Metadata is user-defined metadata attached to uploads
	Metadata map[string]string
}

// Challenge is an authentication challenge raised by a transport.
// The adapter never inspects it; it is forwarded to the authentication handler as-is.
type Challenge any

// ChallengeDisposition tells the transport how a challenge is being handled.
type ChallengeDisposition int

const (
	// ChallengeDefault asks the transport to apply its default handling.
	ChallengeDefault ChallengeDisposition = iota

	// ChallengeHandled means a handler took the challenge and will resolve it.
	ChallengeHandled

	// ChallengeCancelled means the transfer was cancelled and must stop.
	ChallengeCancelled
)

// ProgressFunc receives the number of bytes processed and the expected total.
// For downloads expected may be UnknownLength. For uploads it may change between
// calls when the request is retransmitted.
type ProgressFunc func(loaded, expected int64)

// CompletionFunc receives the accumulated data, the response (nil if none arrived)
// and the terminal error (nil on success). It is called exactly once per transfer.
type CompletionFunc func(data []byte, resp *Response, err error)

// AuthenticationFunc receives a challenge the transport needs resolved.
type AuthenticationFunc func(h Handle, c Challenge)

// Handle identifies a transfer started by a Transport.
type Handle interface {
	ID() string
}

// Events is the callback contract a Transport drives during a transfer.
// Events of one transfer are delivered serially: OnResponse, OnData*, then
// OnFinish or OnFail, with OnChallenge and OnUploadProgress interleaved.
type Events interface {
	OnResponse(h Handle, resp *Response)
	OnData(h Handle, chunk []byte)
	OnUploadProgress(h Handle, sent, expected int64)
	OnChallenge(h Handle, c Challenge) ChallengeDisposition
	OnFinish(h Handle)
	OnFail(h Handle, err error)
}

// Transport performs the network I/O of transfers and reports it through Events.
type Transport interface {
	// Start begins a transfer. Events may be delivered before Start returns.
	Start(ctx context.Context, req *Request, events Events) (Handle, error)

	// Abort stops a transfer. It is safe to call more than once.
	Abort(h Handle)
}

// Executor runs handler invocations. Implementations decide whether fn runs
// on the calling goroutine or asynchronously.
type Executor interface {
	Execute(fn func())
}
