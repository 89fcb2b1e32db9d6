package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-git/go-billy/v5"
)

// Option configures a Transport.
type Option func(*Transport)

// WithHTTPClient sets the HTTP client used for requests.
// The default is a client without a timeout; transfers are bounded by their context.
func WithHTTPClient(client *http.Client) Option {
	return func(t *Transport) {
		if client != nil {
			t.client = client
		}
	}
}

// WithChunkSize sets the read size used when streaming response bodies.
func WithChunkSize(size int) Option {
	return func(t *Transport) {
		t.chunkSize = size
	}
}

// WithFilesystem sets the filesystem Request.BodyPath is resolved against.
// The default is the OS filesystem rooted at the working directory.
func WithFilesystem(fs billy.Filesystem) Option {
	return func(t *Transport) {
		t.fs = fs
	}
}

// WithLogger sets a structured logger for transport events.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Transport) {
		t.logger = logger
	}
}

// WithStatusErrors makes responses with a 4xx or 5xx status fail with
// errors.ErrUnexpectedStatus after OnResponse, instead of delivering their
// body as data. The default delivers every response as data.
func WithStatusErrors() Option {
	return func(t *Transport) {
		t.statusErrors = true
	}
}
