package miniotransport

import (
	"log/slog"
	"net/http"

	"github.com/go-git/go-billy/v5"
)

type config struct {
	accessKey    string
	secretKey    string
	sessionToken string
	region       string
	secure       bool
	roundTripper http.RoundTripper
	fs           billy.Filesystem
	chunkSize    int
	logger       *slog.Logger
}

// Option configures a Transport.
type Option func(*config)

// WithCredentials sets static V4 credentials.
func WithCredentials(accessKey, secretKey, sessionToken string) Option {
	return func(c *config) {
		c.accessKey = accessKey
		c.secretKey = secretKey
		c.sessionToken = sessionToken
	}
}

// WithRegion sets the region. Setting it skips the bucket location lookup.
// Default is us-east-1.
func WithRegion(region string) Option {
	return func(c *config) {
		c.region = region
	}
}

// WithSecure enables TLS. Default is true.
func WithSecure(secure bool) Option {
	return func(c *config) {
		c.secure = secure
	}
}

// WithRoundTripper sets the HTTP transport used by the MinIO client.
func WithRoundTripper(rt http.RoundTripper) Option {
	return func(c *config) {
		c.roundTripper = rt
	}
}

// WithFilesystem sets the filesystem used to resolve Request.BodyPath.
// Default is the OS filesystem.
func WithFilesystem(fs billy.Filesystem) Option {
	return func(c *config) {
		c.fs = fs
	}
}

// WithChunkSize sets the read size used when streaming object bodies.
func WithChunkSize(size int) Option {
	return func(c *config) {
		c.chunkSize = size
	}
}

// WithLogger sets a structured logger for transport events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}
