package transfertypes

import (
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/go-git/go-billy/v5"
)

// S3Config holds configuration for the S3 transport.
type S3Config struct {
	// Region is the AWS region to use
	Region string

	// Endpoint is a custom S3 endpoint URL (for S3-compatible services or LocalStack)
	Endpoint string

	// ForcePathStyle forces path-style addressing
	ForcePathStyle bool

	// MaxRetries is the maximum number of retry attempts per request
	MaxRetries int

	// Timeout bounds each HTTP round trip. Zero means no timeout.
	Timeout time.Duration

	// CustomAWSConfig replaces the default credential chain configuration
	CustomAWSConfig *aws.Config

	// Filesystem resolves Request.BodyPath for uploads
	Filesystem billy.Filesystem

	// ChunkSize is the read size used when streaming object bodies
	ChunkSize int

	// Logger receives structured transport events. Nil disables logging.
	Logger *slog.Logger
}

// S3Option configures the S3 transport.
type S3Option func(*S3Config)
