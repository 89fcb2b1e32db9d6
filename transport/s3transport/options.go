package s3transport

import (
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/go-git/go-billy/v5"

	"github.com/input-output-hk/catalyst-forge-libs/transfer/transfertypes"
)

// WithRegion sets the AWS region for the S3 client.
// If not specified, the region is loaded from the default AWS configuration.
func WithRegion(region string) transfertypes.S3Option {
	return func(c *transfertypes.S3Config) {
		c.Region = region
	}
}

// WithEndpoint sets a custom S3 endpoint URL.
// This is useful for S3-compatible services or local testing with LocalStack.
func WithEndpoint(endpoint string) transfertypes.S3Option {
	return func(c *transfertypes.S3Config) {
		c.Endpoint = endpoint
	}
}

// WithForcePathStyle forces the use of path-style URLs instead of virtual-hosted style.
func WithForcePathStyle(forcePathStyle bool) transfertypes.S3Option {
	return func(c *transfertypes.S3Config) {
		c.ForcePathStyle = forcePathStyle
	}
}

// WithMaxRetries sets the maximum number of retry attempts for failed requests.
// Default is 3.
func WithMaxRetries(maxRetries int) transfertypes.S3Option {
	return func(c *transfertypes.S3Config) {
		c.MaxRetries = maxRetries
	}
}

// WithTimeout sets the timeout for individual HTTP round trips.
// Default is no timeout (0); transfers are bounded by their context.
func WithTimeout(timeout time.Duration) transfertypes.S3Option {
	return func(c *transfertypes.S3Config) {
		c.Timeout = timeout
	}
}

// WithAWSConfig allows providing a custom AWS configuration.
// This overrides the default configuration loading behavior.
func WithAWSConfig(config *aws.Config) transfertypes.S3Option {
	return func(c *transfertypes.S3Config) {
		c.CustomAWSConfig = config
	}
}

// WithFilesystem sets the filesystem used to resolve Request.BodyPath.
// Default is the OS filesystem.
func WithFilesystem(fs billy.Filesystem) transfertypes.S3Option {
	return func(c *transfertypes.S3Config) {
		c.Filesystem = fs
	}
}

// WithChunkSize sets the read size used when streaming object bodies.
func WithChunkSize(size int) transfertypes.S3Option {
	return func(c *transfertypes.S3Config) {
		c.ChunkSize = size
	}
}

// WithLogger sets a structured logger for transport events.
func WithLogger(logger *slog.Logger) transfertypes.S3Option {
	return func(c *transfertypes.S3Config) {
		c.Logger = logger
	}
}
