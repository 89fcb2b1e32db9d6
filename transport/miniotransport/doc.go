// Package miniotransport implements transfertypes.Transport for
// S3-compatible object stores through the MinIO client.
//
// It accepts the same s3://bucket/key requests as the S3 transport. Uploads
// stream the payload with its known size and report progress as the MinIO
// client sends it, so large files are not held in memory.
package miniotransport
