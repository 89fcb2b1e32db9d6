// Package object prepares s3://bucket/key transfer requests and classifies
// object store failures. It is shared by the S3 and MinIO transports.
package object
