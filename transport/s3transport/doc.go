// Package s3transport implements transfertypes.Transport on top of Amazon S3.
//
// Requests address objects as s3://bucket/key. GET streams the object to the
// event sink in chunks, PUT uploads Request.Body (or the file named by
// Request.BodyPath) with upload progress, and HEAD reports object metadata
// only.
//
// Basic usage:
//
//	transport, err := s3transport.New(s3transport.WithRegion("us-west-2"))
//	if err != nil {
//	    return err
//	}
//	client, err := transfer.NewClient(transport)
package s3transport
