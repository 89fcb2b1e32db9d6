package object

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-git/go-billy/v5"

	transfererrors "github.com/input-output-hk/catalyst-forge-libs/transfer/errors"
	"github.com/input-output-hk/catalyst-forge-libs/transfer/internal/stream"
	"github.com/input-output-hk/catalyst-forge-libs/transfer/internal/validation"
	"github.com/input-output-hk/catalyst-forge-libs/transfer/transfertypes"
)

// MetadataPrefix is the header prefix used for user-defined object metadata.
const MetadataPrefix = "X-Amz-Meta-"

// Error codes returned by S3-compatible stores that map to transfer sentinels.
const (
	CodeNoSuchKey    = "NoSuchKey"
	CodeNoSuchBucket = "NoSuchBucket"
	CodeNotFound     = "NotFound"
	CodeAccessDenied = "AccessDenied"
	CodeForbidden    = "Forbidden"
)

// Request is one transfer's validated object request.
type Request struct {
	Method      string
	Bucket      string
	Key         string
	ContentType string
	Metadata    map[string]string
	Source      *stream.Source
}

// URL returns the request's s3://bucket/key URL.
func (r *Request) URL() string {
	return "s3://" + r.Bucket + "/" + r.Key
}

// Prepare validates req and resolves its method and payload. The method
// defaults to GET, or PUT when the request carries a body. Only GET, HEAD
// and PUT are supported.
func Prepare(fs billy.Filesystem, req *transfertypes.Request) (*Request, error) {
	bucket, key, err := validation.ParseS3URL(req.URL)
	if err != nil {
		return nil, err
	}

	source, err := stream.NewSource(fs, req)
	if err != nil {
		return nil, err
	}

	obj := &Request{
		Method:      strings.ToUpper(req.Method),
		Bucket:      bucket,
		Key:         key,
		ContentType: req.ContentType,
		Metadata:    req.Metadata,
		Source:      source,
	}
	if obj.Method == "" {
		obj.Method = http.MethodGet
		if source != nil {
			obj.Method = http.MethodPut
		}
	}

	switch obj.Method {
	case http.MethodGet, http.MethodHead:
		return obj, nil
	case http.MethodPut:
		if source == nil {
			return nil, transfererrors.NewError("start", transfererrors.ErrInvalidInput).
				WithMessage("upload requires a body or body path")
		}
		if err := validation.ValidateMetadata(req.Metadata); err != nil {
			return nil, err
		}
		if err := validation.ValidateContentType(req.ContentType); err != nil {
			return nil, err
		}
		return obj, nil
	default:
		return nil, transfererrors.NewError("start", transfererrors.ErrUnsupported).
			WithMessage(fmt.Sprintf("method %q", req.Method))
	}
}

// MetadataHeader renders user metadata as response headers.
func MetadataHeader(metadata map[string]string) http.Header {
	header := make(http.Header, len(metadata))
	for k, v := range metadata {
		header.Set(MetadataPrefix+k, v)
	}
	return header
}

// Failure classifies err and attaches the transfer id and object URL. code is
// the store's error code for err, or empty if it has none. A cancelled ctx
// marks the failure as an abort.
func Failure(ctx context.Context, id string, obj *Request, code string, err error) error {
	switch {
	case ctx.Err() != nil && !errors.Is(err, transfererrors.ErrAborted):
		err = fmt.Errorf("%w: %w", transfererrors.ErrAborted, err)
	case code == CodeNoSuchKey, code == CodeNoSuchBucket, code == CodeNotFound:
		err = fmt.Errorf("%w: %w", transfererrors.ErrObjectNotFound, err)
	case code == CodeAccessDenied, code == CodeForbidden:
		err = fmt.Errorf("%w: %w", transfererrors.ErrAccessDenied, err)
	}

	return transfererrors.NewTransferError(strings.ToLower(obj.Method), "", id, err).
		WithMessage(obj.URL())
}
