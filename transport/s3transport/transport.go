package s3transport

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	transfererrors "github.com/input-output-hk/catalyst-forge-libs/transfer/errors"
	"github.com/input-output-hk/catalyst-forge-libs/transfer/internal/inflight"
	"github.com/input-output-hk/catalyst-forge-libs/transfer/internal/object"
	"github.com/input-output-hk/catalyst-forge-libs/transfer/internal/pool"
	"github.com/input-output-hk/catalyst-forge-libs/transfer/internal/s3api"
	"github.com/input-output-hk/catalyst-forge-libs/transfer/internal/stream"
	"github.com/input-output-hk/catalyst-forge-libs/transfer/transfertypes"
)

// DefaultContentType is used when content type detection yields nothing.
const DefaultContentType = "application/octet-stream"

// Transport performs transfers against S3.
//
// Thread Safety: all methods are safe for concurrent use. The underlying
// AWS SDK client is safe for concurrent use.
type Transport struct {
	s3Client s3api.S3API
	fs       billy.Filesystem
	buffers  *pool.BufferPool
	logger   *slog.Logger

	inflight *inflight.Set
}

var _ transfertypes.Transport = (*Transport)(nil)

// New creates an S3 transport. It loads AWS credentials using the default
// credential chain unless WithAWSConfig is given.
//
// Example:
//
//	transport, err := s3transport.New(
//	    s3transport.WithRegion("us-west-2"),
//	    s3transport.WithMaxRetries(5),
//	)
func New(opts ...transfertypes.S3Option) (*Transport, error) {
	cfg := newConfig(opts)

	var awsCfg aws.Config
	if cfg.CustomAWSConfig != nil {
		awsCfg = *cfg.CustomAWSConfig
	} else {
		var err error
		awsCfg, err = config.LoadDefaultConfig(context.Background())
		if err != nil {
			return nil, transfererrors.NewError("newS3Transport", err)
		}
	}

	if cfg.Region != "" {
		awsCfg.Region = cfg.Region
	} else if awsCfg.Region == "" {
		awsCfg.Region = "us-east-1"
	}
	if cfg.MaxRetries > 0 {
		awsCfg.RetryMaxAttempts = cfg.MaxRetries
	}

	var s3Opts []func(*s3.Options)
	if cfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}
	if cfg.Timeout > 0 {
		httpClient := &http.Client{Timeout: cfg.Timeout}
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = httpClient
		})
	}

	return newTransport(s3.NewFromConfig(awsCfg, s3Opts...), cfg), nil
}

// NewWithClient creates an S3 transport around an existing S3 API client.
// Options that configure the AWS client itself are ignored.
func NewWithClient(client s3api.S3API, opts ...transfertypes.S3Option) *Transport {
	return newTransport(client, newConfig(opts))
}

func newConfig(opts []transfertypes.S3Option) *transfertypes.S3Config {
	cfg := &transfertypes.S3Config{
		MaxRetries: 3,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Filesystem == nil {
		cfg.Filesystem = osfs.New("")
	}
	return cfg
}

func newTransport(client s3api.S3API, cfg *transfertypes.S3Config) *Transport {
	return &Transport{
		s3Client: client,
		fs:       cfg.Filesystem,
		buffers:  pool.ForSize(cfg.ChunkSize),
		logger:   cfg.Logger,
		inflight: inflight.New(),
	}
}

// Start validates req and begins the transfer on a new goroutine.
// Events may be delivered before Start returns.
func (t *Transport) Start(
	ctx context.Context,
	req *transfertypes.Request,
	events transfertypes.Events,
) (transfertypes.Handle, error) {
	if req == nil || events == nil {
		return nil, transfererrors.NewError("start", transfererrors.ErrInvalidInput).
			WithMessage("request and events are required")
	}

	obj, err := object.Prepare(t.fs, req)
	if err != nil {
		return nil, err
	}

	h, ctx := t.inflight.Begin(ctx)

	if t.logger != nil {
		t.logger.DebugContext(ctx, "starting s3 transfer",
			"transfer", string(h),
			"method", obj.Method,
			"bucket", obj.Bucket,
			"key", obj.Key)
	}

	go t.run(ctx, h, obj, events)
	return h, nil
}

// Abort cancels the transfer's request. The transfer may still report one
// OnFail event afterwards.
func (t *Transport) Abort(h transfertypes.Handle) {
	if t.inflight.Abort(h) {
		if t.logger != nil {
			t.logger.Debug("s3 transfer aborted", "transfer", h.ID())
		}
	}
}

// Active returns the number of transfers that have not ended yet.
func (t *Transport) Active() int {
	return t.inflight.Len()
}

func (t *Transport) run(ctx context.Context, h inflight.Handle, obj *object.Request, events transfertypes.Events) {
	defer t.inflight.End(h)

	var err error
	switch obj.Method {
	case http.MethodGet:
		err = t.get(ctx, h, obj, events)
	case http.MethodHead:
		err = t.head(ctx, h, obj, events)
	case http.MethodPut:
		err = t.put(ctx, h, obj, events)
	}

	if err != nil {
		err = t.failure(ctx, h, obj, err)
		if t.logger != nil {
			t.logger.Debug("s3 transfer failed", "transfer", string(h), "error", err)
		}
		events.OnFail(h, err)
		return
	}
	events.OnFinish(h)
}

func (t *Transport) get(ctx context.Context, h inflight.Handle, obj *object.Request, events transfertypes.Events) error {
	output, err := t.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(obj.Bucket),
		Key:    aws.String(obj.Key),
	})
	if err != nil {
		return err
	}
	if output.Body == nil {
		output.Body = http.NoBody
	}
	defer func() {
		_ = output.Body.Close()
	}()

	expected := transfertypes.UnknownLength
	if output.ContentLength != nil {
		expected = *output.ContentLength
	}

	events.OnResponse(h, &transfertypes.Response{
		URL:            obj.URL(),
		StatusCode:     http.StatusOK,
		ContentType:    aws.ToString(output.ContentType),
		ExpectedLength: expected,
		ETag:           aws.ToString(output.ETag),
		Header:         object.MetadataHeader(output.Metadata),
	})

	n, err := stream.Pump(ctx, output.Body, t.buffers, func(chunk []byte) {
		events.OnData(h, chunk)
	})
	if err != nil {
		return err
	}

	if t.logger != nil {
		t.logger.DebugContext(ctx, "s3 download finished", "transfer", string(h), "bytes", n)
	}
	return nil
}

func (t *Transport) head(ctx context.Context, h inflight.Handle, obj *object.Request, events transfertypes.Events) error {
	output, err := t.s3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(obj.Bucket),
		Key:    aws.String(obj.Key),
	})
	if err != nil {
		return err
	}

	expected := transfertypes.UnknownLength
	if output.ContentLength != nil {
		expected = *output.ContentLength
	}

	events.OnResponse(h, &transfertypes.Response{
		URL:            obj.URL(),
		StatusCode:     http.StatusOK,
		ContentType:    aws.ToString(output.ContentType),
		ExpectedLength: expected,
		ETag:           aws.ToString(output.ETag),
		Header:         object.MetadataHeader(output.Metadata),
	})
	return nil
}

func (t *Transport) put(ctx context.Context, h inflight.Handle, obj *object.Request, events transfertypes.Events) error {
	data, err := obj.Source.ReadAll()
	if err != nil {
		return err
	}
	size := int64(len(data))

	contentType := obj.ContentType
	if contentType == "" {
		contentType = stream.DetectContentType(data)
		if contentType == "" {
			contentType = DefaultContentType
		}
	}

	body := stream.NewProgressReader(bytes.NewReader(data), size, func(sent, expected int64) {
		events.OnUploadProgress(h, sent, expected)
	})

	input := &s3.PutObjectInput{
		Bucket:        aws.String(obj.Bucket),
		Key:           aws.String(obj.Key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	}
	if len(obj.Metadata) > 0 {
		input.Metadata = obj.Metadata
	}

	output, err := t.s3Client.PutObject(ctx, input)
	if err != nil {
		return err
	}

	events.OnResponse(h, &transfertypes.Response{
		URL:            obj.URL(),
		StatusCode:     http.StatusOK,
		ContentType:    contentType,
		ExpectedLength: 0,
		ETag:           aws.ToString(output.ETag),
		Header:         http.Header{},
	})

	if t.logger != nil {
		t.logger.DebugContext(ctx, "s3 upload finished", "transfer", string(h), "bytes", size)
	}
	return nil
}

func (t *Transport) failure(ctx context.Context, h inflight.Handle, obj *object.Request, err error) error {
	var code string
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code = apiErr.ErrorCode()
	}
	return object.Failure(ctx, string(h), obj, code, err)
}
