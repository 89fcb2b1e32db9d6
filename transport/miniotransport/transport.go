package miniotransport

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	transfererrors "github.com/input-output-hk/catalyst-forge-libs/transfer/errors"
	"github.com/input-output-hk/catalyst-forge-libs/transfer/internal/inflight"
	"github.com/input-output-hk/catalyst-forge-libs/transfer/internal/object"
	"github.com/input-output-hk/catalyst-forge-libs/transfer/internal/pool"
	"github.com/input-output-hk/catalyst-forge-libs/transfer/internal/stream"
	"github.com/input-output-hk/catalyst-forge-libs/transfer/transfertypes"
)

// Transport performs transfers against an S3-compatible store.
//
// Thread Safety: all methods are safe for concurrent use.
type Transport struct {
	client  *minio.Client
	fs      billy.Filesystem
	buffers *pool.BufferPool
	logger  *slog.Logger

	inflight *inflight.Set
}

var _ transfertypes.Transport = (*Transport)(nil)

// New creates a transport for the store at endpoint (host[:port], no scheme).
//
// Example:
//
//	transport, err := miniotransport.New("play.min.io",
//	    miniotransport.WithCredentials(accessKey, secretKey, ""),
//	)
func New(endpoint string, opts ...Option) (*Transport, error) {
	cfg := newConfig(opts)

	if endpoint == "" {
		return nil, transfererrors.NewError("newMinioTransport", transfererrors.ErrInvalidInput).
			WithMessage("endpoint cannot be empty")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.accessKey, cfg.secretKey, cfg.sessionToken),
		Secure:       cfg.secure,
		Region:       cfg.region,
		BucketLookup: minio.BucketLookupPath,
		Transport:    cfg.roundTripper,
	})
	if err != nil {
		return nil, transfererrors.NewError("newMinioTransport", err)
	}
	return newTransport(client, cfg), nil
}

// NewWithClient creates a transport around an existing MinIO client.
// Options that configure the client itself are ignored.
func NewWithClient(client *minio.Client, opts ...Option) *Transport {
	return newTransport(client, newConfig(opts))
}

func newConfig(opts []Option) *config {
	cfg := &config{
		region: "us-east-1",
		secure: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.fs == nil {
		cfg.fs = osfs.New("")
	}
	return cfg
}

func newTransport(client *minio.Client, cfg *config) *Transport {
	return &Transport{
		client:   client,
		fs:       cfg.fs,
		buffers:  pool.ForSize(cfg.chunkSize),
		logger:   cfg.logger,
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
		t.logger.DebugContext(ctx, "starting minio transfer",
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
	if t.inflight.Abort(h) && t.logger != nil {
		t.logger.Debug("minio transfer aborted", "transfer", h.ID())
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
			t.logger.Debug("minio transfer failed", "transfer", string(h), "error", err)
		}
		events.OnFail(h, err)
		return
	}
	events.OnFinish(h)
}

func (t *Transport) get(ctx context.Context, h inflight.Handle, obj *object.Request, events transfertypes.Events) error {
	reader, err := t.client.GetObject(ctx, obj.Bucket, obj.Key, minio.GetObjectOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = reader.Close()
	}()

	info, err := reader.Stat()
	if err != nil {
		return err
	}
	events.OnResponse(h, response(obj, info))

	n, err := stream.Pump(ctx, reader, t.buffers, func(chunk []byte) {
		events.OnData(h, chunk)
	})
	if err != nil {
		return err
	}

	if t.logger != nil {
		t.logger.DebugContext(ctx, "minio download finished", "transfer", string(h), "bytes", n)
	}
	return nil
}

func (t *Transport) head(ctx context.Context, h inflight.Handle, obj *object.Request, events transfertypes.Events) error {
	info, err := t.client.StatObject(ctx, obj.Bucket, obj.Key, minio.StatObjectOptions{})
	if err != nil {
		return err
	}
	events.OnResponse(h, response(obj, info))
	return nil
}

func (t *Transport) put(ctx context.Context, h inflight.Handle, obj *object.Request, events transfertypes.Events) error {
	body, size, err := obj.Source.Open()
	if err != nil {
		return err
	}
	defer func() {
		_ = body.Close()
	}()

	contentType := obj.ContentType
	reader := io.Reader(body)
	if contentType == "" {
		if contentType, reader, err = stream.Sniff(body); err != nil {
			return err
		}
	}

	sink := &progress{
		expected: size,
		report: func(sent, expected int64) {
			events.OnUploadProgress(h, sent, expected)
		},
	}
	info, err := t.client.PutObject(ctx, obj.Bucket, obj.Key, reader, size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: obj.Metadata,
		Progress:     sink,
	})
	if err != nil {
		return err
	}

	events.OnResponse(h, &transfertypes.Response{
		URL:            obj.URL(),
		StatusCode:     http.StatusOK,
		ContentType:    contentType,
		ExpectedLength: 0,
		ETag:           info.ETag,
		Header:         http.Header{},
	})

	if t.logger != nil {
		t.logger.DebugContext(ctx, "minio upload finished", "transfer", string(h), "bytes", info.Size)
	}
	return nil
}

// progress receives the bytes the MinIO client has sent so far. The client
// passes every sent block to Read.
type progress struct {
	sent     int64
	expected int64
	report   func(sent, expected int64)
}

func (p *progress) Read(b []byte) (int, error) {
	p.sent += int64(len(b))
	p.report(p.sent, p.expected)
	return len(b), nil
}

func response(obj *object.Request, info minio.ObjectInfo) *transfertypes.Response {
	return &transfertypes.Response{
		URL:            obj.URL(),
		StatusCode:     http.StatusOK,
		ContentType:    info.ContentType,
		ExpectedLength: info.Size,
		ETag:           info.ETag,
		Header:         object.MetadataHeader(info.UserMetadata),
	}
}

func (t *Transport) failure(ctx context.Context, h inflight.Handle, obj *object.Request, err error) error {
	return object.Failure(ctx, string(h), obj, minio.ToErrorResponse(err).Code, err)
}
