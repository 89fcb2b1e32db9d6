package httptransport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/input-output-hk/catalyst-forge-libs/transfer/errors"
	"github.com/input-output-hk/catalyst-forge-libs/transfer/internal/inflight"
	"github.com/input-output-hk/catalyst-forge-libs/transfer/internal/pool"
	"github.com/input-output-hk/catalyst-forge-libs/transfer/internal/stream"
	"github.com/input-output-hk/catalyst-forge-libs/transfer/internal/validation"
	"github.com/input-output-hk/catalyst-forge-libs/transfer/transfertypes"
)

// Transport performs transfers over HTTP and HTTPS.
//
// Thread Safety: all methods are safe for concurrent use.
type Transport struct {
	client       *http.Client
	chunkSize    int
	buffers      *pool.BufferPool
	fs           billy.Filesystem
	statusErrors bool
	logger       *slog.Logger

	inflight *inflight.Set
}

var _ transfertypes.Transport = (*Transport)(nil)

// New creates an HTTP transport.
//
// Example:
//
//	transport := httptransport.New(
//	    httptransport.WithHTTPClient(&http.Client{Timeout: time.Minute}),
//	    httptransport.WithChunkSize(64*1024),
//	)
func New(opts ...Option) *Transport {
	t := &Transport{
		client:   &http.Client{},
		fs:       osfs.New(""),
		inflight: inflight.New(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.buffers = pool.ForSize(t.chunkSize)
	return t
}

// call is one transfer's immutable request description.
type call struct {
	method      string
	url         *url.URL
	header      http.Header
	contentType string
	source      *stream.Source
}

// Start validates req and begins the transfer on a new goroutine.
// Events may be delivered before Start returns.
func (t *Transport) Start(
	ctx context.Context,
	req *transfertypes.Request,
	events transfertypes.Events,
) (transfertypes.Handle, error) {
	if req == nil || events == nil {
		return nil, errors.NewError("start", errors.ErrInvalidInput).
			WithMessage("request and events are required")
	}

	u, err := validation.ValidateRequestURL(req.URL, "http", "https")
	if err != nil {
		return nil, err
	}
	source, err := stream.NewSource(t.fs, req)
	if err != nil {
		return nil, err
	}

	c := &call{
		method:      req.Method,
		url:         u,
		header:      req.Header.Clone(),
		contentType: req.ContentType,
		source:      source,
	}
	if c.method == "" {
		c.method = http.MethodGet
		if source != nil {
			c.method = http.MethodPut
		}
	}

	h, ctx := t.inflight.Begin(ctx)

	if t.logger != nil {
		t.logger.DebugContext(ctx, "starting http transfer",
			"transfer", string(h),
			"method", c.method,
			"url", u.Redacted())
	}

	go t.run(ctx, h, c, events)
	return h, nil
}

// Abort cancels the transfer's request. The transfer may still report one
// OnFail event afterwards.
func (t *Transport) Abort(h transfertypes.Handle) {
	if t.inflight.Abort(h) {
		if t.logger != nil {
			t.logger.Debug("http transfer aborted", "transfer", h.ID())
		}
	}
}

// Active returns the number of transfers that have not ended yet.
func (t *Transport) Active() int {
	return t.inflight.Len()
}

func (t *Transport) run(ctx context.Context, h inflight.Handle, c *call, events transfertypes.Events) {
	defer t.inflight.End(h)

	resp, err := t.send(ctx, h, c, events, nil)
	failures := 0

challenges:
	for err == nil && resp.StatusCode == http.StatusUnauthorized {
		header := resp.Header.Get("WWW-Authenticate")
		if header == "" {
			break
		}

		challenge := newChallenge(c.url.Redacted(), header, failures)
		switch events.OnChallenge(h, challenge) {
		case transfertypes.ChallengeCancelled:
			closeBody(resp)
			return
		case transfertypes.ChallengeDefault:
			break challenges
		}

		var d decision
		select {
		case d = <-challenge.decision:
		case <-ctx.Done():
			closeBody(resp)
			events.OnFail(h, t.failure(ctx, h, ctx.Err()))
			return
		}

		switch d.kind {
		case decideContinue:
			break challenges
		case decideCancel:
			closeBody(resp)
			events.OnFail(h, errors.NewError("authenticate", errors.ErrAborted).
				WithTransfer(string(h)).
				WithMessage("authentication cancelled"))
			return
		default:
			closeBody(resp)
			failures++
			resp, err = t.send(ctx, h, c, events, &d)
		}
	}

	if err != nil {
		events.OnFail(h, t.failure(ctx, h, err))
		return
	}
	t.deliver(ctx, h, resp, events)
}

func (t *Transport) send(
	ctx context.Context,
	h inflight.Handle,
	c *call,
	events transfertypes.Events,
	credential *decision,
) (*http.Response, error) {
	var body io.ReadCloser
	var length int64
	openBody := func() (io.ReadCloser, error) {
		rc, n, err := c.source.Open()
		if err != nil {
			return nil, err
		}
		length = n
		progress := stream.NewProgressReader(rc, n, func(sent, expected int64) {
			events.OnUploadProgress(h, sent, expected)
		})
		return struct {
			io.Reader
			io.Closer
		}{progress, rc}, nil
	}

	if c.source != nil {
		var err error
		if body, err = openBody(); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, c.method, c.url.String(), body)
	if err != nil {
		if body != nil {
			_ = body.Close()
		}
		return nil, errors.NewError("send", errors.ErrInvalidInput).WithMessage(err.Error())
	}
	if body != nil {
		req.ContentLength = length
		if length == 0 {
			_ = body.Close()
			req.Body = http.NoBody
		} else {
			// Redirects that keep the body resend it from the start.
			req.GetBody = openBody
		}
	}

	for key, values := range c.header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if c.contentType != "" {
		req.Header.Set("Content-Type", c.contentType)
	}
	if credential != nil {
		req.SetBasicAuth(credential.user, credential.password)
	}

	//nolint:wrapcheck // classified by the caller
	return t.client.Do(req)
}

func (t *Transport) deliver(ctx context.Context, h inflight.Handle, resp *http.Response, events transfertypes.Events) {
	defer closeBody(resp)

	contentType := resp.Header.Get("Content-Type")
	body := io.Reader(resp.Body)
	if contentType == "" && resp.ContentLength != 0 && resp.Request.Method != http.MethodHead {
		sniffed, r, err := stream.Sniff(resp.Body)
		if err != nil {
			events.OnFail(h, t.failure(ctx, h, err))
			return
		}
		contentType, body = sniffed, r
	}

	events.OnResponse(h, &transfertypes.Response{
		URL:            resp.Request.URL.String(),
		StatusCode:     resp.StatusCode,
		ContentType:    contentType,
		ExpectedLength: resp.ContentLength,
		ETag:           resp.Header.Get("ETag"),
		Header:         resp.Header.Clone(),
	})

	if t.statusErrors && resp.StatusCode >= http.StatusBadRequest {
		events.OnFail(h, errors.NewError("http", errors.ErrUnexpectedStatus).
			WithTransfer(string(h)).
			WithMessage(resp.Status))
		return
	}

	n, err := stream.Pump(ctx, body, t.buffers, func(chunk []byte) {
		events.OnData(h, chunk)
	})
	if err != nil {
		events.OnFail(h, t.failure(ctx, h, err))
		return
	}

	if t.logger != nil {
		t.logger.DebugContext(ctx, "http transfer finished",
			"transfer", string(h),
			"status", resp.StatusCode,
			"bytes", n)
	}
	events.OnFinish(h)
}

// failure wraps a transport error with the transfer id. Errors seen after the
// transfer's context was cancelled are marked as ErrAborted.
func (t *Transport) failure(ctx context.Context, h inflight.Handle, err error) error {
	if ctx.Err() != nil && !errors.IsAborted(err) {
		err = fmt.Errorf("%w: %w", errors.ErrAborted, err)
	}
	if t.logger != nil {
		t.logger.Debug("http transfer failed", "transfer", string(h), "error", err)
	}
	return errors.NewTransferError("http", "", string(h), err)
}

func closeBody(resp *http.Response) {
	if resp != nil && resp.Body != nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
	}
}
