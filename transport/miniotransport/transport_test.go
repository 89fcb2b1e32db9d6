package miniotransport

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/transfer/errors"
	"github.com/input-output-hk/catalyst-forge-libs/transfer/internal/testutil"
	"github.com/input-output-hk/catalyst-forge-libs/transfer/transfertypes"
)

type storedObject struct {
	data        []byte
	contentType string
	header      http.Header
}

// fakeStore serves a minimal path-style S3 API for GET, HEAD and PUT.
type fakeStore struct {
	mu      sync.Mutex
	objects map[string]storedObject
	puts    []*http.Request
	block   chan struct{}
}

func newFakeStore(t *testing.T) (*fakeStore, *httptest.Server) {
	t.Helper()
	store := &fakeStore{objects: make(map[string]storedObject)}
	srv := httptest.NewServer(store)
	t.Cleanup(srv.Close)
	return store, srv
}

func (s *fakeStore) put(path string, data []byte, contentType string, header http.Header) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[path] = storedObject{data: data, contentType: contentType, header: header}
}

func (s *fakeStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.block != nil {
		select {
		case <-s.block:
		case <-r.Context().Done():
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		_, _ = io.Copy(io.Discard, r.Body)
		s.puts = append(s.puts, r)
		w.Header().Set("ETag", `"uploaded"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodGet, http.MethodHead:
		obj, ok := s.objects[r.URL.Path]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			if r.Method == http.MethodGet {
				_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>`+
					`<Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message>`+
					`<Key>`+r.URL.Path+`</Key></Error>`)
			}
			return
		}
		for k, v := range obj.header {
			w.Header()[k] = v
		}
		w.Header().Set("Content-Type", obj.contentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(obj.data)))
		w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
		w.Header().Set("ETag", testutil.CalculateETag(obj.data))
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			_, _ = w.Write(obj.data)
		}
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *fakeStore) lastPut() *http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.puts) == 0 {
		return nil
	}
	return s.puts[len(s.puts)-1]
}

func newTestTransport(t *testing.T, srv *httptest.Server, opts ...Option) *Transport {
	t.Helper()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	opts = append([]Option{
		WithCredentials("minioadmin", "minioadmin", ""),
		WithSecure(false),
	}, opts...)
	tr, err := New(u.Host, opts...)
	require.NoError(t, err)
	return tr
}

func waitDone(t *testing.T, rec *testutil.EventRecorder) {
	t.Helper()
	select {
	case <-rec.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("transfer did not end")
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		wantErr  bool
	}{
		{name: "host and port", endpoint: "localhost:9000"},
		{name: "host only", endpoint: "play.min.io"},
		{name: "empty endpoint", endpoint: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := New(tt.endpoint, WithCredentials("a", "b", ""))
			if tt.wantErr {
				assert.ErrorIs(t, err, errors.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, tr)
			assert.Zero(t, tr.Active())
		})
	}
}

func TestTransport_Get(t *testing.T) {
	store, srv := newFakeStore(t)
	payload := testutil.GenerateRandomData(10*1024 + 3)
	store.put("/my-bucket/dir/object.bin", payload, "application/octet-stream",
		http.Header{"X-Amz-Meta-Owner": []string{"ci"}})

	tr := newTestTransport(t, srv, WithChunkSize(4096))
	rec := testutil.NewEventRecorder()
	h, err := tr.Start(context.Background(),
		&transfertypes.Request{URL: "s3://my-bucket/dir/object.bin"}, rec)
	require.NoError(t, err)
	require.NotEmpty(t, h.ID())
	waitDone(t, rec)

	require.NoError(t, rec.Err())
	assert.Equal(t, []string{"response", "data", "finish"}, rec.Kinds())
	assert.Equal(t, payload, rec.Data())

	resp := rec.Response()
	assert.Equal(t, "s3://my-bucket/dir/object.bin", resp.URL)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/octet-stream", resp.ContentType)
	assert.Equal(t, int64(len(payload)), resp.ExpectedLength)
	assert.Equal(t, strings.Trim(testutil.CalculateETag(payload), `"`), resp.ETag)
	assert.Equal(t, "ci", resp.Header.Get("X-Amz-Meta-Owner"))

	require.Eventually(t, func() bool { return tr.Active() == 0 }, time.Second, 10*time.Millisecond)
}

func TestTransport_Head(t *testing.T) {
	store, srv := newFakeStore(t)
	store.put("/bucket/doc.txt", []byte("hello"), "text/plain", nil)

	rec := testutil.NewEventRecorder()
	_, err := newTestTransport(t, srv).Start(context.Background(),
		&transfertypes.Request{Method: http.MethodHead, URL: "s3://bucket/doc.txt"}, rec)
	require.NoError(t, err)
	waitDone(t, rec)

	require.NoError(t, rec.Err())
	assert.Equal(t, []string{"response", "finish"}, rec.Kinds())
	assert.Equal(t, int64(5), rec.Response().ExpectedLength)
	assert.Equal(t, "text/plain", rec.Response().ContentType)
	assert.Empty(t, rec.Data())
}

func TestTransport_Put(t *testing.T) {
	png := append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), testutil.GenerateRandomData(2048)...)
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "images/logo.png", png, 0o644))

	tests := []struct {
		name            string
		req             *transfertypes.Request
		wantPath        string
		wantContentType string
		wantOwner       string
	}{
		{
			name: "reader body with explicit type",
			req: &transfertypes.Request{
				URL:         "s3://bucket/upload.bin",
				Body:        bytes.NewReader(png),
				ContentType: "application/x-custom",
				Metadata:    map[string]string{"owner": "ci"},
			},
			wantPath:        "/bucket/upload.bin",
			wantContentType: "application/x-custom",
			wantOwner:       "ci",
		},
		{
			name: "file body with detected type",
			req: &transfertypes.Request{
				Method:   http.MethodPut,
				URL:      "s3://bucket/logo.png",
				BodyPath: "images/logo.png",
			},
			wantPath:        "/bucket/logo.png",
			wantContentType: "image/png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, srv := newFakeStore(t)
			rec := testutil.NewEventRecorder()
			_, err := newTestTransport(t, srv, WithFilesystem(fs)).Start(context.Background(), tt.req, rec)
			require.NoError(t, err)
			waitDone(t, rec)

			require.NoError(t, rec.Err())
			put := store.lastPut()
			require.NotNil(t, put)
			assert.Equal(t, tt.wantPath, put.URL.Path)
			assert.Equal(t, tt.wantContentType, put.Header.Get("Content-Type"))
			assert.Equal(t, tt.wantOwner, put.Header.Get("X-Amz-Meta-Owner"))

			uploads := rec.Uploads()
			require.NotEmpty(t, uploads)
			assert.Equal(t, testutil.ProgressUpdate{Loaded: int64(len(png)), Expected: int64(len(png))},
				uploads[len(uploads)-1])

			kinds := rec.Kinds()
			assert.Equal(t, []string{"upload", "response", "finish"}, kinds)
			assert.Equal(t, "uploaded", rec.Response().ETag)
			assert.Equal(t, tt.wantContentType, rec.Response().ContentType)
		})
	}
}

func TestTransport_MissingObject(t *testing.T) {
	tests := []struct {
		name   string
		method string
	}{
		{name: "get", method: http.MethodGet},
		{name: "head", method: http.MethodHead},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, srv := newFakeStore(t)
			rec := testutil.NewEventRecorder()
			_, err := newTestTransport(t, srv).Start(context.Background(),
				&transfertypes.Request{Method: tt.method, URL: "s3://bucket/missing.txt"}, rec)
			require.NoError(t, err)
			waitDone(t, rec)

			assert.ErrorIs(t, rec.Err(), errors.ErrObjectNotFound)
			assert.Equal(t, errors.CodeNotFound, errors.Code(rec.Err()))
			assert.Equal(t, []string{"fail"}, rec.Kinds())
			assert.Contains(t, rec.Err().Error(), "s3://bucket/missing.txt")
		})
	}
}

func TestTransport_Abort(t *testing.T) {
	store, srv := newFakeStore(t)
	store.block = make(chan struct{})
	defer close(store.block)

	tr := newTestTransport(t, srv)
	rec := testutil.NewEventRecorder()
	h, err := tr.Start(context.Background(), &transfertypes.Request{URL: "s3://bucket/slow.bin"}, rec)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return tr.Active() == 1 }, time.Second, 5*time.Millisecond)
	tr.Abort(h)
	waitDone(t, rec)

	assert.True(t, errors.IsAborted(rec.Err()))
	require.Eventually(t, func() bool { return tr.Active() == 0 }, time.Second, 10*time.Millisecond)
}

func TestTransport_StartValidation(t *testing.T) {
	tr, err := New("localhost:9000", WithCredentials("a", "b", ""), WithSecure(false))
	require.NoError(t, err)

	tests := []struct {
		name    string
		req     *transfertypes.Request
		wantErr error
	}{
		{name: "nil request", req: nil, wantErr: errors.ErrInvalidInput},
		{name: "wrong scheme", req: &transfertypes.Request{URL: "https://bucket/key"}, wantErr: errors.ErrUnsupported},
		{name: "invalid bucket", req: &transfertypes.Request{URL: "s3://Bad_Bucket/key"}, wantErr: errors.ErrInvalidBucketName},
		{name: "put without body", req: &transfertypes.Request{Method: http.MethodPut, URL: "s3://bucket/key"}, wantErr: errors.ErrInvalidInput},
		{name: "unsupported method", req: &transfertypes.Request{Method: http.MethodDelete, URL: "s3://bucket/key"}, wantErr: errors.ErrUnsupported},
		{
			name: "reserved metadata",
			req: &transfertypes.Request{
				URL:      "s3://bucket/key",
				Body:     strings.NewReader("x"),
				Metadata: map[string]string{"x-amz-date": "now"},
			},
			wantErr: errors.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := tr.Start(context.Background(), tt.req, testutil.NewEventRecorder())
			assert.Nil(t, h)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, tr.Active())
		})
	}
}
