//go:build integration
// +build integration

package s3transport_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/transfer"
	"github.com/input-output-hk/catalyst-forge-libs/transfer/errors"
	"github.com/input-output-hk/catalyst-forge-libs/transfer/internal/testutil"
	"github.com/input-output-hk/catalyst-forge-libs/transfer/transfertypes"
	"github.com/input-output-hk/catalyst-forge-libs/transfer/transport/s3transport"
)

func waitAdapter(t *testing.T, a *transfer.Adapter) {
	t.Helper()
	select {
	case <-a.Done():
	case <-time.After(30 * time.Second):
		t.Fatal("transfer did not complete")
	}
}

// TestIntegrationTransfers runs uploads and downloads through a Client against LocalStack.
func TestIntegrationTransfers(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	ls := testutil.StartLocalStack(t)
	bucket := testutil.GenerateTestBucketName("transfer")
	ls.CreateBucket(t, bucket)

	awsCfg, err := ls.Config(ctx)
	require.NoError(t, err)

	fs := memfs.New()
	tr, err := s3transport.New(
		s3transport.WithAWSConfig(&awsCfg),
		s3transport.WithEndpoint(ls.Endpoint()),
		s3transport.WithForcePathStyle(true),
		s3transport.WithFilesystem(fs),
	)
	require.NoError(t, err)

	client, err := transfer.NewClient(tr)
	require.NoError(t, err)

	t.Run("upload then download bytes", func(t *testing.T) {
		key := testutil.GenerateTestKey("bytes")
		url := "s3://" + bucket + "/" + key
		payload := testutil.GenerateRandomData(256 * 1024)

		upload := testutil.NewCompletionRecorder()
		uploads := &testutil.ProgressRecorder{}
		a, _, err := client.Start(ctx, &transfertypes.Request{
			URL:      url,
			Body:     bytes.NewReader(payload),
			Metadata: map[string]string{"suite": "integration"},
		}, upload.Func(), transfer.WithUploadProgress(uploads.Func()))
		require.NoError(t, err)
		waitAdapter(t, a)
		require.NoError(t, upload.Last().Err)
		assert.NotEmpty(t, upload.Last().Response.ETag)
		assert.NotEmpty(t, uploads.Updates())

		download := testutil.NewCompletionRecorder()
		downloads := &testutil.ProgressRecorder{}
		a, _, err = client.Start(ctx, &transfertypes.Request{URL: url},
			download.Func(), transfer.WithDownloadProgress(downloads.Func()))
		require.NoError(t, err)
		waitAdapter(t, a)

		got := download.Last()
		require.NoError(t, got.Err)
		assert.Equal(t, payload, got.Data)
		assert.Equal(t, "integration", got.Response.Header.Get("X-Amz-Meta-Suite"))
		updates := downloads.Updates()
		require.NotEmpty(t, updates)
		assert.Equal(t, int64(len(payload)), updates[len(updates)-1].Loaded)
	})

	t.Run("upload file and head", func(t *testing.T) {
		key := testutil.GenerateTestKey("file")
		url := "s3://" + bucket + "/" + key
		require.NoError(t, util.WriteFile(fs, "notes.txt", []byte("plain text notes"), 0o644))

		upload := testutil.NewCompletionRecorder()
		a, _, err := client.Start(ctx, &transfertypes.Request{URL: url, BodyPath: "notes.txt"}, upload.Func())
		require.NoError(t, err)
		waitAdapter(t, a)
		require.NoError(t, upload.Last().Err)

		head := testutil.NewCompletionRecorder()
		a, _, err = client.Start(ctx, &transfertypes.Request{Method: "HEAD", URL: url}, head.Func())
		require.NoError(t, err)
		waitAdapter(t, a)

		got := head.Last()
		require.NoError(t, got.Err)
		assert.Equal(t, int64(16), got.Response.ExpectedLength)
		assert.Contains(t, got.Response.ContentType, "text/plain")
		assert.Empty(t, got.Data)
	})

	t.Run("missing object", func(t *testing.T) {
		rec := testutil.NewCompletionRecorder()
		a, _, err := client.Start(ctx,
			&transfertypes.Request{URL: "s3://" + bucket + "/does-not-exist"}, rec.Func())
		require.NoError(t, err)
		waitAdapter(t, a)

		assert.True(t, errors.IsObjectNotFound(rec.Last().Err), "got %v", rec.Last().Err)
	})
}
