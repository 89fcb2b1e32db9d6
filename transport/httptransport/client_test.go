package httptransport_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/transfer"
	"github.com/input-output-hk/catalyst-forge-libs/transfer/errors"
	"github.com/input-output-hk/catalyst-forge-libs/transfer/internal/testutil"
	"github.com/input-output-hk/catalyst-forge-libs/transfer/transfertypes"
	"github.com/input-output-hk/catalyst-forge-libs/transfer/transport/httptransport"
)

// slowServer streams one chunk per tick until the client goes away.
func slowServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		ticker := time.NewTicker(5 * time.Millisecond)
		defer ticker.Stop()
		for {
			if _, err := w.Write([]byte("tick\n")); err != nil {
				return
			}
			w.(http.Flusher).Flush()
			select {
			case <-r.Context().Done():
				return
			case <-ticker.C:
			}
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestClient_CancelGroupOverHTTP(t *testing.T) {
	server := slowServer(t)
	tr := httptransport.New()
	client, err := transfer.NewClient(tr)
	require.NoError(t, err)

	group := transfer.NewGroupID()
	recs := make([]*testutil.CompletionRecorder, 3)
	for i := range recs {
		recs[i] = testutil.NewCompletionRecorder()
		_, _, err := client.Start(context.Background(),
			&transfertypes.Request{URL: server.URL},
			recs[i].Func(),
			transfer.WithGroup(group),
		)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, client.Pending(group))

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, client.Cancel(group))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, client.Wait(ctx, group))

	for i, rec := range recs {
		require.Equal(t, 1, rec.Count(), "transfer %d", i)
		assert.True(t, errors.IsCancelled(rec.Last().Err), "transfer %d: %v", i, rec.Last().Err)
	}
	require.Eventually(t, func() bool { return tr.Active() == 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestClient_DownloadOverHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("hello over http"))
	}))
	defer server.Close()

	client, err := transfer.NewClient(httptransport.New())
	require.NoError(t, err)

	rec := testutil.NewCompletionRecorder()
	progress := &testutil.ProgressRecorder{}
	adapter, _, err := client.Start(context.Background(),
		&transfertypes.Request{URL: server.URL},
		rec.Func(),
		transfer.WithDownloadProgress(progress.Func()),
	)
	require.NoError(t, err)

	select {
	case <-adapter.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("transfer did not complete")
	}

	got := rec.Last()
	require.NoError(t, got.Err)
	assert.Equal(t, "hello over http", string(got.Data))
	assert.Equal(t, "text/plain", got.Response.ContentType)

	updates := progress.Updates()
	require.NotEmpty(t, updates)
	assert.Equal(t, testutil.ProgressUpdate{Loaded: 15, Expected: 15}, updates[len(updates)-1])
}
