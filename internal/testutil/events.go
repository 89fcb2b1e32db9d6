package testutil

import (
	"sync"

	"github.com/input-output-hk/catalyst-forge-libs/transfer/transfertypes"
)

// EventRecorder is a transfertypes.Events sink that records what a transport
// reports. ChallengeFunc, when set, answers OnChallenge; otherwise
// ChallengeDefault is returned.
type EventRecorder struct {
	ChallengeFunc func(transfertypes.Handle, transfertypes.Challenge) transfertypes.ChallengeDisposition

	mu         sync.Mutex
	kinds      []string
	response   *transfertypes.Response
	data       []byte
	uploads    []ProgressUpdate
	challenges []transfertypes.Challenge
	err        error
	once       sync.Once
	done       chan struct{}
}

var _ transfertypes.Events = (*EventRecorder)(nil)

// NewEventRecorder creates an empty recorder.
func NewEventRecorder() *EventRecorder {
	return &EventRecorder{done: make(chan struct{})}
}

func (r *EventRecorder) record(kind string) {
	r.kinds = append(r.kinds, kind)
}

// OnResponse records the response.
func (r *EventRecorder) OnResponse(_ transfertypes.Handle, resp *transfertypes.Response) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("response")
	r.response = resp
}

// OnData records a copy of chunk.
func (r *EventRecorder) OnData(_ transfertypes.Handle, chunk []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("data")
	r.data = append(r.data, chunk...)
}

// OnUploadProgress records the progress update.
func (r *EventRecorder) OnUploadProgress(_ transfertypes.Handle, sent, expected int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("upload")
	r.uploads = append(r.uploads, ProgressUpdate{Loaded: sent, Expected: expected})
}

// OnChallenge records the challenge and answers it.
func (r *EventRecorder) OnChallenge(
	h transfertypes.Handle,
	c transfertypes.Challenge,
) transfertypes.ChallengeDisposition {
	r.mu.Lock()
	r.record("challenge")
	r.challenges = append(r.challenges, c)
	fn := r.ChallengeFunc
	r.mu.Unlock()

	if fn == nil {
		return transfertypes.ChallengeDefault
	}
	return fn(h, c)
}

// OnFinish records successful completion.
func (r *EventRecorder) OnFinish(transfertypes.Handle) {
	r.mu.Lock()
	r.record("finish")
	r.mu.Unlock()
	r.once.Do(func() { close(r.done) })
}

// OnFail records the failure.
func (r *EventRecorder) OnFail(_ transfertypes.Handle, err error) {
	r.mu.Lock()
	r.record("fail")
	r.err = err
	r.mu.Unlock()
	r.once.Do(func() { close(r.done) })
}

// Done is closed after the first OnFinish or OnFail.
func (r *EventRecorder) Done() <-chan struct{} {
	return r.done
}

// Kinds returns the recorded event kinds with consecutive duplicates collapsed.
func (r *EventRecorder) Kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, k := range r.kinds {
		if len(out) > 0 && out[len(out)-1] == k {
			continue
		}
		out = append(out, k)
	}
	return out
}

// Response returns the recorded response.
func (r *EventRecorder) Response() *transfertypes.Response {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.response
}

// Data returns the concatenated data chunks.
func (r *EventRecorder) Data() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]byte(nil), r.data...)
}

// Uploads returns the recorded upload progress updates.
func (r *EventRecorder) Uploads() []ProgressUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ProgressUpdate(nil), r.uploads...)
}

// Challenges returns the recorded challenges.
func (r *EventRecorder) Challenges() []transfertypes.Challenge {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]transfertypes.Challenge(nil), r.challenges...)
}

// Err returns the error passed to OnFail.
func (r *EventRecorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}
