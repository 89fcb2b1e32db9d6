// Package testutil provides recording handlers for adapter tests.
package testutil

import (
	"sync"

	"github.com/input-output-hk/catalyst-forge-libs/transfer/transfertypes"
)

// ProgressUpdate represents a single progress update event.
type ProgressUpdate struct {
	Loaded   int64
	Expected int64
}

// ProgressRecorder records progress handler invocations.
type ProgressRecorder struct {
	mu      sync.Mutex
	updates []ProgressUpdate
}

// Func returns a ProgressFunc that records into r.
func (r *ProgressRecorder) Func() transfertypes.ProgressFunc {
	return func(loaded, expected int64) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.updates = append(r.updates, ProgressUpdate{Loaded: loaded, Expected: expected})
	}
}

// Updates returns the recorded updates in call order.
func (r *ProgressRecorder) Updates() []ProgressUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ProgressUpdate, len(r.updates))
	copy(out, r.updates)
	return out
}

// Completion is one recorded completion handler invocation.
type Completion struct {
	Data     []byte
	Response *transfertypes.Response
	Err      error
}

// CompletionRecorder records completion handler invocations.
type CompletionRecorder struct {
	mu    sync.Mutex
	calls []Completion
	once  sync.Once
	done  chan struct{}
}

// NewCompletionRecorder creates an empty recorder.
func NewCompletionRecorder() *CompletionRecorder {
	return &CompletionRecorder{done: make(chan struct{})}
}

// Func returns a CompletionFunc that records into r.
func (r *CompletionRecorder) Func() transfertypes.CompletionFunc {
	return func(data []byte, resp *transfertypes.Response, err error) {
		r.mu.Lock()
		r.calls = append(r.calls, Completion{Data: data, Response: resp, Err: err})
		r.mu.Unlock()
		r.once.Do(func() { close(r.done) })
	}
}

// Done is closed after the first recorded call.
func (r *CompletionRecorder) Done() <-chan struct{} {
	return r.done
}

// Calls returns the recorded calls.
func (r *CompletionRecorder) Calls() []Completion {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Completion, len(r.calls))
	copy(out, r.calls)
	return out
}

// Count returns the number of recorded calls.
func (r *CompletionRecorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// Last returns the most recent call. It panics if there is none.
func (r *CompletionRecorder) Last() Completion {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[len(r.calls)-1]
}
