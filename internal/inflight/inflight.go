// Package inflight tracks the running transfers of a transport so they can
// be aborted by handle.
package inflight

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/input-output-hk/catalyst-forge-libs/transfer/transfertypes"
)

// Handle identifies one transfer. Ids are random UUIDs.
type Handle string

// ID returns the handle id.
func (h Handle) ID() string {
	return string(h)
}

// Set is the set of running transfers of one transport.
//
// Thread Safety: all methods are safe for concurrent use.
type Set struct {
	mu     sync.Mutex
	active map[Handle]context.CancelFunc
}

// New creates an empty set.
func New() *Set {
	return &Set{active: make(map[Handle]context.CancelFunc)}
}

// Begin registers a new transfer and returns its handle and a context that
// is cancelled by Abort or End.
func (s *Set) Begin(ctx context.Context) (Handle, context.Context) {
	h := Handle(uuid.NewString())
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.active[h] = cancel
	s.mu.Unlock()
	return h, ctx
}

// Abort cancels the transfer's context. It reports whether the transfer was running.
func (s *Set) Abort(h transfertypes.Handle) bool {
	if h == nil {
		return false
	}
	return s.remove(Handle(h.ID()))
}

// End removes a finished transfer and releases its context.
func (s *Set) End(h Handle) {
	s.remove(h)
}

func (s *Set) remove(h Handle) bool {
	s.mu.Lock()
	cancel, ok := s.active[h]
	delete(s.active, h)
	s.mu.Unlock()

	if ok {
		cancel()
	}
	return ok
}

// Len returns the number of running transfers.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}
