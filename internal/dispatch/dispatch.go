package dispatch

import (
	"sync"
)

// Inline runs every function on the calling goroutine.
type Inline struct{}

// Execute runs fn immediately.
func (Inline) Execute(fn func()) {
	fn()
}

// Serial runs submitted functions in FIFO order, one at a time.
// A worker goroutine exists only while there is queued work, so an idle
// Serial executor holds no resources and needs no Close.
type Serial struct {
	mu      sync.Mutex
	queue   []func()
	running bool
}

// NewSerial creates an empty serial executor.
func NewSerial() *Serial {
	return &Serial{}
}

// Execute enqueues fn and returns without waiting for it to run.
func (s *Serial) Execute(fn func()) {
	if fn == nil {
		return
	}

	s.mu.Lock()
	s.queue = append(s.queue, fn)
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	go s.drain()
}

// Pending returns the number of functions waiting to run.
func (s *Serial) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

func (s *Serial) drain() {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.running = false
			s.queue = nil
			s.mu.Unlock()
			return
		}
		fn := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		s.mu.Unlock()

		fn()
	}
}
