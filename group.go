package transfer

import (
	"context"
	"sync"

	"github.com/input-output-hk/catalyst-forge-libs/transfer/transfertypes"
)

// closedChan is returned by Done for groups without pending members.
var closedChan = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// Coordinator counts the pending members of each group so callers can wait
// for "every transfer in this group is done" without polling adapters.
//
// Thread Safety: all methods are safe for concurrent use.
type Coordinator struct {
	mu     sync.Mutex
	groups map[transfertypes.GroupID]*groupState
}

type groupState struct {
	pending  int
	drained  chan struct{}
	notifies []notification
}

type notification struct {
	executor transfertypes.Executor
	fn       func()
}

// NewCoordinator creates a coordinator with no groups.
func NewCoordinator() *Coordinator {
	return &Coordinator{
		groups: make(map[transfertypes.GroupID]*groupState),
	}
}

// Membership is one member's hold on a group. Leave releases it exactly once;
// further calls are no-ops. A nil Membership is valid and does nothing.
type Membership struct {
	coordinator *Coordinator
	group       transfertypes.GroupID
	once        sync.Once
}

// Join registers a pending member of group and returns its membership.
// It returns nil for the empty group id.
func (c *Coordinator) Join(group transfertypes.GroupID) *Membership {
	if group == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.groups[group]
	if !ok {
		st = &groupState{}
		c.groups[group] = st
	}
	if st.pending == 0 {
		st.drained = make(chan struct{})
	}
	st.pending++

	return &Membership{coordinator: c, group: group}
}

// Group returns the group this membership belongs to.
func (m *Membership) Group() transfertypes.GroupID {
	if m == nil {
		return ""
	}
	return m.group
}

// Leave releases the membership.
func (m *Membership) Leave() {
	if m == nil {
		return
	}
	m.once.Do(func() {
		m.coordinator.leave(m.group)
	})
}

func (c *Coordinator) leave(group transfertypes.GroupID) {
	c.mu.Lock()
	st, ok := c.groups[group]
	if !ok || st.pending == 0 {
		c.mu.Unlock()
		return
	}

	st.pending--
	if st.pending > 0 {
		c.mu.Unlock()
		return
	}

	close(st.drained)
	notifies := st.notifies
	delete(c.groups, group)
	c.mu.Unlock()

	for _, n := range notifies {
		n.executor.Execute(n.fn)
	}
}

// Pending returns the number of members of group that have not left yet.
func (c *Coordinator) Pending(group transfertypes.GroupID) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if st, ok := c.groups[group]; ok {
		return st.pending
	}
	return 0
}

// Done returns a channel that is closed once group has no pending members.
// For a group that is currently empty the returned channel is already closed.
func (c *Coordinator) Done(group transfertypes.GroupID) <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	if st, ok := c.groups[group]; ok && st.pending > 0 {
		return st.drained
	}
	return closedChan
}

// Wait blocks until group has no pending members or ctx is done.
func (c *Coordinator) Wait(ctx context.Context, group transfertypes.GroupID) error {
	select {
	case <-c.Done(group):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Notify schedules fn on executor once group next has no pending members.
// If the group is empty already, fn is scheduled immediately.
// A nil executor runs fn on the goroutine that releases the last member.
func (c *Coordinator) Notify(group transfertypes.GroupID, executor transfertypes.Executor, fn func()) {
	if fn == nil {
		return
	}
	if executor == nil {
		executor = InlineExecutor()
	}

	c.mu.Lock()
	st, ok := c.groups[group]
	if !ok || st.pending == 0 {
		c.mu.Unlock()
		executor.Execute(fn)
		return
	}
	st.notifies = append(st.notifies, notification{executor: executor, fn: fn})
	c.mu.Unlock()
}
