package transfer

import (
	"sync"

	"github.com/input-output-hk/catalyst-forge-libs/transfer/errors"
	"github.com/input-output-hk/catalyst-forge-libs/transfer/transfertypes"
)

// Registry maps group ids to their pending group action.
//
// Adapters consult the registry on every transport event, so an action set
// here reaches every member of the group the next time that member hears from
// its transport. The registry never enumerates or notifies adapters itself.
//
// Thread Safety: all methods are safe for concurrent use, including from
// transport callbacks running on arbitrary goroutines.
type Registry struct {
	// actions holds the explicitly configured actions indexed by group.
	actions map[transfertypes.GroupID]transfertypes.GroupAction

	// mu protects concurrent access to actions.
	mu sync.RWMutex
}

// NewRegistry creates an empty registry. Create one per process (or per
// isolated set of transfers) and share it with every adapter that needs it.
func NewRegistry() *Registry {
	return &Registry{
		actions: make(map[transfertypes.GroupID]transfertypes.GroupAction),
	}
}

// SetAction sets the action for a group, replacing any previous one.
// Setting ActionNone keeps the entry, so later lookups report ActionNone rather
// than ActionUndefined. Setting ActionUndefined removes the entry.
// Concurrent calls for the same group race; the last write wins.
func (r *Registry) SetAction(action transfertypes.GroupAction, group transfertypes.GroupID) error {
	if group == "" {
		return errors.NewError("setAction", errors.ErrInvalidInput).
			WithMessage("group id cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if action == transfertypes.ActionUndefined {
		delete(r.actions, group)
		return nil
	}
	r.actions[group] = action
	return nil
}

// ActionForGroup returns the current action for a group, or ActionUndefined if
// the group was never configured.
func (r *Registry) ActionForGroup(group transfertypes.GroupID) transfertypes.GroupAction {
	r.mu.RLock()
	defer r.mu.RUnlock()

	action, ok := r.actions[group]
	if !ok {
		return transfertypes.ActionUndefined
	}
	return action
}

// Remove deletes the entry for a group. Later lookups report ActionUndefined.
func (r *Registry) Remove(group transfertypes.GroupID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.actions, group)
}

// Reset removes every entry.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = make(map[transfertypes.GroupID]transfertypes.GroupAction)
}

// Len returns the number of configured groups.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.actions)
}
