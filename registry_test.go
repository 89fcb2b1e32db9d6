package transfer

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/transfer/errors"
	"github.com/input-output-hk/catalyst-forge-libs/transfer/transfertypes"
)

func TestRegistry_ActionForGroup(t *testing.T) {
	tests := []struct {
		name  string
		setup func(r *Registry)
		group transfertypes.GroupID
		want  transfertypes.GroupAction
	}{
		{
			name:  "never configured",
			setup: func(r *Registry) {},
			group: "unknown",
			want:  transfertypes.ActionUndefined,
		},
		{
			name: "explicit none is not undefined",
			setup: func(r *Registry) {
				require.NoError(t, r.SetAction(transfertypes.ActionNone, "g"))
			},
			group: "g",
			want:  transfertypes.ActionNone,
		},
		{
			name: "cancel",
			setup: func(r *Registry) {
				require.NoError(t, r.SetAction(transfertypes.ActionCancel, "g"))
			},
			group: "g",
			want:  transfertypes.ActionCancel,
		},
		{
			name: "overwrite does not combine",
			setup: func(r *Registry) {
				require.NoError(t, r.SetAction(transfertypes.ActionCancel, "g"))
				require.NoError(t, r.SetAction(transfertypes.ActionNone, "g"))
			},
			group: "g",
			want:  transfertypes.ActionNone,
		},
		{
			name: "setting undefined removes the entry",
			setup: func(r *Registry) {
				require.NoError(t, r.SetAction(transfertypes.ActionCancel, "g"))
				require.NoError(t, r.SetAction(transfertypes.ActionUndefined, "g"))
			},
			group: "g",
			want:  transfertypes.ActionUndefined,
		},
		{
			name: "other groups unaffected",
			setup: func(r *Registry) {
				require.NoError(t, r.SetAction(transfertypes.ActionCancel, "a"))
			},
			group: "b",
			want:  transfertypes.ActionUndefined,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			tt.setup(r)
			assert.Equal(t, tt.want, r.ActionForGroup(tt.group))
			// repeated lookups are stable
			assert.Equal(t, tt.want, r.ActionForGroup(tt.group))
		})
	}
}

func TestRegistry_SetAction_EmptyGroup(t *testing.T) {
	r := NewRegistry()
	err := r.SetAction(transfertypes.ActionCancel, "")
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_RemoveAndReset(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.SetAction(transfertypes.ActionCancel, "a"))
	require.NoError(t, r.SetAction(transfertypes.ActionNone, "b"))
	assert.Equal(t, 2, r.Len())

	r.Remove("a")
	assert.Equal(t, transfertypes.ActionUndefined, r.ActionForGroup("a"))
	assert.Equal(t, transfertypes.ActionNone, r.ActionForGroup("b"))

	r.Reset()
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, transfertypes.ActionUndefined, r.ActionForGroup("b"))
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	const goroutines = 16
	const iterations = 1000

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(2)
		group := transfertypes.GroupID(fmt.Sprintf("g%d", i%4))
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				action := transfertypes.ActionNone
				if j%2 == 0 {
					action = transfertypes.ActionCancel
				}
				_ = r.SetAction(action, group)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				got := r.ActionForGroup(group)
				assert.Contains(t, []transfertypes.GroupAction{
					transfertypes.ActionNone,
					transfertypes.ActionCancel,
					transfertypes.ActionUndefined,
				}, got)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 4, r.Len())
}

func TestGroupAction_String(t *testing.T) {
	assert.Equal(t, "none", transfertypes.ActionNone.String())
	assert.Equal(t, "cancel", transfertypes.ActionCancel.String())
	assert.Equal(t, "undefined", transfertypes.ActionUndefined.String())
	assert.Equal(t, "unknown", transfertypes.GroupAction(7).String())
}
