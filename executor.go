package transfer

import (
	"github.com/input-output-hk/catalyst-forge-libs/transfer/internal/dispatch"
	"github.com/input-output-hk/catalyst-forge-libs/transfer/transfertypes"
)

// InlineExecutor returns an executor that runs handlers on the goroutine
// delivering the transport event.
func InlineExecutor() transfertypes.Executor {
	return dispatch.Inline{}
}

// NewSerialExecutor returns an executor that runs handlers one at a time in
// submission order without blocking the transport. This is the default
// execution context of an Adapter.
func NewSerialExecutor() transfertypes.Executor {
	return dispatch.NewSerial()
}
