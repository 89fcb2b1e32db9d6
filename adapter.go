package transfer

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/input-output-hk/catalyst-forge-libs/transfer/errors"
	"github.com/input-output-hk/catalyst-forge-libs/transfer/internal/validation"
	"github.com/input-output-hk/catalyst-forge-libs/transfer/transfertypes"
)

// Adapter turns the per-event callbacks of a Transport into a small set of
// user handlers: download progress, upload progress, authentication and a
// single completion.
//
// Before acting on a response, data chunk, upload progress or challenge event
// the adapter looks up its group's action in the Registry. When the action is
// ActionCancel it aborts the transport and completes with errors.ErrCancelled.
// Cancellation is therefore observed on the next event only; an idle transfer
// is not interrupted until its transport reports something.
//
// Handlers run on the adapter's executor. Buffer and state updates happen on
// the transport's goroutine before the event method returns.
type Adapter struct {
	downloadProgress transfertypes.ProgressFunc
	uploadProgress   transfertypes.ProgressFunc
	authenticate     transfertypes.AuthenticationFunc
	completion       transfertypes.CompletionFunc

	group       transfertypes.GroupID
	registry    *Registry
	membership  *Membership
	executor    transfertypes.Executor
	transport   transfertypes.Transport
	logger      *slog.Logger
	releaseHook runtime.Cleanup

	// mu protects the fields below.
	mu         sync.Mutex
	handle     transfertypes.Handle
	data       []byte
	response   *transfertypes.Response
	terminated bool
	err        error

	finished atomic.Bool
	done     chan struct{}
}

var _ transfertypes.Events = (*Adapter)(nil)

// NewAdapter creates an adapter that reports to completion. The completion
// handler is required and runs exactly once, when the transfer succeeds,
// fails or is cancelled through its group.
//
// If a group is configured the adapter joins it before NewAdapter returns,
// so the group is never seen as empty while the adapter is being set up.
//
// Example:
//
//	adapter, err := transfer.NewAdapter(
//	    func(data []byte, resp *transfertypes.Response, err error) { ... },
//	    transfer.WithDownloadProgress(func(loaded, expected int64) { ... }),
//	    transfer.WithGroup("batch1"),
//	    transfer.WithRegistry(registry),
//	    transfer.WithCoordinator(coordinator),
//	)
func NewAdapter(completion transfertypes.CompletionFunc, opts ...Option) (*Adapter, error) {
	if completion == nil {
		return nil, errors.NewError("newAdapter", errors.ErrInvalidInput).
			WithMessage("completion handler is required")
	}

	options := &adapterOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if err := validation.ValidateGroupID(string(options.group)); err != nil {
		return nil, err
	}
	if options.group != "" && options.registry == nil {
		return nil, errors.NewGroupError("newAdapter", string(options.group), errors.ErrInvalidInput).
			WithMessage("a group requires a registry")
	}
	if options.group != "" && options.coordinator == nil {
		return nil, errors.NewGroupError("newAdapter", string(options.group), errors.ErrInvalidInput).
			WithMessage("a group requires a coordinator")
	}

	executor := options.executor
	if executor == nil {
		executor = NewSerialExecutor()
	}

	a := &Adapter{
		downloadProgress: options.downloadProgress,
		uploadProgress:   options.uploadProgress,
		authenticate:     options.authenticate,
		completion:       completion,
		group:            options.group,
		registry:         options.registry,
		executor:         executor,
		transport:        options.transport,
		logger:           options.logger,
		done:             make(chan struct{}),
	}

	if options.group != "" {
		a.membership = options.coordinator.Join(options.group)
		// An adapter dropped without reaching a terminal state still leaves its group.
		a.releaseHook = runtime.AddCleanup(a, func(m *Membership) { m.Leave() }, a.membership)
	}

	return a, nil
}

// Group returns the adapter's group, or the empty id.
func (a *Adapter) Group() transfertypes.GroupID {
	return a.group
}

// Handle returns the handle of the transfer driving this adapter, once known.
func (a *Adapter) Handle() transfertypes.Handle {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.handle
}

// Data returns a copy of the data accumulated so far.
func (a *Adapter) Data() []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.data == nil {
		return nil
	}
	out := make([]byte, len(a.data))
	copy(out, a.data)
	return out
}

// Response returns a copy of the response metadata, or nil if none was received.
func (a *Adapter) Response() *transfertypes.Response {
	a.mu.Lock()
	defer a.mu.Unlock()
	return cloneResponse(a.response)
}

// IsFinished reports whether the completion handler has started running.
// It never reverts to false.
func (a *Adapter) IsFinished() bool {
	return a.finished.Load()
}

// Done returns a channel closed after the completion handler has returned,
// or after Close discarded the adapter.
func (a *Adapter) Done() <-chan struct{} {
	return a.done
}

// Err returns the terminal error. It is nil before termination and on success.
func (a *Adapter) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// OnResponse records the response metadata and clears any buffered data.
// Only the first response of a transfer is recorded.
func (a *Adapter) OnResponse(h transfertypes.Handle, resp *transfertypes.Response) {
	if a.cancelled(h, "response") {
		return
	}

	a.mu.Lock()
	a.noteHandle(h)
	if a.terminated {
		a.mu.Unlock()
		a.warn("response after terminal state", h)
		return
	}
	if a.response != nil || resp == nil {
		a.mu.Unlock()
		a.debug("ignoring response", h)
		return
	}
	a.response = cloneResponse(resp)
	a.data = []byte{}
	a.mu.Unlock()

	if a.logger != nil {
		a.logger.Debug("response received",
			"transfer", handleID(h),
			"group", string(a.group),
			"status", resp.StatusCode,
			"expected_length", resp.ExpectedLength)
	}
}

// OnData appends chunk to the buffer and reports download progress.
func (a *Adapter) OnData(h transfertypes.Handle, chunk []byte) {
	if a.cancelled(h, "data") {
		return
	}

	a.mu.Lock()
	a.noteHandle(h)
	if a.terminated {
		a.mu.Unlock()
		a.warn("data after terminal state", h)
		return
	}
	a.data = append(a.data, chunk...)
	loaded := int64(len(a.data))
	expected := transfertypes.UnknownLength
	if a.response != nil {
		expected = a.response.ExpectedLength
	}
	a.mu.Unlock()

	if fn := a.downloadProgress; fn != nil {
		a.executor.Execute(func() { fn(loaded, expected) })
	}
}

// OnUploadProgress forwards upload progress. expected is passed through as
// reported; it may change when the transport retransmits the body.
func (a *Adapter) OnUploadProgress(h transfertypes.Handle, sent, expected int64) {
	if a.cancelled(h, "upload progress") {
		return
	}

	a.mu.Lock()
	a.noteHandle(h)
	terminated := a.terminated
	a.mu.Unlock()
	if terminated {
		a.warn("upload progress after terminal state", h)
		return
	}

	if fn := a.uploadProgress; fn != nil {
		a.executor.Execute(func() { fn(sent, expected) })
	}
}

// OnChallenge forwards an authentication challenge to the authentication
// handler. Without a handler the transport is told to use default handling.
func (a *Adapter) OnChallenge(h transfertypes.Handle, c transfertypes.Challenge) transfertypes.ChallengeDisposition {
	if a.cancelled(h, "challenge") {
		return transfertypes.ChallengeCancelled
	}

	a.mu.Lock()
	a.noteHandle(h)
	terminated := a.terminated
	a.mu.Unlock()
	if terminated {
		return transfertypes.ChallengeCancelled
	}

	fn := a.authenticate
	if fn == nil {
		return transfertypes.ChallengeDefault
	}
	a.executor.Execute(func() { fn(h, c) })
	return transfertypes.ChallengeHandled
}

// OnFinish completes the transfer successfully.
func (a *Adapter) OnFinish(h transfertypes.Handle) {
	a.terminate(h, nil)
}

// OnFail completes the transfer with err, surfaced unchanged.
func (a *Adapter) OnFail(h transfertypes.Handle, err error) {
	if err == nil {
		err = errors.NewError("fail", errors.ErrAborted).
			WithTransfer(handleID(h)).
			WithMessage("transport reported a failure without an error")
	}
	a.terminate(h, err)
}

// Close discards an adapter that will not reach a terminal state. It leaves
// the group and aborts the transfer if one is known, without invoking the
// completion handler. Close after termination is a no-op.
func (a *Adapter) Close() error {
	a.mu.Lock()
	if a.terminated {
		a.mu.Unlock()
		return nil
	}
	a.terminated = true
	h := a.handle
	a.mu.Unlock()

	if a.transport != nil && h != nil {
		a.transport.Abort(h)
	}
	a.releaseHook.Stop()
	a.membership.Leave()
	close(a.done)

	a.debug("adapter discarded", h)
	return nil
}

// cancelled checks the group action and, for ActionCancel, terminates the
// adapter and aborts the transport.
func (a *Adapter) cancelled(h transfertypes.Handle, event string) bool {
	if a.group == "" || a.registry == nil {
		return false
	}
	if a.registry.ActionForGroup(a.group) != transfertypes.ActionCancel {
		return false
	}

	err := errors.NewTransferError("cancel", string(a.group), handleID(h), errors.ErrCancelled).
		WithMessage("observed on " + event)
	if !a.terminate(h, err) {
		return true
	}

	if a.logger != nil {
		a.logger.Info("group cancellation observed",
			"transfer", handleID(h),
			"group", string(a.group),
			"event", event)
	}
	if a.transport != nil && h != nil {
		a.transport.Abort(h)
	}
	return true
}

// terminate moves the adapter to its terminal state and schedules the
// completion handler. It reports false if the adapter had already terminated.
func (a *Adapter) terminate(h transfertypes.Handle, err error) bool {
	a.mu.Lock()
	a.noteHandle(h)
	if a.terminated {
		a.mu.Unlock()
		a.debug("ignoring terminal event after termination", h)
		return false
	}
	a.terminated = true
	a.err = err
	data, resp := a.data, cloneResponse(a.response)
	a.mu.Unlock()

	if a.logger != nil {
		if err != nil {
			a.logger.Debug("transfer failed",
				"transfer", handleID(h),
				"group", string(a.group),
				"bytes", len(data),
				"error", err)
		} else {
			a.logger.Debug("transfer finished",
				"transfer", handleID(h),
				"group", string(a.group),
				"bytes", len(data))
		}
	}

	a.releaseHook.Stop()
	completion, membership := a.completion, a.membership
	a.executor.Execute(func() {
		a.finished.Store(true)
		completion(data, resp, err)
		close(a.done)
		membership.Leave()
	})
	return true
}

func cloneResponse(resp *transfertypes.Response) *transfertypes.Response {
	if resp == nil {
		return nil
	}
	out := *resp
	out.Header = resp.Header.Clone()
	return &out
}

// noteHandle records the transfer handle. Callers hold mu.
func (a *Adapter) noteHandle(h transfertypes.Handle) {
	if a.handle == nil && h != nil {
		a.handle = h
	}
}

// bind records the handle returned by Transport.Start.
func (a *Adapter) bind(h transfertypes.Handle) {
	a.mu.Lock()
	a.noteHandle(h)
	a.mu.Unlock()
}

func (a *Adapter) debug(msg string, h transfertypes.Handle) {
	if a.logger != nil {
		a.logger.Debug(msg, "transfer", handleID(h), "group", string(a.group))
	}
}

func (a *Adapter) warn(msg string, h transfertypes.Handle) {
	if a.logger != nil {
		a.logger.Warn(msg, "transfer", handleID(h), "group", string(a.group))
	}
}

func handleID(h transfertypes.Handle) string {
	if h == nil {
		return ""
	}
	return h.ID()
}
