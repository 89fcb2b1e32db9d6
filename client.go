package transfer

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/input-output-hk/catalyst-forge-libs/transfer/errors"
	"github.com/input-output-hk/catalyst-forge-libs/transfer/transfertypes"
)

// Client starts transfers on a Transport and manages the groups they belong to.
// It owns (or shares) one Registry and one Coordinator and wires both into
// every adapter it creates.
//
// Thread Safety: all Client methods are safe for concurrent use.
type Client struct {
	transport   transfertypes.Transport
	registry    *Registry
	coordinator *Coordinator
	executor    transfertypes.Executor
	logger      *slog.Logger
}

// NewClient creates a client that starts transfers on transport.
//
// Example:
//
//	client, err := transfer.NewClient(httptransport.New(),
//	    transfer.WithClientLogger(slog.Default()),
//	)
func NewClient(transport transfertypes.Transport, opts ...ClientOption) (*Client, error) {
	if transport == nil {
		return nil, errors.NewError("newClient", errors.ErrInvalidInput).
			WithMessage("transport cannot be nil")
	}

	options := &clientOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if options.registry == nil {
		options.registry = NewRegistry()
	}
	if options.coordinator == nil {
		options.coordinator = NewCoordinator()
	}

	return &Client{
		transport:   transport,
		registry:    options.registry,
		coordinator: options.coordinator,
		executor:    options.executor,
		logger:      options.logger,
	}, nil
}

// NewGroupID returns a fresh random group id.
func NewGroupID() transfertypes.GroupID {
	return transfertypes.GroupID(uuid.New().String())
}

// Registry returns the client's registry.
func (c *Client) Registry() *Registry {
	return c.registry
}

// Coordinator returns the client's coordinator.
func (c *Client) Coordinator() *Coordinator {
	return c.coordinator
}

// Start creates an adapter for req and starts the transfer on the client's
// transport. opts are applied after the client's own wiring, so they may add
// handlers, a group or a different executor.
//
// If the transport refuses to start, the adapter is discarded (its completion
// handler is not called) and the error is returned.
func (c *Client) Start(
	ctx context.Context,
	req *transfertypes.Request,
	completion transfertypes.CompletionFunc,
	opts ...Option,
) (*Adapter, transfertypes.Handle, error) {
	if req == nil {
		return nil, nil, errors.NewError("start", errors.ErrInvalidInput).
			WithMessage("request cannot be nil")
	}

	base := []Option{
		WithRegistry(c.registry),
		WithCoordinator(c.coordinator),
		WithTransport(c.transport),
		WithLogger(c.logger),
	}
	if c.executor != nil {
		base = append(base, WithExecutor(c.executor))
	}

	adapter, err := NewAdapter(completion, append(base, opts...)...)
	if err != nil {
		return nil, nil, err
	}

	if c.logger != nil {
		c.logger.InfoContext(ctx, "starting transfer",
			"method", req.Method,
			"url", req.URL,
			"group", string(adapter.Group()))
	}

	h, err := c.transport.Start(ctx, req, adapter)
	if err != nil {
		_ = adapter.Close()
		if c.logger != nil {
			c.logger.ErrorContext(ctx, "failed to start transfer",
				"url", req.URL,
				"group", string(adapter.Group()),
				"error", err)
		}
		return nil, nil, errors.NewGroupError("start", string(adapter.Group()), err)
	}
	adapter.bind(h)

	return adapter, h, nil
}

// Cancel sets ActionCancel for group. Members abort on their next event.
// The action stays in place until ResetGroup or ForgetGroup is called.
func (c *Client) Cancel(group transfertypes.GroupID) error {
	if err := c.registry.SetAction(transfertypes.ActionCancel, group); err != nil {
		return err
	}
	if c.logger != nil {
		c.logger.Info("group cancelled",
			"group", string(group),
			"pending", c.coordinator.Pending(group))
	}
	return nil
}

// ResetGroup sets ActionNone for group, clearing a previous cancellation.
func (c *Client) ResetGroup(group transfertypes.GroupID) error {
	return c.registry.SetAction(transfertypes.ActionNone, group)
}

// ForgetGroup removes group from the registry; its action becomes ActionUndefined.
func (c *Client) ForgetGroup(group transfertypes.GroupID) {
	c.registry.Remove(group)
}

// Action returns the current action of group.
func (c *Client) Action(group transfertypes.GroupID) transfertypes.GroupAction {
	return c.registry.ActionForGroup(group)
}

// Pending returns the number of unfinished transfers in group.
func (c *Client) Pending(group transfertypes.GroupID) int {
	return c.coordinator.Pending(group)
}

// Wait blocks until every transfer in group has finished or ctx is done.
func (c *Client) Wait(ctx context.Context, group transfertypes.GroupID) error {
	if err := c.coordinator.Wait(ctx, group); err != nil {
		return errors.NewGroupError("wait", string(group), err)
	}
	return nil
}
