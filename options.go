// Package transfer provides functional options for configuring adapters and clients.
// These options follow the functional options pattern for clean, composable configuration.
package transfer

import (
	"log/slog"

	"github.com/input-output-hk/catalyst-forge-libs/transfer/transfertypes"
)

// adapterOptions holds configuration options for an Adapter.
type adapterOptions struct {
	downloadProgress transfertypes.ProgressFunc
	uploadProgress   transfertypes.ProgressFunc
	authenticate     transfertypes.AuthenticationFunc
	group            transfertypes.GroupID
	registry         *Registry
	coordinator      *Coordinator
	executor         transfertypes.Executor
	transport        transfertypes.Transport
	logger           *slog.Logger
}

// Option is a functional option for configuring an Adapter.
type Option func(*adapterOptions)

// WithDownloadProgress sets the handler invoked after each received data chunk.
func WithDownloadProgress(fn transfertypes.ProgressFunc) Option {
	return func(o *adapterOptions) {
		o.downloadProgress = fn
	}
}

// WithUploadProgress sets the handler invoked as the transport sends the request body.
func WithUploadProgress(fn transfertypes.ProgressFunc) Option {
	return func(o *adapterOptions) {
		o.uploadProgress = fn
	}
}

// WithAuthentication sets the handler that resolves authentication challenges.
// Without it the transport applies its default challenge handling.
func WithAuthentication(fn transfertypes.AuthenticationFunc) Option {
	return func(o *adapterOptions) {
		o.authenticate = fn
	}
}

// WithGroup makes the adapter a member of group. A group requires a registry
// and a coordinator.
func WithGroup(group transfertypes.GroupID) Option {
	return func(o *adapterOptions) {
		o.group = group
	}
}

// WithRegistry sets the registry consulted for the group action on every event.
func WithRegistry(registry *Registry) Option {
	return func(o *adapterOptions) {
		o.registry = registry
	}
}

// WithCoordinator sets the coordinator the adapter joins when it has a group.
func WithCoordinator(coordinator *Coordinator) Option {
	return func(o *adapterOptions) {
		o.coordinator = coordinator
	}
}

// WithExecutor sets the execution context handlers run on.
// Default is a new serial executor per adapter.
func WithExecutor(executor transfertypes.Executor) Option {
	return func(o *adapterOptions) {
		o.executor = executor
	}
}

// WithTransport sets the transport the adapter aborts when its group is cancelled.
func WithTransport(transport transfertypes.Transport) Option {
	return func(o *adapterOptions) {
		o.transport = transport
	}
}

// WithLogger configures the adapter with a custom logger.
// If logger is nil, logging will be disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(o *adapterOptions) {
		o.logger = logger
	}
}

// clientOptions holds configuration options for a Client.
type clientOptions struct {
	registry    *Registry
	coordinator *Coordinator
	executor    transfertypes.Executor
	logger      *slog.Logger
}

// ClientOption is a functional option for configuring a Client.
type ClientOption func(*clientOptions)

// WithClientRegistry shares an existing registry with the client.
// Default is a new registry owned by the client.
func WithClientRegistry(registry *Registry) ClientOption {
	return func(o *clientOptions) {
		o.registry = registry
	}
}

// WithClientCoordinator shares an existing coordinator with the client.
// Default is a new coordinator owned by the client.
func WithClientCoordinator(coordinator *Coordinator) ClientOption {
	return func(o *clientOptions) {
		o.coordinator = coordinator
	}
}

// WithClientExecutor sets the executor used by every adapter the client starts.
// Default is a new serial executor per adapter.
func WithClientExecutor(executor transfertypes.Executor) ClientOption {
	return func(o *clientOptions) {
		o.executor = executor
	}
}

// WithClientLogger configures the client and its adapters with a logger.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(o *clientOptions) {
		o.logger = logger
	}
}
