// Package testutil provides test utilities and mocks for the transfer module.
// This package is internal and should only be used for testing within the module.
package testutil

import (
	"context"
	"strconv"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/input-output-hk/catalyst-forge-libs/transfer/internal/s3api"
	"github.com/input-output-hk/catalyst-forge-libs/transfer/transfertypes"
)

// MockS3Client is a mock implementation of the S3API interface for testing.
// It allows customization of each S3 operation through function fields.
type MockS3Client struct {
	GetObjectFunc  func(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObjectFunc  func(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObjectFunc func(context.Context, *s3.HeadObjectInput, ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

var _ s3api.S3API = (*MockS3Client)(nil)

// GetObject mocks the S3 GetObject operation.
func (m *MockS3Client) GetObject(
	ctx context.Context,
	params *s3.GetObjectInput,
	optFns ...func(*s3.Options),
) (*s3.GetObjectOutput, error) {
	if m.GetObjectFunc != nil {
		return m.GetObjectFunc(ctx, params, optFns...)
	}
	return &s3.GetObjectOutput{}, nil
}

// PutObject mocks the S3 PutObject operation.
func (m *MockS3Client) PutObject(
	ctx context.Context,
	params *s3.PutObjectInput,
	optFns ...func(*s3.Options),
) (*s3.PutObjectOutput, error) {
	if m.PutObjectFunc != nil {
		return m.PutObjectFunc(ctx, params, optFns...)
	}
	return &s3.PutObjectOutput{}, nil
}

// HeadObject mocks the S3 HeadObject operation.
func (m *MockS3Client) HeadObject(
	ctx context.Context,
	params *s3.HeadObjectInput,
	optFns ...func(*s3.Options),
) (*s3.HeadObjectOutput, error) {
	if m.HeadObjectFunc != nil {
		return m.HeadObjectFunc(ctx, params, optFns...)
	}
	return &s3.HeadObjectOutput{}, nil
}

// Handle is a fixed transfer handle for tests.
type Handle string

// ID returns the handle id.
func (h Handle) ID() string {
	return string(h)
}

// MockTransport is a mock implementation of transfertypes.Transport.
// Start records the events sink so tests can drive callbacks by hand.
type MockTransport struct {
	StartFunc func(context.Context, *transfertypes.Request, transfertypes.Events) (transfertypes.Handle, error)

	mu      sync.Mutex
	events  []transfertypes.Events
	aborted []string
	next    int
}

var _ transfertypes.Transport = (*MockTransport)(nil)

// Start mocks starting a transfer. Without StartFunc it returns handles "t1", "t2", ...
func (m *MockTransport) Start(
	ctx context.Context,
	req *transfertypes.Request,
	events transfertypes.Events,
) (transfertypes.Handle, error) {
	m.mu.Lock()
	m.events = append(m.events, events)
	m.next++
	n := m.next
	m.mu.Unlock()

	if m.StartFunc != nil {
		return m.StartFunc(ctx, req, events)
	}
	return Handle("t" + strconv.Itoa(n)), nil
}

// Abort records the aborted handle.
func (m *MockTransport) Abort(h transfertypes.Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.aborted = append(m.aborted, h.ID())
}

// Events returns the events sink passed to the i-th Start call.
func (m *MockTransport) Events(i int) transfertypes.Events {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events[i]
}

// Aborted returns the ids of aborted handles in call order.
func (m *MockTransport) Aborted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.aborted))
	copy(out, m.aborted)
	return out
}
