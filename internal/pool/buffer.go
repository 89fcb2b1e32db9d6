package pool

import (
	"sync"
)

const (
	// SmallBufferSize defines the size for small buffers (4KB)
	SmallBufferSize = 4 * 1024
	// DefaultChunkSize is the read size transports use when none is configured (32KB)
	DefaultChunkSize = 32 * 1024
	// MaxChunkSize bounds configurable chunk sizes (1MB)
	MaxChunkSize = 1024 * 1024
)

// BufferPool hands out fixed-size chunk buffers.
type BufferPool struct {
	size int
	pool *sync.Pool
}

// NewBufferPool creates a pool of buffers of the given size.
// Sizes outside (0, MaxChunkSize] fall back to DefaultChunkSize.
func NewBufferPool(size int) *BufferPool {
	if size <= 0 || size > MaxChunkSize {
		size = DefaultChunkSize
	}
	return &BufferPool{
		size: size,
		pool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, size)
				return &buf
			},
		},
	}
}

// Size returns the length of buffers handed out by Get.
func (bp *BufferPool) Size() int {
	return bp.size
}

// Get returns a buffer of length Size.
// The caller is responsible for calling Put to return the buffer to the pool.
func (bp *BufferPool) Get() []byte {
	bufPtr := bp.pool.Get().(*[]byte)
	*bufPtr = (*bufPtr)[:bp.size]
	return *bufPtr
}

// Put returns a buffer to the pool.
// Buffers with a capacity other than Size are dropped.
func (bp *BufferPool) Put(buf []byte) {
	if cap(buf) != bp.size {
		return
	}
	buf = buf[:bp.size]
	bp.pool.Put(&buf)
}

var (
	poolsMu sync.Mutex
	pools   = map[int]*BufferPool{}
)

// ForSize returns a shared pool for the given chunk size.
func ForSize(size int) *BufferPool {
	probe := NewBufferPool(size)

	poolsMu.Lock()
	defer poolsMu.Unlock()
	if bp, ok := pools[probe.size]; ok {
		return bp
	}
	pools[probe.size] = probe
	return probe
}
