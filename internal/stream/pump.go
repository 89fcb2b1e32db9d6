package stream

import (
	"context"
	"io"

	"github.com/input-output-hk/catalyst-forge-libs/transfer/internal/pool"
)

// Pump reads r in chunks from buffers and passes each chunk to emit until r
// is exhausted or ctx is done. The chunk is only valid during the emit call.
// It returns the number of bytes emitted.
func Pump(ctx context.Context, r io.Reader, buffers *pool.BufferPool, emit func(chunk []byte)) (int64, error) {
	buf := buffers.Get()
	defer buffers.Put(buf)

	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		n, err := r.Read(buf)
		if n > 0 {
			emit(buf[:n])
			total += int64(n)
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			//nolint:wrapcheck // callers classify transport errors
			return total, err
		}
	}
}
