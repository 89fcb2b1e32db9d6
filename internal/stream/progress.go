package stream

import (
	"io"

	"github.com/input-output-hk/catalyst-forge-libs/transfer/errors"
)

// ProgressReader wraps an io.Reader to report upload progress.
// When the underlying reader is an io.Seeker, seeking moves the reported
// position too, so a body that is rewound and sent again restarts its count.
type ProgressReader struct {
	reader   io.Reader
	sent     int64
	expected int64
	report   func(sent, expected int64)
}

// NewProgressReader creates a reader that calls report after every read.
func NewProgressReader(r io.Reader, expected int64, report func(sent, expected int64)) *ProgressReader {
	return &ProgressReader{
		reader:   r,
		expected: expected,
		report:   report,
	}
}

func (pr *ProgressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	if n > 0 {
		pr.sent += int64(n)
		if pr.report != nil {
			pr.report(pr.sent, pr.expected)
		}
	}
	//nolint:wrapcheck // io.Reader interface contract - error comes from underlying reader
	return n, err
}

// Seek implements io.Seeker when the wrapped reader does.
func (pr *ProgressReader) Seek(offset int64, whence int) (int64, error) {
	seeker, ok := pr.reader.(io.Seeker)
	if !ok {
		return 0, errors.NewError("seek", errors.ErrUnsupported)
	}
	pos, err := seeker.Seek(offset, whence)
	if err != nil {
		//nolint:wrapcheck // io.Seeker interface contract
		return pos, err
	}
	pr.sent = pos
	return pos, nil
}

// Sent returns the number of bytes read so far from the current position.
func (pr *ProgressReader) Sent() int64 {
	return pr.sent
}
