package stream

import (
	"bytes"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-git/go-billy/v5"

	"github.com/input-output-hk/catalyst-forge-libs/transfer/errors"
	"github.com/input-output-hk/catalyst-forge-libs/transfer/transfertypes"
)

// sniffLength is the number of leading bytes inspected for content detection.
const sniffLength = 3072

// Source opens the upload payload of a request.
// A payload read from a file or a seekable reader can be opened repeatedly;
// any other reader can be opened once.
type Source struct {
	fs     billy.Filesystem
	body   io.Reader
	path   string
	length int64
	opened bool
}

// NewSource returns the payload source for req. It returns nil when the
// request carries no payload.
func NewSource(fs billy.Filesystem, req *transfertypes.Request) (*Source, error) {
	switch {
	case req.Body != nil:
		return &Source{body: req.Body, length: req.BodyLength}, nil
	case req.BodyPath != "":
		if fs == nil {
			return nil, errors.NewError("openBody", errors.ErrInvalidInput).
				WithMessage("no filesystem configured for body path")
		}
		return &Source{fs: fs, path: req.BodyPath, length: req.BodyLength}, nil
	default:
		return nil, nil
	}
}

// Open returns a reader positioned at the start of the payload together with
// its length, or transfertypes.UnknownLength.
func (s *Source) Open() (io.ReadCloser, int64, error) {
	if s.path != "" {
		return s.openFile()
	}

	if seeker, ok := s.body.(io.Seeker); ok {
		size, err := seeker.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, 0, errors.NewError("openBody", err)
		}
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			return nil, 0, errors.NewError("openBody", err)
		}
		s.opened = true
		return io.NopCloser(s.body), size, nil
	}

	if s.opened {
		return nil, 0, errors.NewError("openBody", errors.ErrUnsupported).
			WithMessage("body cannot be replayed")
	}
	s.opened = true

	length := s.length
	if length <= 0 {
		length = transfertypes.UnknownLength
	}
	return io.NopCloser(s.body), length, nil
}

func (s *Source) openFile() (io.ReadCloser, int64, error) {
	info, err := s.fs.Stat(s.path)
	if err != nil {
		return nil, 0, errors.NewError("openBody", err).WithMessage(s.path)
	}
	if info.IsDir() {
		return nil, 0, errors.NewError("openBody", errors.ErrInvalidInput).
			WithMessage(s.path + " is a directory")
	}
	f, err := s.fs.Open(s.path)
	if err != nil {
		return nil, 0, errors.NewError("openBody", err).WithMessage(s.path)
	}
	s.opened = true
	return f, info.Size(), nil
}

// ReadAll reads the whole payload into memory.
func (s *Source) ReadAll() ([]byte, error) {
	rc, _, err := s.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rc.Close()
	}()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.NewError("readBody", err)
	}
	return data, nil
}

// DetectContentType returns the MIME type of data.
func DetectContentType(data []byte) string {
	if len(data) > sniffLength {
		data = data[:sniffLength]
	}
	return mimetype.Detect(data).String()
}

// Sniff reads the head of r, detects its MIME type, and returns a reader that
// yields the full content of r again.
func Sniff(r io.Reader) (string, io.Reader, error) {
	head := make([]byte, sniffLength)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", nil, err
	}
	head = head[:n]
	return DetectContentType(head), io.MultiReader(bytes.NewReader(head), r), nil
}
