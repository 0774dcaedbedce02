// SPDX-License-Identifier: GPL-3.0-or-later

package stream

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
)

const (
	// All, passed as a byte count, means "use the buffer size if one is
	// set, otherwise everything that is available".
	All = -1

	// Unbounded, passed as a [*Segment] limit, means "up to the end of
	// the wrapped stream".
	Unbounded = -1

	// CurrentOffset, passed as an offset, means "wherever the stream is now".
	CurrentOffset = -1
)

// readChunkSize is the size of the chunks used when draining a [Resource].
const readChunkSize = 32 * 1024

// maxDatagramSize bounds ReceiveFrom when no byte count is set.
const maxDatagramSize = 65535

// Streamable is the interface shared by [*Stream] and all its decorators.
//
// Callers interact with streams only through this interface and compose
// them by wrapping one Streamable inside another.
//
// TransferCount always reflects the most recent data-moving call (Read,
// ReadLine, Write, PipeTo) and is never accumulated.
type Streamable interface {
	// Resource returns the [Resource] used for capability queries.
	Resource() Resource

	// BufferSize returns the default chunk size or zero.
	BufferSize() int

	// SetBufferSize sets the default chunk size used when a byte count
	// is [All]. Zero or negative values mean "no buffer size".
	SetBufferSize(n int)

	// TransferCount returns the bytes moved by the last data-moving call.
	TransferCount() int

	// Read reads up to n bytes; see [All].
	Read(n int) ([]byte, error)

	// ReadLine reads until ending (excluded), n bytes, or EOF.
	ReadLine(ending string, n int) ([]byte, error)

	// Write writes up to n bytes of data, or all of it when n is negative.
	Write(data []byte, n int) (int, error)

	// SendData sends data as a single datagram or record, without
	// looping on short writes.
	SendData(data []byte) (int, error)

	// ReceiveFrom receives a single datagram or record of at most n bytes;
	// see [All].
	ReceiveFrom(n int) ([]byte, error)

	// PipeTo copies up to maxBytes to dest, seeking to offset first
	// unless offset is [CurrentOffset].
	PipeTo(dest Streamable, maxBytes int, offset int64) error

	// Seek moves the offset using [io.SeekStart], [io.SeekCurrent] or
	// [io.SeekEnd] and returns the new logical offset.
	Seek(offset int64, whence int) (int64, error)

	// Rewind is equivalent to Seek(0, io.SeekStart).
	Rewind() error

	// Offset returns the current logical offset.
	Offset() (int64, error)

	// EOF reports whether the stream is positioned at its end.
	EOF() bool

	// Size returns the size in bytes, if known.
	Size() (int64, bool)

	// Close releases the underlying resources.
	Close() error
}

// NewStream returns a [*Stream] owning res.
func NewStream(res Resource) *Stream {
	return &Stream{res: res}
}

// Stream is the base [Streamable] around exactly one [Resource].
//
// The Stream exclusively owns its Resource: Close releases it exactly once.
// Not safe for concurrent use.
type Stream struct {
	bufferSize    int
	closeonce     sync.Once
	res           Resource
	transferCount int
}

var _ Streamable = &Stream{}

// Resource implements [Streamable].
func (s *Stream) Resource() Resource {
	return s.res
}

// BufferSize implements [Streamable].
func (s *Stream) BufferSize() int {
	return s.bufferSize
}

// SetBufferSize implements [Streamable].
func (s *Stream) SetBufferSize(n int) {
	s.bufferSize = max(n, 0)
}

// TransferCount implements [Streamable].
func (s *Stream) TransferCount() int {
	return s.transferCount
}

// Read implements [Streamable].
//
// Read loops on the [Resource] until n bytes are available or EOF. With
// [All] and no buffer size, it drains the Resource.
func (s *Stream) Read(n int) ([]byte, error) {
	s.transferCount = 0
	if err := s.assertReadable("read"); err != nil {
		return nil, err
	}
	data, err := s.fill("read", resolveCount(n, s.bufferSize))
	s.transferCount = len(data)
	return data, err
}

// resolveCount maps [All] to the buffer size, if any.
func resolveCount(n, bufferSize int) int {
	switch {
	case n >= 0:
		return n
	case bufferSize > 0:
		return bufferSize
	default:
		return All
	}
}

// fill reads n bytes (everything if n is negative) or until EOF.
func (s *Stream) fill(op string, n int) ([]byte, error) {
	var data []byte
	size := readChunkSize
	if n >= 0 {
		size = min(size, n)
	}
	chunk := make([]byte, size)
	for n < 0 || len(data) < n {
		want := len(chunk)
		if n >= 0 {
			want = min(want, n-len(data))
		}
		count, err := s.res.Read(chunk[:want])
		data = append(data, chunk[:count]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return data, newError(op, ErrIO, err)
		}
		if count <= 0 {
			break
		}
	}
	return data, nil
}

// ReadLine implements [Streamable].
//
// With n equal to [All], the limit is the buffer size or none.
func (s *Stream) ReadLine(ending string, n int) ([]byte, error) {
	s.transferCount = 0
	if err := s.assertReadable("readLine"); err != nil {
		return nil, err
	}
	next := func() ([]byte, error) {
		return s.fill("readLine", 1)
	}
	line, consumed, err := scanLine(next, ending, resolveCount(n, s.bufferSize))
	s.transferCount = consumed
	return line, err
}

// Write implements [Streamable].
//
// Write loops until all the bytes are written, since network resources
// may accept fewer bytes than requested.
func (s *Stream) Write(data []byte, n int) (int, error) {
	s.transferCount = 0
	if !s.res.Alive() || !s.res.Writable() {
		return 0, newError("write", ErrNotWritable, nil)
	}
	if n >= 0 && n < len(data) {
		data = data[:n]
	}
	var written int
	for written < len(data) {
		count, err := s.res.Write(data[written:])
		written += count
		if err != nil {
			s.transferCount = written
			return written, newError("write", ErrIO, err)
		}
		if count <= 0 {
			s.transferCount = written
			return written, newError("write", ErrIO, io.ErrShortWrite)
		}
	}
	s.transferCount = written
	return written, nil
}

// SendData implements [Streamable].
//
// Unlike Write, SendData issues exactly one write on the [Resource], which
// on a UDP [*ConnResource] is exactly one datagram.
func (s *Stream) SendData(data []byte) (int, error) {
	s.transferCount = 0
	if !s.res.Alive() || !s.res.Writable() {
		return 0, newError("sendData", ErrNotWritable, nil)
	}
	count, err := s.res.Write(data)
	s.transferCount = count
	if err != nil {
		return count, newError("sendData", ErrIO, err)
	}
	return count, nil
}

// ReceiveFrom implements [Streamable].
//
// ReceiveFrom issues exactly one read on the [Resource]. With [All] and no
// buffer size, up to 65535 bytes are accepted. Reaching EOF is not an error.
func (s *Stream) ReceiveFrom(n int) ([]byte, error) {
	s.transferCount = 0
	if err := s.assertReadable("receiveFrom"); err != nil {
		return nil, err
	}
	n = resolveCount(n, s.bufferSize)
	if n < 0 {
		n = maxDatagramSize
	}
	buf := make([]byte, n)
	count, err := s.res.Read(buf)
	s.transferCount = count
	if err != nil && !errors.Is(err, io.EOF) {
		return buf[:count], newError("receiveFrom", ErrIO, err)
	}
	return buf[:count], nil
}

// PipeTo implements [Streamable].
//
// This is read-then-write: the whole chunk is held in memory, so callers
// that need bounded memory must pass maxBytes or set a buffer size.
func (s *Stream) PipeTo(dest Streamable, maxBytes int, offset int64) error {
	if offset >= 0 {
		if _, err := s.Seek(offset, io.SeekStart); err != nil {
			return err
		}
	}
	data, err := s.Read(maxBytes)
	if err != nil {
		return err
	}
	if _, err := dest.Write(data, All); err != nil {
		return err
	}
	s.transferCount = dest.TransferCount()
	return nil
}

// Seek implements [Streamable].
func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	if !s.res.Alive() || !s.res.Seekable() {
		return 0, &Error{Op: "seek", Kind: ErrNotSeekable, Index: -1, Offset: offset}
	}
	position, err := s.res.Seek(offset, whence)
	if err != nil {
		return 0, &Error{Op: "seek", Kind: ErrNotSeekable, Index: -1, Offset: offset, Err: err}
	}
	return position, nil
}

// Rewind implements [Streamable].
func (s *Stream) Rewind() error {
	_, err := s.Seek(0, io.SeekStart)
	return err
}

// Offset implements [Streamable].
func (s *Stream) Offset() (int64, error) {
	offset, err := s.res.Tell()
	if err != nil {
		return 0, newError("tell", ErrIO, err)
	}
	return offset, nil
}

// EOF implements [Streamable].
func (s *Stream) EOF() bool {
	return s.res.EOF()
}

// Size implements [Streamable].
func (s *Stream) Size() (int64, bool) {
	return s.res.Size()
}

// Close implements [Streamable].
//
// Subsequent calls return [os.ErrClosed] without touching the [Resource].
func (s *Stream) Close() (err error) {
	err = os.ErrClosed
	s.closeonce.Do(func() {
		err = s.res.Close()
	})
	return
}

func (s *Stream) assertReadable(op string) error {
	if !s.res.Alive() || !s.res.Readable() {
		return newError(op, ErrNotReadable, nil)
	}
	return nil
}

// NewStreamFunc returns a [*StreamFunc] using the buffer size in cfg.
func NewStreamFunc(cfg *Config) *StreamFunc {
	return &StreamFunc{BufferSize: cfg.BufferSize}
}

// StreamFunc wraps a [Resource] into a [*Stream], ending a pipeline that
// opens and decorates resources.
type StreamFunc struct {
	// BufferSize is the default chunk size of the returned stream.
	//
	// Set by [NewStreamFunc] from [Config.BufferSize].
	BufferSize int
}

var _ Func[Resource, *Stream] = &StreamFunc{}

// Call wraps res into a [*Stream].
func (op *StreamFunc) Call(ctx context.Context, res Resource) (*Stream, error) {
	stream := NewStream(res)
	stream.SetBufferSize(op.BufferSize)
	return stream, nil
}
