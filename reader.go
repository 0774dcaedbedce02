// SPDX-License-Identifier: GPL-3.0-or-later

package stream

import (
	"errors"
	"io"
	"os"
	"sync/atomic"
)

// NewReaderResource adapts a one-shot [io.Reader] (e.g., an HTTP response
// body) to a read-only, non-seekable [Resource].
//
// If r is also an [io.Closer], closing the resource closes r.
func NewReaderResource(r io.Reader, name string) *ReaderResource {
	return &ReaderResource{name: name, r: r}
}

// ReaderResource is the [Resource] returned by [NewReaderResource].
type ReaderResource struct {
	closed   atomic.Bool
	consumed int64
	eof      bool
	name     string
	r        io.Reader
}

var _ Resource = &ReaderResource{}

// Read implements [Resource].
func (rr *ReaderResource) Read(buf []byte) (int, error) {
	if rr.closed.Load() {
		return 0, os.ErrClosed
	}
	count, err := rr.r.Read(buf)
	rr.consumed += int64(count)
	if errors.Is(err, io.EOF) {
		rr.eof = true
	}
	return count, err
}

// Write implements [Resource]. It always fails.
func (rr *ReaderResource) Write(data []byte) (int, error) {
	return 0, errors.New("resource is read only")
}

// Seek implements [Resource]. It always fails.
func (rr *ReaderResource) Seek(offset int64, whence int) (int64, error) {
	return 0, errNoSeek
}

// Close implements [Resource].
func (rr *ReaderResource) Close() error {
	if !rr.closed.CompareAndSwap(false, true) {
		return os.ErrClosed
	}
	if closer, ok := rr.r.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Tell implements [Resource].
func (rr *ReaderResource) Tell() (int64, error) { return rr.consumed, nil }

// EOF implements [Resource].
func (rr *ReaderResource) EOF() bool { return rr.eof }

// Readable implements [Resource].
func (rr *ReaderResource) Readable() bool { return true }

// Writable implements [Resource].
func (rr *ReaderResource) Writable() bool { return false }

// Seekable implements [Resource].
func (rr *ReaderResource) Seekable() bool { return false }

// Alive implements [Resource].
func (rr *ReaderResource) Alive() bool { return !rr.closed.Load() }

// Local implements [Resource].
func (rr *ReaderResource) Local() bool { return false }

// Size implements [Resource].
func (rr *ReaderResource) Size() (int64, bool) { return 0, false }

// LocalName implements [Resource].
func (rr *ReaderResource) LocalName() string { return "" }

// RemoteName implements [Resource].
func (rr *ReaderResource) RemoteName() string { return rr.name }

// NewReader adapts any [Streamable] to an [io.ReadSeekCloser].
//
// Read returns [io.EOF] once the stream produces no data and reports EOF.
func NewReader(s Streamable) *Reader {
	return &Reader{s: s}
}

// Reader is the [io.ReadSeekCloser] returned by [NewReader].
type Reader struct {
	s Streamable
}

var _ io.ReadSeekCloser = &Reader{}

// Read implements [io.Reader].
func (r *Reader) Read(buf []byte) (int, error) {
	if len(buf) <= 0 {
		return 0, nil
	}
	data, err := r.s.Read(len(buf))
	count := copy(buf, data)
	if err != nil {
		return count, err
	}
	if count == 0 && r.s.EOF() {
		return 0, io.EOF
	}
	return count, nil
}

// Seek implements [io.Seeker].
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	return r.s.Seek(offset, whence)
}

// Close implements [io.Closer].
func (r *Reader) Close() error {
	return r.s.Close()
}
