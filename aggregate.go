// SPDX-License-Identifier: GPL-3.0-or-later

package stream

import (
	"errors"
	"io"
	"iter"
	"log/slog"

	"go.uber.org/multierr"
)

// seekDiscardChunk is the chunk size used to read and discard while seeking.
const seekDiscardChunk = 8192

// NewAggregate returns an [*Aggregate] concatenating streams in order.
//
// Every stream must be readable; see [*Aggregate.Add].
func NewAggregate(streams ...Streamable) (*Aggregate, error) {
	agg := &Aggregate{Logger: DefaultSLogger()}
	for _, s := range streams {
		if err := agg.Add(s); err != nil {
			return nil, err
		}
	}
	return agg, nil
}

// Aggregate presents an ordered list of readable streams as one logical
// read-only stream.
//
// Reads drive a cursor across the list, moving to the next member when
// the current one is exhausted. Only [io.SeekStart] seeks are supported:
// they rewind every member and read forward to the target. Closing the
// Aggregate closes every member.
type Aggregate struct {
	// Logger is the [SLogger] to use.
	//
	// Set by [NewAggregate] to [DefaultSLogger].
	Logger SLogger

	bufferSize    int
	cursor        int
	offset        int64
	streams       []Streamable
	transferCount int
}

var _ Streamable = &Aggregate{}

// Add appends s to the members, failing with [ErrInvalidArgument] if s
// is not readable.
func (a *Aggregate) Add(s Streamable) error {
	if s == nil || !s.Resource().Readable() {
		return &Error{Op: "add", Kind: ErrInvalidArgument, Index: len(a.streams), Offset: -1,
			Err: errors.New("stream is not readable")}
	}
	a.streams = append(a.streams, s)
	return nil
}

// All returns an iterator over the members and their indexes.
func (a *Aggregate) All() iter.Seq2[int, Streamable] {
	return func(yield func(int, Streamable) bool) {
		for idx, s := range a.streams {
			if !yield(idx, s) {
				return
			}
		}
	}
}

// Len returns the number of members.
func (a *Aggregate) Len() int {
	return len(a.streams)
}

// Resource implements [Streamable].
//
// The returned [Resource] is a facade: raw I/O through it fails with
// [ErrUnsupportedOperation], while its capabilities are computed across
// all the members.
func (a *Aggregate) Resource() Resource {
	return &aggregateResource{a}
}

// BufferSize implements [Streamable].
func (a *Aggregate) BufferSize() int {
	return a.bufferSize
}

// SetBufferSize implements [Streamable].
func (a *Aggregate) SetBufferSize(n int) {
	a.bufferSize = max(n, 0)
}

// TransferCount implements [Streamable].
func (a *Aggregate) TransferCount() int {
	return a.transferCount
}

// Read implements [Streamable].
//
// With [All] and no buffer size, Read continues until every member is
// exhausted. A member producing no data while not at EOF ends the call.
func (a *Aggregate) Read(n int) ([]byte, error) {
	data, err := a.read(resolveCount(n, a.bufferSize))
	a.transferCount = len(data)
	return data, err
}

func (a *Aggregate) read(n int) ([]byte, error) {
	var data []byte
	for (n < 0 || len(data) < n) && a.cursor < len(a.streams) {
		want := All
		if n >= 0 {
			want = n - len(data)
		}
		current := a.streams[a.cursor]
		chunk, err := current.Read(want)
		data = append(data, chunk...)
		a.offset += int64(len(chunk))
		if err != nil {
			return data, &Error{Op: "read", Kind: ErrIO, Index: a.cursor, Offset: -1, Err: err}
		}
		if len(chunk) > 0 {
			continue
		}
		if !current.EOF() {
			break
		}
		a.cursor++
		a.Logger.Debug(
			"aggregateAdvance",
			slog.Int("index", a.cursor),
			slog.Int("count", len(a.streams)),
			slog.Int64("offset", a.offset),
		)
	}
	return data, nil
}

// ReadLine implements [Streamable].
//
// ReadLine consumes one byte at a time across member boundaries.
func (a *Aggregate) ReadLine(ending string, n int) ([]byte, error) {
	next := func() ([]byte, error) {
		return a.read(1)
	}
	line, consumed, err := scanLine(next, ending, resolveCount(n, a.bufferSize))
	a.transferCount = consumed
	return line, err
}

// Write implements [Streamable]. It always fails with [ErrUnsupportedOperation].
func (a *Aggregate) Write(data []byte, n int) (int, error) {
	a.transferCount = 0
	return 0, newError("write", ErrUnsupportedOperation, nil)
}

// SendData implements [Streamable]. It always fails with [ErrUnsupportedOperation].
func (a *Aggregate) SendData(data []byte) (int, error) {
	a.transferCount = 0
	return 0, newError("sendData", ErrUnsupportedOperation, nil)
}

// ReceiveFrom implements [Streamable]. It always fails with [ErrUnsupportedOperation].
func (a *Aggregate) ReceiveFrom(n int) ([]byte, error) {
	a.transferCount = 0
	return nil, newError("receiveFrom", ErrUnsupportedOperation, nil)
}

// PipeTo implements [Streamable].
func (a *Aggregate) PipeTo(dest Streamable, maxBytes int, offset int64) error {
	a.transferCount = 0
	if offset >= 0 {
		if _, err := a.Seek(offset, io.SeekStart); err != nil {
			return err
		}
	}
	data, err := a.Read(maxBytes)
	if err != nil {
		return err
	}
	if _, err := dest.Write(data, All); err != nil {
		return err
	}
	a.transferCount = dest.TransferCount()
	return nil
}

// Seek implements [Streamable].
//
// Only [io.SeekStart] is supported. Seeking rewinds every member, resets
// the cursor and then reads and discards up to offset (or EOF).
func (a *Aggregate) Seek(offset int64, whence int) (int64, error) {
	if whence != io.SeekStart {
		return 0, &Error{Op: "seek", Kind: ErrUnsupportedOperation, Index: -1, Offset: offset,
			Err: errors.New("only io.SeekStart is supported")}
	}
	if offset < 0 {
		return 0, &Error{Op: "seek", Kind: ErrSeek, Index: -1, Offset: offset,
			Err: errors.New("negative position")}
	}
	a.cursor, a.offset = 0, 0
	for idx, s := range a.streams {
		if err := s.Rewind(); err != nil {
			return 0, &Error{Op: "seek", Kind: ErrSeek, Index: idx, Offset: offset, Err: err}
		}
	}
	for a.offset < offset && !a.EOF() {
		data, err := a.read(int(min(seekDiscardChunk, offset-a.offset)))
		if err != nil {
			return a.offset, err
		}
		if len(data) <= 0 {
			break
		}
	}
	return a.offset, nil
}

// Rewind implements [Streamable].
func (a *Aggregate) Rewind() error {
	_, err := a.Seek(0, io.SeekStart)
	return err
}

// Offset implements [Streamable].
func (a *Aggregate) Offset() (int64, error) {
	return a.offset, nil
}

// EOF implements [Streamable].
//
// An empty Aggregate is always at EOF.
func (a *Aggregate) EOF() bool {
	last := len(a.streams) - 1
	switch {
	case last < 0:
		return true
	case a.cursor > last:
		return true
	case a.cursor < last:
		return false
	default:
		return a.streams[last].EOF()
	}
}

// Size implements [Streamable]. The size is unknown if any member size is.
func (a *Aggregate) Size() (int64, bool) {
	var total int64
	for _, s := range a.streams {
		size, ok := s.Size()
		if !ok {
			return 0, false
		}
		total += size
	}
	return total, true
}

// Close implements [Streamable]. It closes every member.
func (a *Aggregate) Close() (err error) {
	for _, s := range a.streams {
		err = multierr.Append(err, s.Close())
	}
	return
}

// aggregateResource is the [Resource] facade of an [*Aggregate].
type aggregateResource struct {
	a *Aggregate
}

var _ Resource = &aggregateResource{}

func (r *aggregateResource) Read(buf []byte) (int, error) {
	return 0, newError("resource read", ErrUnsupportedOperation, nil)
}

func (r *aggregateResource) Write(data []byte) (int, error) {
	return 0, newError("resource write", ErrUnsupportedOperation, nil)
}

func (r *aggregateResource) Seek(offset int64, whence int) (int64, error) {
	return 0, newError("resource seek", ErrUnsupportedOperation, nil)
}

func (r *aggregateResource) Close() error {
	return r.a.Close()
}

func (r *aggregateResource) Tell() (int64, error) {
	return r.a.offset, nil
}

func (r *aggregateResource) EOF() bool {
	return r.a.EOF()
}

func (r *aggregateResource) Readable() bool { return true }

func (r *aggregateResource) Writable() bool { return false }

func (r *aggregateResource) Seekable() bool {
	return r.every(Resource.Seekable)
}

func (r *aggregateResource) Alive() bool {
	return r.every(Resource.Alive)
}

func (r *aggregateResource) Local() bool {
	return r.every(Resource.Local)
}

// every returns true if pred holds for every member resource, stopping at
// the first member for which it does not.
func (r *aggregateResource) every(pred func(Resource) bool) bool {
	for _, s := range r.a.streams {
		if !pred(s.Resource()) {
			return false
		}
	}
	return true
}

func (r *aggregateResource) Size() (int64, bool) {
	return r.a.Size()
}

func (r *aggregateResource) LocalName() string { return "" }

func (r *aggregateResource) RemoteName() string { return "" }
