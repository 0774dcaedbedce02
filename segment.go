// SPDX-License-Identifier: GPL-3.0-or-later

package stream

import (
	"errors"
	"fmt"
	"io"

	"github.com/bassosimone/runtimex"
)

// NewSegment returns a [*Segment] exposing the [offset, offset+limit) range of s.
//
// A limit equal to [Unbounded] extends the segment to the end of s. An offset
// equal to [CurrentOffset] uses the current offset of s. The constructor
// seeks s to the start of the segment, so the segment starts at its own
// logical offset zero.
func NewSegment(s Streamable, limit, offset int64) (*Segment, error) {
	runtimex.Assert(s != nil)
	if limit < Unbounded || offset < CurrentOffset {
		return nil, &Error{Op: "segment", Kind: ErrInvalidArgument, Index: -1, Offset: offset}
	}
	if offset == CurrentOffset {
		current, err := s.Offset()
		if err != nil {
			return nil, err
		}
		offset = current
	}
	seg := &Segment{
		Decorator: Decorator{Streamable: s},
		limit:     limit,
		offset:    offset,
	}
	if _, err := seg.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return seg, nil
}

// Segment is a bounded view over another [Streamable].
//
// All the offsets it exposes are relative to the start of the segment:
// Offset returns the wrapped offset minus the segment offset. When the
// wrapped stream is not seekable, forward seeks are emulated by reading
// and discarding; backward seeks fail with [ErrSeek].
type Segment struct {
	Decorator
	limit         int64
	offset        int64
	transferCount int
}

var _ Streamable = &Segment{}

// Limit returns the segment limit or [Unbounded].
func (g *Segment) Limit() int64 {
	return g.limit
}

// SegmentOffset returns the offset of the segment within the wrapped stream.
func (g *Segment) SegmentOffset() int64 {
	return g.offset
}

// SetLimit changes the limit and moves to the start of the segment.
func (g *Segment) SetLimit(limit int64) error {
	if limit < Unbounded {
		return &Error{Op: "setLimit", Kind: ErrInvalidArgument, Index: -1, Offset: -1,
			Err: fmt.Errorf("invalid limit: %d", limit)}
	}
	g.limit = limit
	_, err := g.Seek(0, io.SeekStart)
	return err
}

// SetSegmentOffset moves the segment within the wrapped stream and then
// moves to its start. [CurrentOffset] uses the current wrapped offset.
func (g *Segment) SetSegmentOffset(offset int64) error {
	if offset < CurrentOffset {
		return &Error{Op: "setOffset", Kind: ErrInvalidArgument, Index: -1, Offset: offset}
	}
	if offset == CurrentOffset {
		current, err := g.Streamable.Offset()
		if err != nil {
			return err
		}
		offset = current
	}
	g.offset = offset
	_, err := g.Seek(0, io.SeekStart)
	return err
}

// TransferCount implements [Streamable].
func (g *Segment) TransferCount() int {
	return g.transferCount
}

func (g *Segment) bounded() bool {
	return g.limit != Unbounded
}

// remaining returns the number of bytes left in a bounded segment.
func (g *Segment) remaining() (int64, error) {
	current, err := g.Offset()
	if err != nil {
		return 0, err
	}
	return g.limit - current, nil
}

// Read implements [Streamable].
//
// With [All] and no buffer size, a bounded segment reads what remains.
func (g *Segment) Read(n int) ([]byte, error) {
	g.transferCount = 0
	if !g.bounded() {
		data, err := g.Streamable.Read(n)
		g.transferCount = len(data)
		return data, err
	}
	want, err := g.clamp(n)
	if err != nil || want <= 0 {
		return nil, err
	}
	data, err := g.Streamable.Read(want)
	g.transferCount = len(data)
	return data, err
}

// clamp resolves n and clamps it to what remains in a bounded segment.
func (g *Segment) clamp(n int) (int, error) {
	remaining, err := g.remaining()
	if err != nil || remaining <= 0 {
		return 0, err
	}
	n = resolveCount(n, g.BufferSize())
	if n < 0 || int64(n) > remaining {
		return int(remaining), nil
	}
	return n, nil
}

// ReadLine implements [Streamable].
func (g *Segment) ReadLine(ending string, n int) ([]byte, error) {
	g.transferCount = 0
	if !g.bounded() {
		line, err := g.Streamable.ReadLine(ending, n)
		g.transferCount = g.Streamable.TransferCount()
		return line, err
	}
	want, err := g.clamp(n)
	if err != nil || want <= 0 {
		return nil, err
	}
	line, err := g.Streamable.ReadLine(ending, want)
	g.transferCount = g.Streamable.TransferCount()
	return line, err
}

// Write implements [Streamable].
func (g *Segment) Write(data []byte, n int) (int, error) {
	count, err := g.Streamable.Write(data, n)
	g.transferCount = count
	return count, err
}

// SendData implements [Streamable].
func (g *Segment) SendData(data []byte) (int, error) {
	count, err := g.Streamable.SendData(data)
	g.transferCount = count
	return count, err
}

// ReceiveFrom implements [Streamable].
//
// A bounded segment never receives more than what remains.
func (g *Segment) ReceiveFrom(n int) ([]byte, error) {
	g.transferCount = 0
	if g.bounded() {
		want, err := g.clamp(n)
		if err != nil || want <= 0 {
			return nil, err
		}
		n = want
	}
	data, err := g.Streamable.ReceiveFrom(n)
	g.transferCount = len(data)
	return data, err
}

// PipeTo implements [Streamable].
//
// PipeTo seeks to the logical offset and then lets the wrapped stream
// copy from there, never past the end of a bounded segment.
func (g *Segment) PipeTo(dest Streamable, maxBytes int, offset int64) error {
	g.transferCount = 0
	if offset >= 0 {
		if _, err := g.Seek(offset, io.SeekStart); err != nil {
			return err
		}
	}
	if g.bounded() {
		want, err := g.clamp(maxBytes)
		if err != nil || want <= 0 {
			return err
		}
		maxBytes = want
	}
	err := g.Streamable.PipeTo(dest, maxBytes, CurrentOffset)
	g.transferCount = g.Streamable.TransferCount()
	return err
}

// Seek implements [Streamable].
//
// The target is clamped to the segment limit. [io.SeekEnd] requires a
// known size. Seek returns the logical offset reached, which may be short
// of the target when an emulated seek hits EOF.
func (g *Segment) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		current, err := g.Offset()
		if err != nil {
			return 0, err
		}
		target = current + offset
	case io.SeekEnd:
		size, ok := g.Size()
		if !ok {
			return 0, &Error{Op: "seek", Kind: ErrSeek, Index: -1, Offset: offset,
				Err: errors.New("unknown size")}
		}
		target = size + offset
	default:
		return 0, &Error{Op: "seek", Kind: ErrSeek, Index: -1, Offset: offset,
			Err: errors.New("invalid whence")}
	}
	if target < 0 {
		return 0, &Error{Op: "seek", Kind: ErrSeek, Index: -1, Offset: target,
			Err: errors.New("negative position")}
	}
	if g.bounded() && target > g.limit {
		target = g.limit
	}
	absolute := g.offset + target

	if g.Streamable.Resource().Seekable() {
		position, err := g.Streamable.Seek(absolute, io.SeekStart)
		if err == nil {
			return position - g.offset, nil
		}
		if !errors.Is(err, ErrSeek) {
			return 0, err
		}
	}

	// emulate a forward seek by reading and discarding
	current, err := g.Streamable.Offset()
	if err != nil {
		return 0, err
	}
	if absolute < current {
		return 0, &Error{Op: "seek", Kind: ErrSeek, Index: -1, Offset: target,
			Err: errors.New("cannot seek backward on a non-seekable stream")}
	}
	if absolute > current {
		if _, err := g.Streamable.Read(int(absolute - current)); err != nil {
			return 0, err
		}
	}
	return g.Offset()
}

// Rewind implements [Streamable].
func (g *Segment) Rewind() error {
	_, err := g.Seek(0, io.SeekStart)
	return err
}

// Offset implements [Streamable].
func (g *Segment) Offset() (int64, error) {
	current, err := g.Streamable.Offset()
	if err != nil {
		return 0, err
	}
	return current - g.offset, nil
}

// EOF implements [Streamable].
func (g *Segment) EOF() bool {
	if g.Streamable.EOF() {
		return true
	}
	if !g.bounded() {
		return false
	}
	current, err := g.Streamable.Offset()
	return err != nil || current >= g.offset+g.limit
}

// Size implements [Streamable].
func (g *Segment) Size() (int64, bool) {
	size, ok := g.Streamable.Size()
	if !ok {
		return 0, false
	}
	size = max(size-g.offset, 0)
	if g.bounded() {
		size = min(size, g.limit)
	}
	return size, true
}
