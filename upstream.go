// SPDX-License-Identifier: GPL-3.0-or-later

package stream

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/bassosimone/runtimex"
	"go.uber.org/multierr"
)

// NewUpstreamCache returns an [*UpstreamCache] mirroring upstream into target.
//
// A nil target means a fresh in-memory stream (see [NewTemporary]).
func NewUpstreamCache(upstream, target Streamable) *UpstreamCache {
	runtimex.Assert(upstream != nil)
	if target == nil {
		target = NewTemporary(nil)
	}
	return &UpstreamCache{
		Decorator: Decorator{Streamable: target},
		Logger:    DefaultSLogger(),
		upstream:  upstream,
	}
}

// UpstreamCache makes a one-shot upstream (e.g., a socket) seekable by
// mirroring every byte read from it into a local seekable buffer.
//
// The cache behaves like the buffer stream, except that reads running past
// the buffered region fetch the missing bytes from upstream and append them
// to the buffer, so that seeking back replays them without touching
// upstream again. Seeks never touch upstream.
//
// Writes land in the buffer. Bytes written past what upstream has delivered
// shadow the corresponding upstream bytes, which are skipped when fetched.
type UpstreamCache struct {
	Decorator

	// Logger is the [SLogger] to use.
	//
	// Set by [NewUpstreamCache] to [DefaultSLogger].
	Logger SLogger

	skip          int64
	transferCount int
	upstream      Streamable
}

var _ Streamable = &UpstreamCache{}

// Upstream returns the upstream [Streamable].
func (c *UpstreamCache) Upstream() Streamable {
	return c.upstream
}

// TransferCount implements [Streamable].
func (c *UpstreamCache) TransferCount() int {
	return c.transferCount
}

// Read implements [Streamable].
//
// The request is first served from the buffer; the remainder comes from
// upstream unless upstream already reported EOF. TransferCount counts both.
func (c *UpstreamCache) Read(n int) ([]byte, error) {
	c.transferCount = 0
	n = resolveCount(n, c.BufferSize())
	data, err := c.Streamable.Read(n)
	if err != nil {
		c.transferCount = len(data)
		return data, err
	}
	if (n >= 0 && len(data) >= n) || c.upstream.EOF() {
		c.transferCount = len(data)
		return data, nil
	}

	want := All
	if n >= 0 {
		want = n - len(data) + int(c.skip)
	}
	fetched, err := c.upstream.Read(want)
	skipped := min(c.skip, int64(len(fetched)))
	fetched = fetched[skipped:]
	c.skip -= skipped
	c.Logger.Debug(
		"upstreamFetch",
		slog.Int("ioBufferSize", want),
		slog.Int("ioBytesCount", len(fetched)),
		slog.Int64("skipped", skipped),
		slog.Any("err", err),
	)
	if len(fetched) > 0 {
		if _, werr := c.Streamable.Write(fetched, All); werr != nil {
			err = multierr.Append(err, werr)
		}
	}
	data = append(data, fetched...)
	c.transferCount = len(data)
	return data, err
}

// ReadLine implements [Streamable].
//
// ReadLine consumes one byte at a time through Read so that the line stops
// right after the ending and every fetched byte is mirrored.
func (c *UpstreamCache) ReadLine(ending string, n int) ([]byte, error) {
	next := func() ([]byte, error) {
		return c.Read(1)
	}
	line, consumed, err := scanLine(next, ending, resolveCount(n, c.BufferSize()))
	c.transferCount = consumed
	return line, err
}

// Write implements [Streamable].
func (c *UpstreamCache) Write(data []byte, n int) (int, error) {
	c.transferCount = 0
	if n >= 0 && n < len(data) {
		data = data[:n]
	}
	current, err := c.Streamable.Offset()
	if err != nil {
		return 0, err
	}
	consumed, err := c.upstream.Offset()
	if err != nil {
		return 0, err
	}
	// upstream bytes already claimed by pending skips are shadowed once
	if end, shadowed := current+int64(len(data)), consumed+c.skip; end > shadowed {
		c.skip += end - shadowed
	}
	count, err := c.Streamable.Write(data, All)
	c.transferCount = count
	return count, err
}

// SendData implements [Streamable]. The data goes to upstream and is not
// mirrored into the buffer.
func (c *UpstreamCache) SendData(data []byte) (int, error) {
	count, err := c.upstream.SendData(data)
	c.transferCount = count
	return count, err
}

// ReceiveFrom implements [Streamable]. It is equivalent to Read, so that
// every received byte is mirrored into the buffer.
func (c *UpstreamCache) ReceiveFrom(n int) ([]byte, error) {
	return c.Read(n)
}

// PipeTo implements [Streamable].
func (c *UpstreamCache) PipeTo(dest Streamable, maxBytes int, offset int64) error {
	c.transferCount = 0
	if offset >= 0 {
		if _, err := c.Seek(offset, io.SeekStart); err != nil {
			return err
		}
	}
	data, err := c.Read(maxBytes)
	if err != nil {
		return err
	}
	if _, err := dest.Write(data, All); err != nil {
		return err
	}
	c.transferCount = dest.TransferCount()
	return nil
}

// Seek implements [Streamable].
//
// Seek supports [io.SeekStart] and [io.SeekCurrent] within the buffered
// region; it cannot move past the bytes fetched so far.
func (c *UpstreamCache) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		current, err := c.Streamable.Offset()
		if err != nil {
			return 0, err
		}
		target = current + offset
	default:
		return 0, &Error{Op: "seek", Kind: ErrSeek, Index: -1, Offset: offset,
			Err: errors.New("only io.SeekStart and io.SeekCurrent are supported")}
	}
	buffered, _ := c.Streamable.Size()
	if target > buffered {
		return 0, &Error{Op: "seek", Kind: ErrSeek, Index: -1, Offset: target,
			Err: fmt.Errorf("cannot seek ahead of buffered stream containing %d bytes", buffered)}
	}
	return c.Streamable.Seek(target, io.SeekStart)
}

// Rewind implements [Streamable].
func (c *UpstreamCache) Rewind() error {
	_, err := c.Seek(0, io.SeekStart)
	return err
}

// EOF implements [Streamable]. Both the buffer and upstream must be at EOF.
func (c *UpstreamCache) EOF() bool {
	return c.Streamable.EOF() && c.upstream.EOF()
}

// Size implements [Streamable].
//
// The size is the larger of the buffered size and the upstream size,
// which may be unknown until upstream is drained.
func (c *UpstreamCache) Size() (int64, bool) {
	buffered, bufferedOK := c.Streamable.Size()
	remote, remoteOK := c.upstream.Size()
	switch {
	case !remoteOK:
		return buffered, bufferedOK
	case !bufferedOK:
		return remote, true
	default:
		return max(buffered, remote), true
	}
}

// Close implements [Streamable]. It closes both the buffer and upstream.
func (c *UpstreamCache) Close() error {
	return multierr.Append(c.Streamable.Close(), c.upstream.Close())
}
