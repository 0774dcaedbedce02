// SPDX-License-Identifier: GPL-3.0-or-later

package stream

import (
	"errors"
	"io"
	"os"
	"sync/atomic"
)

// NewMemoryResource returns a seekable, readable and writable [*MemoryResource]
// holding a copy of initial and positioned at offset zero.
func NewMemoryResource(initial []byte) *MemoryResource {
	return &MemoryResource{data: append([]byte(nil), initial...)}
}

// MemoryResource is a growable in-memory [Resource].
//
// EOF is position based: the resource is at EOF whenever the offset is at
// or past the end of the data. Not safe for concurrent use, except that
// Close and Alive may be called from any goroutine.
type MemoryResource struct {
	closed atomic.Bool
	data   []byte
	offset int64
}

var _ Resource = &MemoryResource{}

// Bytes returns the whole content regardless of the current offset.
func (m *MemoryResource) Bytes() []byte {
	return m.data
}

// Read implements [Resource].
func (m *MemoryResource) Read(buf []byte) (int, error) {
	if m.closed.Load() {
		return 0, os.ErrClosed
	}
	if m.offset >= int64(len(m.data)) {
		return 0, io.EOF
	}
	count := copy(buf, m.data[m.offset:])
	m.offset += int64(count)
	return count, nil
}

// Write implements [Resource]. Writing past the end zero-fills the gap.
func (m *MemoryResource) Write(data []byte) (int, error) {
	if m.closed.Load() {
		return 0, os.ErrClosed
	}
	end := m.offset + int64(len(data))
	if end > int64(len(m.data)) {
		grown := make([]byte, end)
		copy(grown, m.data)
		m.data = grown
	}
	copy(m.data[m.offset:end], data)
	m.offset = end
	return len(data), nil
}

// Seek implements [Resource].
func (m *MemoryResource) Seek(offset int64, whence int) (int64, error) {
	if m.closed.Load() {
		return 0, os.ErrClosed
	}
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = m.offset + offset
	case io.SeekEnd:
		target = int64(len(m.data)) + offset
	default:
		return 0, errors.New("invalid whence")
	}
	if target < 0 {
		return 0, errors.New("negative position")
	}
	m.offset = target
	return target, nil
}

// Close implements [Resource].
func (m *MemoryResource) Close() error {
	if !m.closed.CompareAndSwap(false, true) {
		return os.ErrClosed
	}
	return nil
}

// Tell implements [Resource].
func (m *MemoryResource) Tell() (int64, error) {
	if m.closed.Load() {
		return 0, os.ErrClosed
	}
	return m.offset, nil
}

// EOF implements [Resource].
func (m *MemoryResource) EOF() bool {
	return m.offset >= int64(len(m.data))
}

// Readable implements [Resource].
func (m *MemoryResource) Readable() bool { return true }

// Writable implements [Resource].
func (m *MemoryResource) Writable() bool { return true }

// Seekable implements [Resource].
func (m *MemoryResource) Seekable() bool { return true }

// Alive implements [Resource].
func (m *MemoryResource) Alive() bool { return !m.closed.Load() }

// Local implements [Resource].
func (m *MemoryResource) Local() bool { return true }

// Size implements [Resource].
func (m *MemoryResource) Size() (int64, bool) {
	return int64(len(m.data)), true
}

// LocalName implements [Resource].
func (m *MemoryResource) LocalName() string { return "memory" }

// RemoteName implements [Resource].
func (m *MemoryResource) RemoteName() string { return "" }

// NewTemporary returns a [*Stream] over a fresh [*MemoryResource] holding
// content and positioned at offset zero, ready to be read back.
func NewTemporary(content []byte) *Stream {
	return NewStream(NewMemoryResource(content))
}
