// SPDX-License-Identifier: GPL-3.0-or-later

package stream

import (
	"errors"
	"io"
	"os"
	"sync"
	"sync/atomic"
)

// OpenFile opens the named file using [os.OpenFile] and returns a [*FileResource].
//
// Readability and writability follow flag.
func OpenFile(name string, flag int, perm os.FileMode) (*FileResource, error) {
	file, err := os.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return NewFileResource(file, flag), nil
}

// NewFileResource wraps an already open [*os.File] opened with flag.
func NewFileResource(file *os.File, flag int) *FileResource {
	access := flag & (os.O_RDONLY | os.O_WRONLY | os.O_RDWR)
	return &FileResource{
		file:     file,
		readable: access == os.O_RDONLY || access == os.O_RDWR,
		writable: access == os.O_WRONLY || access == os.O_RDWR,
	}
}

// FileResource is a seekable local [Resource] backed by an [*os.File].
//
// The EOF flag is set when a read hits [io.EOF] and is cleared by seeks
// and writes, which is how stdio streams behave.
type FileResource struct {
	closeonce sync.Once
	closed    atomic.Bool
	eof       bool
	file      *os.File
	readable  bool
	writable  bool
}

var _ Resource = &FileResource{}

// Read implements [Resource].
func (f *FileResource) Read(buf []byte) (int, error) {
	count, err := f.file.Read(buf)
	if errors.Is(err, io.EOF) {
		f.eof = true
	}
	return count, err
}

// Write implements [Resource].
func (f *FileResource) Write(data []byte) (int, error) {
	f.eof = false
	return f.file.Write(data)
}

// Seek implements [Resource].
func (f *FileResource) Seek(offset int64, whence int) (int64, error) {
	f.eof = false
	return f.file.Seek(offset, whence)
}

// Close implements [Resource].
func (f *FileResource) Close() (err error) {
	err = os.ErrClosed
	f.closeonce.Do(func() {
		f.closed.Store(true)
		err = f.file.Close()
	})
	return
}

// Tell implements [Resource].
func (f *FileResource) Tell() (int64, error) {
	return f.file.Seek(0, io.SeekCurrent)
}

// EOF implements [Resource].
func (f *FileResource) EOF() bool {
	if f.eof {
		return true
	}
	offset, err := f.Tell()
	if err != nil {
		return true
	}
	size, ok := f.Size()
	return ok && offset >= size
}

// Readable implements [Resource].
func (f *FileResource) Readable() bool { return f.readable }

// Writable implements [Resource].
func (f *FileResource) Writable() bool { return f.writable }

// Seekable implements [Resource].
func (f *FileResource) Seekable() bool { return true }

// Alive implements [Resource].
func (f *FileResource) Alive() bool { return !f.closed.Load() }

// Local implements [Resource].
func (f *FileResource) Local() bool { return true }

// Size implements [Resource].
func (f *FileResource) Size() (int64, bool) {
	finfo, err := f.file.Stat()
	if err != nil {
		return 0, false
	}
	return finfo.Size(), true
}

// LocalName implements [Resource].
func (f *FileResource) LocalName() string { return f.file.Name() }

// RemoteName implements [Resource].
func (f *FileResource) RemoteName() string { return "" }
