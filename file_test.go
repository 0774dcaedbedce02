// SPDX-License-Identifier: GPL-3.0-or-later

package stream

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A file opened read-write supports writing, seeking and reading back.
func TestFileResourceReadWrite(t *testing.T) {
	name := filepath.Join(t.TempDir(), "data.txt")
	res, err := OpenFile(name, os.O_RDWR|os.O_CREATE, 0600)
	require.NoError(t, err)
	s := NewStream(res)
	defer s.Close()

	assert.True(t, res.Readable())
	assert.True(t, res.Writable())
	assert.True(t, res.Seekable())
	assert.True(t, res.Local())
	assert.Equal(t, name, res.LocalName())

	count, err := s.Write([]byte("hello world"), All)
	require.NoError(t, err)
	assert.Equal(t, 11, count)
	assert.True(t, s.EOF())

	_, err = s.Seek(6, io.SeekStart)
	require.NoError(t, err)
	assert.False(t, s.EOF())
	data, err := s.Read(All)
	require.NoError(t, err)
	assert.Equal(t, "world", string(data))
	assert.True(t, s.EOF())

	size, ok := s.Size()
	assert.True(t, ok)
	assert.Equal(t, int64(11), size)
}

// Access modes follow the open flags.
func TestFileResourceAccessModes(t *testing.T) {
	name := filepath.Join(t.TempDir(), "data.txt")
	require.NoError(t, os.WriteFile(name, []byte("abc"), 0600))

	ro, err := OpenFile(name, os.O_RDONLY, 0)
	require.NoError(t, err)
	defer ro.Close()
	assert.True(t, ro.Readable())
	assert.False(t, ro.Writable())
	_, err = NewStream(ro).Write([]byte("x"), All)
	require.ErrorIs(t, err, ErrNotWritable)

	wo, err := OpenFile(name, os.O_WRONLY, 0)
	require.NoError(t, err)
	defer wo.Close()
	assert.False(t, wo.Readable())
	assert.True(t, wo.Writable())
	_, err = NewStream(wo).Read(1)
	require.ErrorIs(t, err, ErrNotReadable)
}

// Second Close returns os.ErrClosed and the resource is no longer alive.
func TestFileResourceCloseOnce(t *testing.T) {
	name := filepath.Join(t.TempDir(), "data.txt")
	res, err := OpenFile(name, os.O_RDWR|os.O_CREATE, 0600)
	require.NoError(t, err)

	require.NoError(t, res.Close())
	assert.False(t, res.Alive())
	require.ErrorIs(t, res.Close(), os.ErrClosed)
}

// Opening a missing file fails.
func TestOpenFileMissing(t *testing.T) {
	_, err := OpenFile(filepath.Join(t.TempDir(), "missing"), os.O_RDONLY, 0)
	require.ErrorIs(t, err, os.ErrNotExist)
}
