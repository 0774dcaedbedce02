// SPDX-License-Identifier: GPL-3.0-or-later

package stream

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The default registry knows about files, memory and sockets.
func TestNewDefaultRegistry(t *testing.T) {
	reg := NewDefaultRegistry(NewConfig(), DefaultSLogger())

	assert.Equal(t, []string{"file", "memory", "tcp", "udp"}, reg.Schemes())
	_, found := reg.Lookup("tcp")
	assert.True(t, found)
	_, found = reg.Lookup("ftp")
	assert.False(t, found)
}

// Registering a scheme twice fails.
func TestRegistryDuplicate(t *testing.T) {
	reg := NewRegistry()
	opener := ConstFunc[*url.URL, Resource](NewMemoryResource(nil))

	require.NoError(t, reg.Register("x", opener))
	require.ErrorIs(t, reg.Register("x", opener), ErrInvalidArgument)
	assert.Panics(t, func() { reg.MustRegister("x", opener) })
}

// Open rejects unknown schemes and malformed URLs.
func TestRegistryOpenErrors(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Open(context.Background(), "ftp://example.com/")
	require.ErrorIs(t, err, ErrUnsupportedOperation)

	_, err = reg.Open(context.Background(), "://bad")
	require.ErrorIs(t, err, ErrInvalidArgument)
}

// OpenStream applies the configured buffer size.
func TestRegistryOpenStreamMemory(t *testing.T) {
	cfg := NewConfig()
	cfg.BufferSize = 4
	reg := NewDefaultRegistry(cfg, DefaultSLogger())

	s, err := reg.OpenStream(context.Background(), cfg, "memory:")
	require.NoError(t, err)

	_, err = s.Write([]byte("0123456789"), All)
	require.NoError(t, err)
	require.NoError(t, s.Rewind())
	data, err := s.Read(All)
	require.NoError(t, err)
	assert.Equal(t, "0123", string(data))
}

// The file opener honors the mode query parameter.
func TestOpenFileFunc(t *testing.T) {
	name := filepath.Join(t.TempDir(), "data.txt")
	reg := NewDefaultRegistry(NewConfig(), DefaultSLogger())
	ctx := context.Background()

	w, err := reg.OpenStream(ctx, NewConfig(), "file://"+name+"?mode=w")
	require.NoError(t, err)
	_, err = w.Write([]byte("hello"), All)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	a, err := reg.OpenStream(ctx, NewConfig(), "file://"+name+"?mode=a")
	require.NoError(t, err)
	_, err = a.Write([]byte(" world"), All)
	require.NoError(t, err)
	require.NoError(t, a.Close())

	r, err := reg.OpenStream(ctx, NewConfig(), "file://"+name)
	require.NoError(t, err)
	defer r.Close()
	assert.False(t, r.Resource().Writable())
	data, err := r.Read(All)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))

	content, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(content))
}

// The file opener rejects invalid modes and empty paths.
func TestOpenFileFuncErrors(t *testing.T) {
	fn := NewOpenFileFunc()

	_, err := fn.Call(context.Background(), &url.URL{Scheme: "file", Path: "/tmp/x", RawQuery: "mode=zz"})
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = fn.Call(context.Background(), &url.URL{Scheme: "file"})
	require.ErrorIs(t, err, ErrInvalidArgument)
}
