// SPDX-License-Identifier: GPL-3.0-or-later

package stream

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuncAdapter(t *testing.T) {
	called := false
	adapter := FuncAdapter[string, Resource](func(ctx context.Context, name string) (Resource, error) {
		called = true
		return NewMemoryResource([]byte(name)), nil
	})

	res, err := adapter.Call(context.Background(), "hello")

	require.NoError(t, err)
	assert.True(t, called)
	size, ok := res.Size()
	assert.True(t, ok)
	assert.Equal(t, int64(5), size)
}
