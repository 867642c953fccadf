package blobstore

import (
	"context"
	"strings"
	"testing"

	"github.com/dmitrijs2005/docblog/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKey(t *testing.T) {
	k1 := NewKey("Photo.PNG")
	k2 := NewKey("Photo.PNG")

	assert.True(t, strings.HasPrefix(k1, "blogs/"))
	assert.True(t, strings.HasSuffix(k1, ".png"))
	assert.NotEqual(t, k1, k2)
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	data := []byte("abc")
	require.NoError(t, m.Put(ctx, "k", "image/png", data))
	data[0] = 'z'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)
	assert.Equal(t, 1, m.Len())

	require.NoError(t, m.Delete(ctx, "k"))
	_, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.Equal(t, 0, m.Len())
}
