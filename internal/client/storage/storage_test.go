package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileBackend_LoadMissing(t *testing.T) {
	fb, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)

	_, err = fb.Load(context.Background(), SessionSlot)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileBackend_StoreLoadRemove(t *testing.T) {
	dir := t.TempDir()
	fb, err := NewFileBackend(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, fb.Store(ctx, SessionSlot, []byte(`{"token":"a"}`)))
	require.NoError(t, fb.Store(ctx, SessionSlot, []byte(`{"token":"b"}`)))

	got, err := fb.Load(ctx, SessionSlot)
	require.NoError(t, err)
	assert.JSONEq(t, `{"token":"b"}`, string(got))

	info, err := os.Stat(filepath.Join(dir, "session.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")

	require.NoError(t, fb.Remove(ctx, SessionSlot))
	require.NoError(t, fb.Remove(ctx, SessionSlot), "removing twice is not an error")
	_, err = fb.Load(ctx, SessionSlot)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryBackend_CopiesValues(t *testing.T) {
	mb := NewMemoryBackend()
	ctx := context.Background()

	v := []byte("abc")
	require.NoError(t, mb.Store(ctx, "k", v))
	v[0] = 'x'

	got, err := mb.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	require.NoError(t, mb.Remove(ctx, "k"))
	_, err = mb.Load(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryBackend_ZeroValue(t *testing.T) {
	var m MemoryBackend
	ctx := context.Background()

	_, err := m.Load(ctx, SessionSlot)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, m.Remove(ctx, SessionSlot))

	require.NoError(t, m.Store(ctx, SessionSlot, []byte("v")))
	got, err := m.Load(ctx, SessionSlot)
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestDefaultDir(t *testing.T) {
	assert.Equal(t, "contentai", filepath.Base(DefaultDir()))
}
