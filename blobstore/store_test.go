package blobstore

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "2024"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "2024", "customers.txt"), []byte("1 2 3 4\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "mock.txt"), []byte("5 6 7 8\n"), 0o600))

	store := NewLocalStore(root)
	ctx := context.Background()

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024/customers.txt", "mock.txt"}, names)

	names, err = store.List(ctx, "2024/")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024/customers.txt"}, names)

	blob, err := store.Open(ctx, "2024/customers.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(8), blob.Size())

	buf := make([]byte, 3)
	n, err := blob.ReadAt(buf, 2)
	require.NoError(t, err)
	assert.Equal(t, "2 3", string(buf[:n]))

	r, err := NewReader(ctx, blob)
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "1 2 3 4\n", string(data))
	require.NoError(t, blob.Close())

	_, err = store.Open(ctx, "missing.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	src := []byte("0 0\n0 1\n")
	require.NoError(t, store.Put(ctx, "a/points.txt", src))
	require.NoError(t, store.Put(ctx, "b/points.txt", []byte("x")))
	src[0] = '9'

	names, err := store.List(ctx, "a/")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/points.txt"}, names)

	blob, err := store.Open(ctx, "a/points.txt")
	require.NoError(t, err)
	defer blob.Close()

	r, err := NewReader(ctx, blob)
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "0 0\n0 1\n", string(data), "Put copies its input")

	_, err = store.Open(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

type plainBlob struct {
	data []byte
}

func (b plainBlob) ReadAt(p []byte, off int64) (int, error) {
	return bytes.NewReader(b.data).ReadAt(p, off)
}
func (b plainBlob) Close() error { return nil }
func (b plainBlob) Size() int64  { return int64(len(b.data)) }

func TestNewReader_SectionFallback(t *testing.T) {
	r, err := NewReader(context.Background(), plainBlob{data: []byte("section")})
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "section", string(data))
}
