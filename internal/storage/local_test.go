package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_WriteOpenDelete(t *testing.T) {
	s, err := NewLocalStore(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	saved, err := s.Write(strings.NewReader("hello"), "notes.TXT", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), saved.Size)
	assert.True(t, strings.HasSuffix(saved.Name, ".txt"))
	assert.Equal(t, filepath.Join(s.Dir(), saved.Name), saved.Path)
	assert.True(t, s.Exists(saved.Path))

	f, err := s.Open(saved.Path)
	require.NoError(t, err)
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(f)
	_ = f.Close()
	assert.Equal(t, "hello", buf.String())

	require.NoError(t, s.Delete(saved.Path))
	assert.False(t, s.Exists(saved.Path))
	// повторное удаление — не ошибка
	assert.NoError(t, s.Delete(saved.Path))
}

func TestLocalStore_WriteTooLargeLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir)
	require.NoError(t, err)

	_, err = s.Write(bytes.NewReader(make([]byte, 11)), "big.pdf", 10)
	assert.ErrorIs(t, err, ErrTooLarge)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// ровно лимит — допустимо
	saved, err := s.Write(bytes.NewReader(make([]byte, 10)), "ok.pdf", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), saved.Size)
}

func TestStorageName_UniqueAndKeepsExtension(t *testing.T) {
	now := time.UnixMilli(1718000000000)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		n := StorageName("photo.png", now)
		assert.True(t, strings.HasPrefix(n, "1718000000000-"))
		assert.True(t, strings.HasSuffix(n, ".png"))
		assert.False(t, seen[n], "duplicate name %s", n)
		seen[n] = true
	}
	assert.NotContains(t, StorageName("../../etc/passwd", now), "/")
	assert.False(t, strings.Contains(StorageName("noext", now), "."))
}
