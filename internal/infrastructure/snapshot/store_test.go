package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestReadMissingReturnsNotFound(t *testing.T) {
	s := newStore(t)
	_, err := s.Read("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWriteReadRoundTrip(t *testing.T) {
	s := newStore(t)
	data := []byte(`{"prefix":"mdi-custom","icons":{}}`)

	require.NoError(t, s.Write("mdi-custom", data))

	got, err := s.Read("mdi-custom")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	ok, err := s.Exists("mdi-custom")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestWriteOverwrites(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Write("p", []byte(`{"v":1}`)))
	require.NoError(t, s.Write("p", []byte(`{"v":2}`)))

	got, err := s.Read("p")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"v":2}`), got)
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Write("p", []byte(`{}`)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "p.json", entries[0].Name())
	assert.Equal(t, filepath.Join(dir, "p.json"), s.Path("p"))
}

func TestRemoveIsIdempotent(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Write("p", []byte(`{}`)))
	require.NoError(t, s.Remove("p"))
	require.NoError(t, s.Remove("p"))

	ok, err := s.Exists("p")
	require.NoError(t, err)
	assert.False(t, ok)
}
