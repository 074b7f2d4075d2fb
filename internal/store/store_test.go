package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_LoadMissing(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "nested", "state.yaml"))
	require.NoError(t, err)

	id, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "", id)
}

func TestStore_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.yaml")
	s, err := New(path)
	require.NoError(t, err)

	require.NoError(t, s.Save("1AbCdEf"))
	id, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "1AbCdEf", id)

	require.NoError(t, s.Save("./solves.csv"))
	id, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, "./solves.csv", id)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "source_id")
}

func TestStore_SaveEmpty(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "state.yaml"))
	require.NoError(t, err)

	require.NoError(t, s.Save("x"))
	require.NoError(t, s.Save(""))
	id, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "", id)
}

func TestStore_LoadMissingKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	require.NoError(t, os.WriteFile(path, []byte("other: 1\n"), 0o644))

	s, err := New(path)
	require.NoError(t, err)
	id, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "", id)
}

func TestStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	require.NoError(t, os.WriteFile(path, []byte("source_id: [unclosed\n"), 0o644))

	s, err := New(path)
	require.NoError(t, err)
	_, err = s.Load()
	assert.Error(t, err)
}
