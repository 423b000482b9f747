package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ArtifactName)

	idx, err := NewFlat(2)
	require.NoError(t, err)
	require.NoError(t, idx.Add([]float32{0.5, -1.5}, []float32{2, 2}, []float32{0, 0}))
	require.NoError(t, WriteFile(path, idx))

	loaded, err := ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 2, loaded.Dimension())
	assert.Equal(t, 3, loaded.Count())

	// Same query must rank identically against the reloaded index.
	wantDist, wantIDs, err := idx.Search([]float32{0, 0}, 3)
	require.NoError(t, err)
	gotDist, gotIDs, err := loaded.Search([]float32{0, 0}, 3)
	require.NoError(t, err)
	assert.Equal(t, wantIDs, gotIDs)
	assert.Equal(t, wantDist, gotDist)
}

func TestWriteFile_ReplacesPreviousContents(t *testing.T) {
	path := filepath.Join(t.TempDir(), ArtifactName)

	first, err := NewFlat(1)
	require.NoError(t, err)
	require.NoError(t, first.Add([]float32{1}, []float32{2}, []float32{3}))
	require.NoError(t, WriteFile(path, first))

	second, err := NewFlat(1)
	require.NoError(t, err)
	require.NoError(t, second.Add([]float32{9}))
	require.NoError(t, WriteFile(path, second))

	loaded, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Count())
}

func TestReadFile_MissingFile(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.db"))
	assert.Error(t, err)
}

func TestReadFile_NotAnIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), ArtifactName)
	require.NoError(t, os.WriteFile(path, []byte("not a bbolt file"), 0o644))

	_, err := ReadFile(path)
	assert.Error(t, err)
}
