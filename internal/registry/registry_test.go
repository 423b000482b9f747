package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poliq-ai/poliq/internal/domain"
	"github.com/poliq-ai/poliq/internal/index"
)

func writeCorpusArtifacts(t *testing.T, root, name string, vectors [][]float32, chunks []string, metadatas []domain.ChunkMeta) {
	t.Helper()

	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	idx, err := index.NewFlat(len(vectors[0]))
	require.NoError(t, err)
	require.NoError(t, idx.Add(vectors...))
	require.NoError(t, index.WriteFile(filepath.Join(dir, index.ArtifactName), idx))

	meta := metaFile{Chunks: chunks, Metadatas: metadatas}
	data, err := json.Marshal(meta)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, MetaArtifactName), data, 0o644))
}

func TestLoad_MissingStorageRoot(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent"))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorageRootMissing)
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeInvalidOperation, domainErr.Code)
}

func TestLoad_LoadsCorpora(t *testing.T) {
	root := t.TempDir()
	writeCorpusArtifacts(t, root, "common",
		[][]float32{{1}, {2}},
		[]string{"shared chunk a", "shared chunk b"},
		[]domain.ChunkMeta{{SourceFile: "common.pdf", ChunkID: 0}, {SourceFile: "common.pdf", ChunkID: 1}})
	writeCorpusArtifacts(t, root, "hdfc",
		[][]float32{{3}},
		[]string{"hdfc chunk"},
		[]domain.ChunkMeta{{SourceFile: "hdfc.pdf", ChunkID: 0}})

	reg, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, []string{"common", "hdfc"}, reg.Names())
	assert.Equal(t, []string{"hdfc"}, reg.ScopedNames())

	shared, ok := reg.Shared()
	require.True(t, ok)
	assert.True(t, shared.IsShared())
	assert.Len(t, shared.Chunks, 2)
}

func TestLoad_SkipsDirectoryMissingArtifacts(t *testing.T) {
	root := t.TempDir()
	writeCorpusArtifacts(t, root, "common",
		[][]float32{{1}},
		[]string{"chunk"},
		[]domain.ChunkMeta{{SourceFile: "a.pdf", ChunkID: 0}})

	// Directory with only a metadata artifact must be skipped, not fatal.
	partial := filepath.Join(root, "partial")
	require.NoError(t, os.MkdirAll(partial, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(partial, MetaArtifactName), []byte(`{"chunks":[],"metadatas":[]}`), 0o644))

	reg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len())
	_, ok := reg.Lookup("partial")
	assert.False(t, ok)
}

func TestLoad_CorruptMetadataIsFatal(t *testing.T) {
	root := t.TempDir()
	writeCorpusArtifacts(t, root, "hdfc",
		[][]float32{{1}},
		[]string{"chunk"},
		[]domain.ChunkMeta{{SourceFile: "a.pdf", ChunkID: 0}})
	require.NoError(t, os.WriteFile(filepath.Join(root, "hdfc", MetaArtifactName), []byte("{broken"), 0o644))

	_, err := Load(root)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCorpusCorrupt)
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeInternalError, domainErr.Code)
}

func TestLoad_MisalignedArtifactsAreFatal(t *testing.T) {
	root := t.TempDir()
	// Two vectors but only one chunk violates the alignment invariant.
	writeCorpusArtifacts(t, root, "hdfc",
		[][]float32{{1}, {2}},
		[]string{"only one chunk"},
		[]domain.ChunkMeta{{SourceFile: "a.pdf", ChunkID: 0}})

	_, err := Load(root)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCorpusCorrupt)
}

func TestLookup_CaseInsensitive(t *testing.T) {
	root := t.TempDir()
	writeCorpusArtifacts(t, root, "hdfc",
		[][]float32{{1}},
		[]string{"chunk"},
		[]domain.ChunkMeta{{SourceFile: "a.pdf", ChunkID: 0}})

	reg, err := Load(root)
	require.NoError(t, err)

	for _, name := range []string{"hdfc", "HDFC", "  Hdfc  "} {
		c, ok := reg.Lookup(name)
		require.True(t, ok, "lookup %q", name)
		assert.Equal(t, "hdfc", c.Name)
	}

	_, ok := reg.Lookup("icici")
	assert.False(t, ok)
}

func TestNewFromCorpora_ValidatesAlignment(t *testing.T) {
	idx, err := index.NewFlat(1)
	require.NoError(t, err)
	require.NoError(t, idx.Add([]float32{1}))

	_, err = NewFromCorpora(&domain.Corpus{
		Name:      "broken",
		Index:     idx,
		Chunks:    []string{"a", "b"},
		Metadatas: []domain.ChunkMeta{{SourceFile: "x.pdf", ChunkID: 0}},
	})
	assert.Error(t, err)
}
