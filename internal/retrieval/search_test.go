package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poliq-ai/poliq/internal/domain"
	"github.com/poliq-ai/poliq/internal/index"
)

// newTestCorpus builds a one-dimensional corpus where each chunk's vector
// value doubles as its distance control: querying with 0 gives a squared
// distance of value².
func newTestCorpus(t *testing.T, name string, values []float32, chunks []string, metadatas []domain.ChunkMeta) *domain.Corpus {
	t.Helper()

	idx, err := index.NewFlat(1)
	require.NoError(t, err)
	for _, v := range values {
		require.NoError(t, idx.Add([]float32{v}))
	}

	c := &domain.Corpus{Name: name, Index: idx, Chunks: chunks, Metadatas: metadatas}
	require.NoError(t, domain.ValidateCorpus(c))
	return c
}

func sameDocMetas(file string, n int) []domain.ChunkMeta {
	metas := make([]domain.ChunkMeta, n)
	for i := range metas {
		metas[i] = domain.ChunkMeta{SourceFile: file, ChunkID: i}
	}
	return metas
}

func TestSearchCorpus_ScoresAndOrder(t *testing.T) {
	c := newTestCorpus(t, "hdfc",
		[]float32{3, 1, 2},
		[]string{"far", "near", "mid"},
		sameDocMetas("policy.pdf", 3))

	records, err := searchCorpus(c, []float32{0}, 3)
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, "near", records[0].RawText)
	assert.Equal(t, "mid", records[1].RawText)
	assert.Equal(t, "far", records[2].RawText)

	// score = 1 / (1 + squared distance)
	assert.InDelta(t, 1.0/2.0, records[0].Score, 1e-9)
	assert.InDelta(t, 1.0/5.0, records[1].Score, 1e-9)
	assert.InDelta(t, 1.0/10.0, records[2].Score, 1e-9)

	for _, r := range records {
		assert.Equal(t, "hdfc", r.CorpusName)
		assert.Equal(t, "policy.pdf", r.SourceDocument)
	}
}

func TestSearchCorpus_DiscardsSentinelSlots(t *testing.T) {
	c := newTestCorpus(t, "hdfc",
		[]float32{1},
		[]string{"only"},
		sameDocMetas("policy.pdf", 1))

	records, err := searchCorpus(c, []float32{0}, 5)
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "only", records[0].RawText)
}

func TestSearchCorpus_EmptyCorpus(t *testing.T) {
	c := newTestCorpus(t, "hdfc", nil, nil, nil)

	records, err := searchCorpus(c, []float32{0}, 3)
	require.NoError(t, err)

	assert.Empty(t, records)
}

func TestSearchCorpus_QueryDimensionMismatch(t *testing.T) {
	c := newTestCorpus(t, "hdfc",
		[]float32{1},
		[]string{"only"},
		sameDocMetas("policy.pdf", 1))

	_, err := searchCorpus(c, []float32{0, 0}, 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `search failed for corpus "hdfc"`)
}

func TestMergeNeighbors_MergesBothSides(t *testing.T) {
	c := newTestCorpus(t, "hdfc",
		[]float32{5, 1, 5},
		[]string{"first", "second", "third"},
		sameDocMetas("policy.pdf", 3))

	records, err := searchCorpus(c, []float32{0}, 1)
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "second", records[0].RawText)
	assert.Equal(t, "first\nsecond\nthird", records[0].MergedText)
}

func TestMergeNeighbors_StopsAtDocumentBoundary(t *testing.T) {
	// Adjacent array positions but different source documents.
	c := newTestCorpus(t, "hdfc",
		[]float32{5, 1, 5},
		[]string{"end of doc a", "start of doc b", "rest of doc b"},
		[]domain.ChunkMeta{
			{SourceFile: "a.pdf", ChunkID: 3},
			{SourceFile: "b.pdf", ChunkID: 0},
			{SourceFile: "b.pdf", ChunkID: 1},
		})

	records, err := searchCorpus(c, []float32{0}, 1)
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "start of doc b\nrest of doc b", records[0].MergedText)
}

func TestMergeNeighbors_RequiresAdjacentChunkIDs(t *testing.T) {
	// Same document but a gap in the chunk sequence on either side.
	c := newTestCorpus(t, "hdfc",
		[]float32{5, 1, 5},
		[]string{"chunk 0", "chunk 5", "chunk 9"},
		[]domain.ChunkMeta{
			{SourceFile: "a.pdf", ChunkID: 0},
			{SourceFile: "a.pdf", ChunkID: 5},
			{SourceFile: "a.pdf", ChunkID: 9},
		})

	records, err := searchCorpus(c, []float32{0}, 1)
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "chunk 5", records[0].MergedText)
}

func TestMergeNeighbors_AtArrayEdges(t *testing.T) {
	c := newTestCorpus(t, "hdfc",
		[]float32{0, 3, 3, 10},
		[]string{"head", "after head", "filler", "tail"},
		sameDocMetas("policy.pdf", 4))

	records, err := searchCorpus(c, []float32{0}, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "head\nafter head", records[0].MergedText)

	records, err = searchCorpus(c, []float32{10}, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "filler\ntail", records[0].MergedText)
}
