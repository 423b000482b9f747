package index

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFlat_InvalidDimension(t *testing.T) {
	_, err := NewFlat(0)
	assert.Error(t, err)

	_, err = NewFlat(-3)
	assert.Error(t, err)
}

func TestFlat_Add_DimensionMismatch(t *testing.T) {
	idx, err := NewFlat(2)
	require.NoError(t, err)

	err = idx.Add([]float32{1, 2, 3})
	assert.Error(t, err)
	assert.Equal(t, 0, idx.Count())
}

func TestFlat_Search_OrdersByDistance(t *testing.T) {
	idx, err := NewFlat(1)
	require.NoError(t, err)
	require.NoError(t, idx.Add([]float32{5}, []float32{1}, []float32{3}))

	distances, ids, err := idx.Search([]float32{0}, 3)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 0}, ids)
	assert.InDelta(t, 1.0, float64(distances[0]), 1e-6)
	assert.InDelta(t, 9.0, float64(distances[1]), 1e-6)
	assert.InDelta(t, 25.0, float64(distances[2]), 1e-6)
}

func TestFlat_Search_PadsWithSentinel(t *testing.T) {
	idx, err := NewFlat(1)
	require.NoError(t, err)
	require.NoError(t, idx.Add([]float32{2}))

	distances, ids, err := idx.Search([]float32{0}, 4)
	require.NoError(t, err)

	require.Len(t, ids, 4)
	require.Len(t, distances, 4)
	assert.Equal(t, 0, ids[0])
	for i := 1; i < 4; i++ {
		assert.Equal(t, NoMatchID, ids[i])
		assert.True(t, math.IsInf(float64(distances[i]), 1))
	}
}

func TestFlat_Search_EmptyIndex(t *testing.T) {
	idx, err := NewFlat(3)
	require.NoError(t, err)

	distances, ids, err := idx.Search([]float32{0, 0, 0}, 2)
	require.NoError(t, err)

	assert.Equal(t, []int{NoMatchID, NoMatchID}, ids)
	require.Len(t, distances, 2)
}

func TestFlat_Search_TiesKeepInsertionOrder(t *testing.T) {
	idx, err := NewFlat(1)
	require.NoError(t, err)
	require.NoError(t, idx.Add([]float32{1}, []float32{-1}, []float32{1}))

	_, ids, err := idx.Search([]float32{0}, 3)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2}, ids)
}

func TestFlat_Search_NonPositiveK(t *testing.T) {
	idx, err := NewFlat(1)
	require.NoError(t, err)
	require.NoError(t, idx.Add([]float32{1}))

	distances, ids, err := idx.Search([]float32{0}, 0)
	require.NoError(t, err)

	assert.Nil(t, distances)
	assert.Nil(t, ids)
}

func TestFlat_Search_QueryDimensionMismatch(t *testing.T) {
	idx, err := NewFlat(2)
	require.NoError(t, err)
	require.NoError(t, idx.Add([]float32{1, 1}))

	_, _, err = idx.Search([]float32{1, 1, 1}, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query dimension mismatch")

	_, _, err = idx.Search([]float32{1}, 1)
	assert.Error(t, err)
}
