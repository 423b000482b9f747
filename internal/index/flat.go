package index

import (
	"fmt"
	"math"
	"sort"
)

// NoMatchID is returned in the id slot when fewer vectors exist than
// were requested.
const NoMatchID = -1

// Flat is an exact nearest-neighbor index over fixed-dimension vectors.
// Search is brute force by squared Euclidean distance; corpora here are a
// few thousand chunks, so exhaustive scan beats maintaining an ANN graph.
// A Flat index is immutable once loaded into a corpus, so concurrent
// searches need no locking.
type Flat struct {
	dimension int
	vectors   [][]float32
}

// NewFlat creates an empty index for vectors of the given dimension.
func NewFlat(dimension int) (*Flat, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("invalid index dimension: %d", dimension)
	}
	return &Flat{dimension: dimension}, nil
}

// Add appends vectors to the index. Position of insertion is the
// vector's identity.
func (f *Flat) Add(vectors ...[]float32) error {
	for _, v := range vectors {
		if len(v) != f.dimension {
			return fmt.Errorf("vector dimension mismatch: expected %d, got %d", f.dimension, len(v))
		}
	}
	f.vectors = append(f.vectors, vectors...)
	return nil
}

// Count returns the number of indexed vectors.
func (f *Flat) Count() int {
	return len(f.vectors)
}

// Dimension returns the vector dimension.
func (f *Flat) Dimension() int {
	return f.dimension
}

// Search returns the k nearest vectors to query as parallel
// (distances, ids) slices of length k, ordered by ascending distance.
// Slots beyond the number of stored vectors carry the NoMatchID sentinel
// and an infinite distance. Distances are squared L2. A query of the
// wrong dimension is an error, not a truncated comparison.
func (f *Flat) Search(query []float32, k int) ([]float32, []int, error) {
	if len(query) != f.dimension {
		return nil, nil, fmt.Errorf("query dimension mismatch: expected %d, got %d", f.dimension, len(query))
	}
	if k <= 0 {
		return nil, nil, nil
	}

	order := make([]int, len(f.vectors))
	dists := make([]float32, len(f.vectors))
	for i, v := range f.vectors {
		order[i] = i
		dists[i] = squaredL2(query, v)
	}
	// Stable keeps insertion order among exact ties, so repeated searches
	// over the same index are deterministic.
	sort.SliceStable(order, func(a, b int) bool {
		return dists[order[a]] < dists[order[b]]
	})

	outDists := make([]float32, k)
	outIDs := make([]int, k)
	for i := 0; i < k; i++ {
		if i < len(order) {
			outDists[i] = dists[order[i]]
			outIDs[i] = order[i]
			continue
		}
		outDists[i] = float32(math.Inf(1))
		outIDs[i] = NoMatchID
	}
	return outDists, outIDs, nil
}

// squaredL2 assumes equal lengths; Add and Search validate the
// dimension before any vector reaches here.
func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
