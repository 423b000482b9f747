package domain

import "fmt"

// SharedCorpusName is the reserved corpus searched on every request
// regardless of the routing hint. All other corpora are scoped to a
// single institution.
const SharedCorpusName = "common"

// ChunkMeta locates a chunk within its source document. ChunkID is the
// zero-based position assigned at ingestion time, in document order.
type ChunkMeta struct {
	SourceFile string `json:"source_file"`
	ChunkID    int    `json:"chunk_id"`
}

// VectorIndex is a nearest-neighbor index over the corpus vectors.
// Search returns parallel distance/id slices of length k, padded with
// the -1 id sentinel when fewer than k vectors exist. A query whose
// dimension does not match the index is an error.
type VectorIndex interface {
	Search(query []float32, k int) (distances []float32, ids []int, err error)
	Count() int
	Dimension() int
}

// Corpus is an immutable named collection: one indexed vector per chunk,
// with chunk texts and metadata positionally aligned with the index
// (array position is the chunk's identity).
type Corpus struct {
	Name      string
	Index     VectorIndex
	Chunks    []string
	Metadatas []ChunkMeta
}

// IsShared reports whether this is the shared corpus.
func (c *Corpus) IsShared() bool {
	return c.Name == SharedCorpusName
}

// ValidateCorpus checks the alignment invariant that retrieval
// correctness depends on.
func ValidateCorpus(c *Corpus) error {
	if c == nil {
		return fmt.Errorf("corpus cannot be nil")
	}
	if c.Name == "" {
		return fmt.Errorf("corpus name is required")
	}
	if c.Index == nil {
		return fmt.Errorf("corpus %q has no vector index", c.Name)
	}
	if len(c.Chunks) != len(c.Metadatas) {
		return fmt.Errorf("corpus %q: %d chunks but %d metadata records", c.Name, len(c.Chunks), len(c.Metadatas))
	}
	if c.Index.Count() != len(c.Chunks) {
		return fmt.Errorf("corpus %q: index holds %d vectors but %d chunks exist", c.Name, c.Index.Count(), len(c.Chunks))
	}
	return nil
}
