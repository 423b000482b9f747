package retrieval

import (
	"fmt"
	"strings"

	"github.com/poliq-ai/poliq/internal/domain"
)

// searchCorpus runs nearest-neighbor search against one corpus and
// builds a record per valid hit. Sentinel ids (fewer than k vectors
// exist) are discarded, so asking for more neighbors than the corpus
// holds returns the available subset. Records come back ordered by
// ascending distance, i.e. descending score.
func searchCorpus(c *domain.Corpus, query []float32, k int) ([]domain.RetrievedRecord, error) {
	distances, ids, err := c.Index.Search(query, k)
	if err != nil {
		return nil, fmt.Errorf("search failed for corpus %q: %w", c.Name, err)
	}

	records := make([]domain.RetrievedRecord, 0, len(ids))
	for i, id := range ids {
		if id < 0 || id >= len(c.Chunks) {
			continue
		}
		meta := c.Metadatas[id]
		records = append(records, domain.RetrievedRecord{
			CorpusName:     c.Name,
			SourceDocument: meta.SourceFile,
			ChunkID:        meta.ChunkID,
			Score:          1 / (1 + float64(distances[i])),
			RawText:        c.Chunks[id],
			MergedText:     mergeNeighbors(c, id),
		})
	}
	return records, nil
}

// mergeNeighbors repairs chunk boundaries: ingestion cuts text at
// arbitrary character offsets, so a retrieved chunk may start or end
// mid-sentence. A neighbor at the adjacent array position is included
// only when it comes from the same source document and sits at the
// adjacent sequence index. This is a purely positional check; it never
// consults the index or scores.
func mergeNeighbors(c *domain.Corpus, pos int) string {
	current := c.Metadatas[pos]
	texts := make([]string, 0, 3)

	if pos-1 >= 0 {
		prev := c.Metadatas[pos-1]
		if prev.SourceFile == current.SourceFile && prev.ChunkID == current.ChunkID-1 {
			texts = append(texts, c.Chunks[pos-1])
		}
	}

	texts = append(texts, c.Chunks[pos])

	if pos+1 < len(c.Chunks) {
		next := c.Metadatas[pos+1]
		if next.SourceFile == current.SourceFile && next.ChunkID == current.ChunkID+1 {
			texts = append(texts, c.Chunks[pos+1])
		}
	}

	return strings.Join(texts, "\n")
}
