package ingest

import "strings"

// ChunkConfig controls fixed-size character chunking.
type ChunkConfig struct {
	Size    int
	Overlap int
}

// DefaultChunkConfig returns the default chunking configuration.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{Size: 800, Overlap: 200}
}

// ChunkText splits text into overlapping character chunks. Cuts land at
// arbitrary offsets; the retrieval side repairs the boundaries by
// merging adjacent chunks at query time. Blank chunks are dropped, and
// surviving chunks keep their document order so the chunk index doubles
// as the sequence index.
func ChunkText(text string, cfg ChunkConfig) []string {
	if cfg.Size <= 0 {
		cfg = DefaultChunkConfig()
	}
	step := cfg.Size - cfg.Overlap
	if step <= 0 {
		step = cfg.Size
	}

	runes := []rune(text)
	chunks := make([]string, 0, len(runes)/cfg.Size+1)
	for start := 0; start < len(runes); start += step {
		end := start + cfg.Size
		if end > len(runes) {
			end = len(runes)
		}
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}
