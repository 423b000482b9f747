// Package ingest builds corpus artifacts from raw policy PDFs: extract
// text, chunk it, embed every chunk, and write the per-corpus index and
// metadata artifacts the registry loads at startup.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/poliq-ai/poliq/internal/domain"
	"github.com/poliq-ai/poliq/internal/embedding"
	"github.com/poliq-ai/poliq/internal/index"
	"github.com/poliq-ai/poliq/internal/registry"
)

// Builder turns data directories of PDFs into corpus artifacts.
type Builder struct {
	encoder  embedding.Encoder
	chunkCfg ChunkConfig
}

// NewBuilder creates a new Builder instance
func NewBuilder(encoder embedding.Encoder, chunkCfg ChunkConfig) *Builder {
	if chunkCfg.Size <= 0 {
		chunkCfg = DefaultChunkConfig()
	}
	return &Builder{encoder: encoder, chunkCfg: chunkCfg}
}

// BuildAll builds one corpus per subdirectory of dataRoot and writes the
// artifacts under storageRoot, then reloads the whole storage root
// through the registry to verify the artifacts round-trip.
func (b *Builder) BuildAll(ctx context.Context, dataRoot, storageRoot string) error {
	entries, err := os.ReadDir(dataRoot)
	if err != nil {
		return fmt.Errorf("failed to read data root %s: %w", dataRoot, err)
	}

	built := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := strings.ToLower(entry.Name())
		if err := b.BuildCorpus(ctx, name, filepath.Join(dataRoot, entry.Name()), storageRoot); err != nil {
			return fmt.Errorf("failed to build corpus %q: %w", name, err)
		}
		built++
	}

	if built == 0 {
		return fmt.Errorf("no corpus directories found under %s", dataRoot)
	}

	if _, err := registry.Load(storageRoot); err != nil {
		return fmt.Errorf("built artifacts failed verification: %w", err)
	}
	log.Printf("ingest: built %d corpora", built)
	return nil
}

// BuildCorpus builds the artifacts for a single corpus from the PDFs in
// dataDir. Corpora with no extractable chunks are skipped so a stray
// empty directory does not produce an unloadable artifact pair.
func (b *Builder) BuildCorpus(ctx context.Context, name, dataDir, storageRoot string) error {
	chunks, metadatas, err := b.collectChunks(ctx, name, dataDir)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		log.Printf("ingest: corpus %q has no chunks, skipping", name)
		return nil
	}

	idx, err := b.encodeChunks(ctx, name, chunks)
	if err != nil {
		return err
	}

	corpus := &domain.Corpus{Name: name, Index: idx, Chunks: chunks, Metadatas: metadatas}
	if err := domain.ValidateCorpus(corpus); err != nil {
		return err
	}

	return writeArtifacts(storageRoot, corpus, idx)
}

func (b *Builder) collectChunks(ctx context.Context, name, dataDir string) ([]string, []domain.ChunkMeta, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read data directory %s: %w", dataDir, err)
	}

	// Deterministic artifact layout regardless of directory order.
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	var chunks []string
	var metadatas []domain.ChunkMeta
	for _, filename := range files {
		log.Printf("ingest: [%s] reading %s", name, filename)
		text, err := ExtractPDFText(ctx, filepath.Join(dataDir, filename))
		if err != nil {
			return nil, nil, err
		}

		for i, chunk := range ChunkText(text, b.chunkCfg) {
			chunks = append(chunks, chunk)
			metadatas = append(metadatas, domain.ChunkMeta{SourceFile: filename, ChunkID: i})
		}
	}
	return chunks, metadatas, nil
}

func (b *Builder) encodeChunks(ctx context.Context, name string, chunks []string) (*index.Flat, error) {
	idx, err := index.NewFlat(b.encoder.Dimensions())
	if err != nil {
		return nil, err
	}

	bar := progressbar.Default(int64(len(chunks)), "encoding "+name)
	for _, chunk := range chunks {
		vec, err := b.encoder.Encode(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("failed to encode chunk: %w", err)
		}
		if err := idx.Add(vec); err != nil {
			return nil, err
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	return idx, nil
}

func writeArtifacts(storageRoot string, corpus *domain.Corpus, idx *index.Flat) error {
	dir := filepath.Join(storageRoot, corpus.Name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create corpus directory: %w", err)
	}

	if err := index.WriteFile(filepath.Join(dir, index.ArtifactName), idx); err != nil {
		return fmt.Errorf("failed to write index artifact: %w", err)
	}

	meta := struct {
		Chunks    []string           `json:"chunks"`
		Metadatas []domain.ChunkMeta `json:"metadatas"`
	}{Chunks: corpus.Chunks, Metadatas: corpus.Metadatas}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode metadata artifact: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, registry.MetaArtifactName), data, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata artifact: %w", err)
	}
	return nil
}
