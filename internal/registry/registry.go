// Package registry loads corpora from the storage root at startup and
// serves them read-only for the process lifetime. There is no reload:
// corpora are immutable once loaded and a new index requires a restart.
package registry

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/poliq-ai/poliq/internal/domain"
	"github.com/poliq-ai/poliq/internal/index"
)

// MetaArtifactName is the metadata artifact filename inside a corpus
// directory.
const MetaArtifactName = "meta.json"

// metaFile is the on-disk shape of the metadata artifact.
type metaFile struct {
	Chunks    []string           `json:"chunks"`
	Metadatas []domain.ChunkMeta `json:"metadatas"`
}

// Registry holds every corpus discovered under the storage root, keyed
// by lowercased name.
type Registry struct {
	corpora map[string]*domain.Corpus
}

// Load enumerates the immediate subdirectories of storageRoot and loads
// each one carrying both artifacts. A directory missing either artifact
// is skipped with a warning; an artifact that is present but undecodable
// or misaligned fails the whole load.
func Load(storageRoot string) (*Registry, error) {
	info, err := os.Stat(storageRoot)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %q", domain.ErrStorageRootMissing, storageRoot)
	}

	entries, err := os.ReadDir(storageRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to read storage root: %w", err)
	}

	reg := &Registry{corpora: make(map[string]*domain.Corpus)}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		dir := filepath.Join(storageRoot, name)

		indexPath := filepath.Join(dir, index.ArtifactName)
		metaPath := filepath.Join(dir, MetaArtifactName)
		if !fileExists(indexPath) || !fileExists(metaPath) {
			log.Printf("registry: skipping corpus %q, missing index or metadata artifact", name)
			continue
		}

		corpus, err := loadCorpus(name, indexPath, metaPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", domain.ErrCorpusCorrupt, name, err)
		}
		reg.corpora[strings.ToLower(name)] = corpus
	}

	log.Printf("registry: loaded corpora: %v", reg.Names())
	return reg, nil
}

func loadCorpus(name, indexPath, metaPath string) (*domain.Corpus, error) {
	idx, err := index.ReadFile(indexPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read index artifact: %w", err)
	}

	raw, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata artifact: %w", err)
	}
	var meta metaFile
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("failed to decode metadata artifact: %w", err)
	}

	corpus := &domain.Corpus{
		Name:      name,
		Index:     idx,
		Chunks:    meta.Chunks,
		Metadatas: meta.Metadatas,
	}
	if err := domain.ValidateCorpus(corpus); err != nil {
		return nil, err
	}
	return corpus, nil
}

// Lookup returns the corpus with the given name, matched
// case-insensitively. Names arrive both as explicit parameters and as
// routing hints scraped from free text, so normalization happens here.
func (r *Registry) Lookup(name string) (*domain.Corpus, bool) {
	c, ok := r.corpora[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// Shared returns the shared corpus if one was loaded.
func (r *Registry) Shared() (*domain.Corpus, bool) {
	return r.Lookup(domain.SharedCorpusName)
}

// ScopedNames returns the sorted names of every corpus except the shared
// one.
func (r *Registry) ScopedNames() []string {
	names := make([]string, 0, len(r.corpora))
	for name := range r.corpora {
		if name != domain.SharedCorpusName {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Names returns the sorted names of every loaded corpus.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.corpora))
	for name := range r.corpora {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of loaded corpora.
func (r *Registry) Len() int {
	return len(r.corpora)
}

// NewFromCorpora builds a registry from in-memory corpora. Used by the
// retrieval engine's tests and by the ingest pipeline's verification
// pass.
func NewFromCorpora(corpora ...*domain.Corpus) (*Registry, error) {
	reg := &Registry{corpora: make(map[string]*domain.Corpus, len(corpora))}
	for _, c := range corpora {
		if err := domain.ValidateCorpus(c); err != nil {
			return nil, err
		}
		reg.corpora[strings.ToLower(c.Name)] = c
	}
	return reg, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
