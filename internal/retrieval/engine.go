// Package retrieval implements the multi-corpus retrieval and fusion
// engine: corpus selection from a routing hint, parallel per-corpus
// nearest-neighbor search with neighbor repair, and bounded cross-corpus
// fusion of the results.
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/poliq-ai/poliq/internal/domain"
	"github.com/poliq-ai/poliq/internal/registry"
	"github.com/poliq-ai/poliq/internal/telemetry"
)

// Encoder maps a query to the corpus vector space.
type Encoder interface {
	Encode(ctx context.Context, text string) ([]float32, error)
}

// Config controls engine behavior.
type Config struct {
	// TopKPerCorpus is the default per-corpus neighbor budget when the
	// caller does not supply one.
	TopKPerCorpus int
	// MaxScopedCorpora bounds how many scoped corpora contribute to an
	// unhinted result. Unhinted queries fan out to every scoped corpus;
	// without this bound, latency and prompt size would grow with the
	// number of institutions rather than with relevance.
	MaxScopedCorpora int
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		TopKPerCorpus:    5,
		MaxScopedCorpora: 5,
	}
}

// Engine answers retrieval requests against an immutable corpus
// registry. The registry is populated once at startup, so concurrent
// Retrieve calls need no locking.
type Engine struct {
	registry *registry.Registry
	encoder  Encoder
	cfg      Config
}

// New creates an Engine over the given registry and encoder.
func New(reg *registry.Registry, encoder Encoder, cfg Config) *Engine {
	if cfg.TopKPerCorpus <= 0 {
		cfg.TopKPerCorpus = DefaultConfig().TopKPerCorpus
	}
	if cfg.MaxScopedCorpora <= 0 {
		cfg.MaxScopedCorpora = DefaultConfig().MaxScopedCorpora
	}
	return &Engine{registry: reg, encoder: encoder, cfg: cfg}
}

// Retrieve runs the full query path: encode, select corpora from the
// hint, search each selected corpus, fuse. An empty result is a valid
// "no knowledge available" outcome, never an error. A hint that matches
// no known corpus degrades to searching only the shared corpus.
func (e *Engine) Retrieve(ctx context.Context, question, corpusHint string, kPerCorpus int) ([]domain.RetrievedRecord, error) {
	ctx, span := telemetry.StartSpan(ctx, "Engine.Retrieve", telemetry.SpanAttributes{
		Corpus:    corpusHint,
		Operation: "retrieve",
	})
	defer span.End()

	if kPerCorpus <= 0 {
		kPerCorpus = e.cfg.TopKPerCorpus
	}

	targets, hinted := e.selectCorpora(corpusHint)
	if len(targets) == 0 {
		return []domain.RetrievedRecord{}, nil
	}

	query, err := e.encoder.Encode(ctx, question)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	working, err := e.searchAll(ctx, targets, query, kPerCorpus)
	if err != nil {
		return nil, err
	}

	if hinted {
		return fuseHinted(working, kPerCorpus*len(targets)), nil
	}
	return fuseUnhinted(working, kPerCorpus, e.cfg.MaxScopedCorpora), nil
}

// selectCorpora resolves the routing hint into the set of corpora to
// search. hinted reports whether a scoped corpus was pinned: a hint that
// resolves to the shared corpus itself, or to nothing, degrades to
// shared-only and fuses as hinted (no scoped fan-out happened).
func (e *Engine) selectCorpora(corpusHint string) (targets []*domain.Corpus, hinted bool) {
	shared, hasShared := e.registry.Shared()

	if corpusHint != "" {
		if c, ok := e.registry.Lookup(corpusHint); ok && !c.IsShared() {
			targets = append(targets, c)
		}
		if hasShared {
			targets = append(targets, shared)
		}
		return targets, true
	}

	if hasShared {
		targets = append(targets, shared)
	}
	for _, name := range e.registry.ScopedNames() {
		if c, ok := e.registry.Lookup(name); ok {
			targets = append(targets, c)
		}
	}
	return targets, false
}

// searchAll fans the query out to every target corpus in parallel and
// concatenates the results in target order. Corpora are disjoint and
// read-only, so the only synchronization is the final join.
func (e *Engine) searchAll(ctx context.Context, targets []*domain.Corpus, query []float32, k int) ([]domain.RetrievedRecord, error) {
	perCorpus := make([][]domain.RetrievedRecord, len(targets))
	errs := make([]error, len(targets))

	var wg sync.WaitGroup
	for i, c := range targets {
		wg.Add(1)
		go func(slot int, corpus *domain.Corpus) {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			perCorpus[slot], errs[slot] = searchCorpus(corpus, query, k)
		}(i, c)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	working := make([]domain.RetrievedRecord, 0, len(targets)*k)
	for _, records := range perCorpus {
		working = append(working, records...)
	}
	return working, nil
}

// fuseHinted ranks the full working set by score. The cap equals the
// full search budget, so in practice everything found is returned.
func fuseHinted(working []domain.RetrievedRecord, limit int) []domain.RetrievedRecord {
	sortByScore(working)
	if len(working) > limit {
		working = working[:limit]
	}
	return working
}

// fuseUnhinted bounds the fan-out: shared records are always kept (top k
// by score), scoped corpora are ranked by their best score and only the
// top maxScoped contribute, then the assembled set is re-ranked.
func fuseUnhinted(working []domain.RetrievedRecord, k, maxScoped int) []domain.RetrievedRecord {
	shared := make([]domain.RetrievedRecord, 0, len(working))
	scopedByName := make(map[string][]domain.RetrievedRecord)
	scopedOrder := make([]string, 0)

	for _, r := range working {
		if r.CorpusName == domain.SharedCorpusName {
			shared = append(shared, r)
			continue
		}
		if _, seen := scopedByName[r.CorpusName]; !seen {
			scopedOrder = append(scopedOrder, r.CorpusName)
		}
		scopedByName[r.CorpusName] = append(scopedByName[r.CorpusName], r)
	}

	// Rank scoped corpora by their best record. Stable sort keeps the
	// concatenation order among equal best scores deterministic.
	sort.SliceStable(scopedOrder, func(a, b int) bool {
		return bestScore(scopedByName[scopedOrder[a]]) > bestScore(scopedByName[scopedOrder[b]])
	})
	if len(scopedOrder) > maxScoped {
		scopedOrder = scopedOrder[:maxScoped]
	}

	fused := make([]domain.RetrievedRecord, 0, len(working))
	sortByScore(shared)
	fused = append(fused, topN(shared, k)...)
	for _, name := range scopedOrder {
		records := scopedByName[name]
		sortByScore(records)
		fused = append(fused, topN(records, k)...)
	}

	sortByScore(fused)
	return fused
}

func sortByScore(records []domain.RetrievedRecord) {
	sort.SliceStable(records, func(a, b int) bool {
		return records[a].Score > records[b].Score
	})
}

func topN(records []domain.RetrievedRecord, n int) []domain.RetrievedRecord {
	if len(records) > n {
		return records[:n]
	}
	return records
}

func bestScore(records []domain.RetrievedRecord) float64 {
	best := 0.0
	for _, r := range records {
		if r.Score > best {
			best = r.Score
		}
	}
	return best
}
