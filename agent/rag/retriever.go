package rag

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

type RetrieverConfig struct {
	TopK           int     `envconfig:"TOP_K" split_words:"true" default:"5"`
	ScoreThreshold float64 `envconfig:"SCORE_THRESHOLD" split_words:"true" default:"0.2"`
}

// Retriever answers similarity queries against the persisted index.
// Retrieval is best effort: a missing index or any failure yields an
// empty result so the conversation keeps flowing without context.
type Retriever struct {
	embedder Embedder
	store    *IndexStore
	cfg      RetrieverConfig

	mu    sync.RWMutex
	index *Index
}

func NewRetriever(embedder Embedder, store *IndexStore, cfg RetrieverConfig) *Retriever {
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	return &Retriever{embedder: embedder, store: store, cfg: cfg}
}

// Invalidate drops the cached index so the next query reloads it.
// Called after an ingestion run replaces the index on disk.
func (r *Retriever) Invalidate() {
	r.mu.Lock()
	r.index = nil
	r.mu.Unlock()
}

func (r *Retriever) Search(ctx context.Context, query string, k int) ([]string, error) {
	if k <= 0 {
		k = r.cfg.TopK
	}

	index, err := r.loadIndex()
	if err != nil {
		if errors.Is(err, ErrIndexNotFound) {
			log.Debug().Msg("vector index missing, retrieval disabled")
			return nil, nil
		}
		log.Warn().Err(err).Msg("vector index load failed")
		return nil, nil
	}
	if len(index.Chunks) == 0 {
		return nil, nil
	}

	vectors, err := r.embedder.Embed(ctx, []string{query})
	if err != nil || len(vectors) != 1 {
		log.Warn().Err(err).Msg("query embedding failed")
		return nil, nil
	}
	queryVector := vectors[0]

	type scored struct {
		score   float64
		content string
	}
	candidates := make([]scored, 0, len(index.Chunks))
	for _, chunk := range index.Chunks {
		score := cosineSimilarity(queryVector, chunk.Vector)
		if score < r.cfg.ScoreThreshold {
			continue
		}
		candidates = append(candidates, scored{score: score, content: chunk.Content})
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	if len(candidates) > k {
		candidates = candidates[:k]
	}

	results := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		results = append(results, candidate.content)
	}
	return results, nil
}

func (r *Retriever) loadIndex() (*Index, error) {
	r.mu.RLock()
	cached := r.index
	r.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	index, err := r.store.Load()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.index = index
	r.mu.Unlock()
	return index, nil
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
