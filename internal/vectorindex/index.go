package vectorindex

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/emery7592/presia-backend/internal/domain"
)

var (
	// ErrIndexNotBuilt is returned when Query runs before Build or Load.
	// This is a programming error, not a runtime condition.
	ErrIndexNotBuilt = errors.New("vector index not built")

	// ErrCorruptIndex is returned when the persisted artifacts disagree.
	ErrCorruptIndex = errors.New("corrupt index artifacts")

	// ErrEmbeddingFailure wraps embedding call errors and shape mismatches.
	ErrEmbeddingFailure = errors.New("embedding failure")
)

// Index is an exact nearest-neighbor index over L2-normalized chunk
// embeddings: inner product equals cosine similarity. The index owns the
// chunk list; position i of the vector set always corresponds to chunks[i].
//
// After Build or Load the index is read-only, so concurrent queries are safe;
// the RWMutex exists for the explicit rebuild path, which replaces the
// embedder's prepared state and the vector set together under the write lock.
type Index struct {
	mu       sync.RWMutex
	embedder domain.Embedder

	dimension int
	vectors   [][]float64
	chunks    []domain.DocumentChunk
	built     bool
}

// New creates an empty index backed by the given embedder.
func New(embedder domain.Embedder) *Index {
	return &Index{embedder: embedder}
}

// Build embeds all chunks in one batched call, L2-normalizes the vectors and
// installs them in chunk order, replacing any previous contents.
//
// The write lock is held for the whole operation, not just the install:
// Prepare mutates embedder state (vocabulary, dimension) that concurrent
// queries read through Embed, so embedder and vectors must change together.
func (x *Index) Build(ctx context.Context, chunks []domain.DocumentChunk) error {
	if len(chunks) == 0 {
		return fmt.Errorf("%w: no chunks to index", ErrEmbeddingFailure)
	}
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Content
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	if err := x.embedder.Prepare(texts); err != nil {
		return fmt.Errorf("%w: prepare: %v", ErrEmbeddingFailure, err)
	}
	vectors, err := x.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEmbeddingFailure, err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("%w: got %d vectors for %d chunks", ErrEmbeddingFailure, len(vectors), len(chunks))
	}
	dim := len(vectors[0])
	for _, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("%w: inconsistent vector dimensions", ErrEmbeddingFailure)
		}
		normalize(v)
	}

	x.dimension = dim
	x.vectors = vectors
	x.chunks = append([]domain.DocumentChunk(nil), chunks...)
	x.built = true
	return nil
}

// Query embeds the text, normalizes it and returns up to k results ordered by
// descending cosine similarity.
func (x *Index) Query(ctx context.Context, text string, k int) ([]domain.SearchResult, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if !x.built {
		return nil, ErrIndexNotBuilt
	}
	if k <= 0 {
		k = 5
	}
	vecs, err := x.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailure, err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("%w: got %d vectors for one query", ErrEmbeddingFailure, len(vecs))
	}
	q := vecs[0]
	if len(q) != x.dimension {
		return nil, fmt.Errorf("%w: query dimension %d, index dimension %d", ErrEmbeddingFailure, len(q), x.dimension)
	}
	normalize(q)

	results := make([]domain.SearchResult, len(x.vectors))
	for i, v := range x.vectors {
		results[i] = domain.SearchResult{Chunk: x.chunks[i], Score: dot(v, q)}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

// Len returns the number of indexed chunks.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.chunks)
}

// Chunks returns the indexed chunk list in index order.
func (x *Index) Chunks() []domain.DocumentChunk {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return append([]domain.DocumentChunk(nil), x.chunks...)
}

func normalize(v []float64) {
	norm := 0.0
	for _, f := range v {
		norm += f * f
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return
	}
	for i := range v {
		v[i] /= norm
	}
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
