package retriever

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/emery7592/presia-backend/internal/domain"
)

// DegradedPlaceholder is returned as context text when retrieval fails.
// Context is an enrichment; the rest of the pipeline proceeds without it.
const DegradedPlaceholder = "Contexte non disponible"

const separator = "\n---\n"

// Searcher is the index operation the retriever depends on.
type Searcher interface {
	Query(ctx context.Context, text string, k int) ([]domain.SearchResult, error)
}

// ContextRetriever selects the most similar chunks for a query and packs them
// into a character-budgeted context string.
type ContextRetriever struct {
	index Searcher
	topK  int
	log   *zap.Logger
}

// New creates a retriever over the given index. topK bounds how many chunks
// are considered per query.
func New(index Searcher, topK int, log *zap.Logger) *ContextRetriever {
	if topK <= 0 {
		topK = 8
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ContextRetriever{index: index, topK: topK, log: log}
}

// GetContext packs the top-ranked chunks into a context string of at most
// maxChars characters. Chunks are taken strictly in descending-similarity
// order; the first chunk that would overflow the budget stops the packing,
// even if a later, smaller chunk would still fit.
//
// A blank query yields an empty successful result; the caller substitutes a
// neutral placeholder. Index or embedding failures yield a degraded result
// carrying DegradedPlaceholder, never an error.
func (r *ContextRetriever) GetContext(ctx context.Context, query string, maxChars int) domain.ContextResult {
	if strings.TrimSpace(query) == "" {
		return domain.ContextResult{}
	}
	results, err := r.index.Query(ctx, query, r.topK)
	if err != nil {
		r.log.Warn("context retrieval degraded", zap.Error(err))
		return domain.ContextResult{Text: DegradedPlaceholder, Degraded: true, Err: err}
	}

	var parts []string
	total := 0
	for _, res := range results {
		piece := fmt.Sprintf("[Page %d]\n%s\n", res.Chunk.PageNumber, res.Chunk.Content)
		// Budget counts characters, not bytes; accented text must pack
		// the same as plain ASCII.
		size := utf8.RuneCountInString(piece)
		if total+size > maxChars {
			break
		}
		parts = append(parts, piece)
		total += size
	}
	return domain.ContextResult{Text: strings.Join(parts, separator)}
}
