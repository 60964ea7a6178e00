package chunker

import (
	"strings"

	"github.com/emery7592/presia-backend/internal/domain"
)

// WordChunker splits page text into non-overlapping windows of a fixed word
// count. Windows whose joined text is at or below the minimum character
// threshold are dropped as noise (page headers, stray line numbers).
type WordChunker struct {
	chunkSize     int
	minChunkChars int
}

// NewWordChunker creates a chunker with the given window size (words) and
// minimum chunk length (characters).
func NewWordChunker(chunkSize, minChunkChars int) *WordChunker {
	if chunkSize <= 0 {
		chunkSize = 400
	}
	if minChunkChars < 0 {
		minChunkChars = 50
	}
	return &WordChunker{chunkSize: chunkSize, minChunkChars: minChunkChars}
}

// Chunk splits the ordered page texts into chunks. Page numbers are 1-based;
// chunk IDs are assigned sequentially across the whole document, not per
// page. An empty page yields zero chunks. Chunking is deterministic:
// identical input always yields an identical chunk list.
func (c *WordChunker) Chunk(pages []string) ([]domain.DocumentChunk, error) {
	var chunks []domain.DocumentChunk
	chunkID := 0
	for pageIdx, text := range pages {
		words := strings.Fields(text)
		for i := 0; i < len(words); i += c.chunkSize {
			end := i + c.chunkSize
			if end > len(words) {
				end = len(words)
			}
			content := strings.Join(words[i:end], " ")
			if len(strings.TrimSpace(content)) <= c.minChunkChars {
				continue
			}
			chunks = append(chunks, domain.DocumentChunk{
				Content:    content,
				PageNumber: pageIdx + 1,
				ChunkID:    chunkID,
			})
			chunkID++
		}
	}
	return chunks, nil
}
