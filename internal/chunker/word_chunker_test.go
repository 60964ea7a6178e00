package chunker

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("word%d", i)
	}
	return strings.Join(parts, " ")
}

func TestChunk_WindowsAndRemainder(t *testing.T) {
	c := NewWordChunker(400, 50)

	chunks, err := c.Chunk([]string{words(850)})
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	assert.Equal(t, 400, len(strings.Fields(chunks[0].Content)))
	assert.Equal(t, 400, len(strings.Fields(chunks[1].Content)))
	assert.Equal(t, 50, len(strings.Fields(chunks[2].Content)))
	for i, ch := range chunks {
		assert.Equal(t, i, ch.ChunkID)
		assert.Equal(t, 1, ch.PageNumber)
	}
}

func TestChunk_EmptyPageYieldsNothing(t *testing.T) {
	c := NewWordChunker(400, 50)

	chunks, err := c.Chunk([]string{"", "   \n  ", words(100)})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, 3, chunks[0].PageNumber)
	assert.Equal(t, 0, chunks[0].ChunkID)
}

func TestChunk_ShortRemainderDropped(t *testing.T) {
	// 5-word chunk size; a 2-word tail of tiny words stays under the
	// character threshold and must be discarded, not errored.
	c := NewWordChunker(5, 20)

	chunks, err := c.Chunk([]string{"aaaa bbbb cccc dddd eeee ff gg"})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "aaaa bbbb cccc dddd eeee", chunks[0].Content)
}

func TestChunk_SequentialIDsAcrossPages(t *testing.T) {
	c := NewWordChunker(100, 50)

	chunks, err := c.Chunk([]string{words(250), words(150)})
	require.NoError(t, err)
	require.Len(t, chunks, 5)
	for i, ch := range chunks {
		assert.Equal(t, i, ch.ChunkID)
	}
	assert.Equal(t, 1, chunks[0].PageNumber)
	assert.Equal(t, 2, chunks[3].PageNumber)
}

func TestChunk_Idempotent(t *testing.T) {
	c := NewWordChunker(50, 50)
	pages := []string{words(320), "", words(75)}

	first, err := c.Chunk(pages)
	require.NoError(t, err)
	second, err := c.Chunk(pages)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLoadPages(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("page one\fpage two\fpage three"), 0o644))
	pages, err := LoadPages(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"page one", "page two", "page three"}, pages)

	blank := filepath.Join(dir, "blank.txt")
	require.NoError(t, os.WriteFile(blank, []byte(" \f \n"), 0o644))
	_, err = LoadPages(blank)
	assert.Error(t, err)

	_, err = LoadPages(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}
