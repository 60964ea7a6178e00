package vectorindex

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emery7592/presia-backend/internal/domain"
)

// stubEmbedder returns canned vectors keyed by text.
type stubEmbedder struct {
	vectors map[string][]float64
	fail    bool
	short   bool
}

func (s *stubEmbedder) Name() string                 { return "stub" }
func (s *stubEmbedder) Prepare(corpus []string) error { return nil }
func (s *stubEmbedder) Dimension() int               { return 3 }

func (s *stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if s.fail {
		return nil, assert.AnError
	}
	if s.short {
		return nil, nil
	}
	out := make([][]float64, len(texts))
	for i, t := range texts {
		v, ok := s.vectors[t]
		if !ok {
			v = []float64{0, 0, 1}
		}
		out[i] = append([]float64(nil), v...)
	}
	return out, nil
}

func testChunks() []domain.DocumentChunk {
	return []domain.DocumentChunk{
		{Content: "alpha", PageNumber: 1, ChunkID: 0},
		{Content: "beta", PageNumber: 1, ChunkID: 1},
		{Content: "gamma", PageNumber: 2, ChunkID: 2},
	}
}

func testEmbedder() *stubEmbedder {
	return &stubEmbedder{vectors: map[string][]float64{
		"alpha": {1, 0, 0},
		"beta":  {0.9, 0.1, 0},
		"gamma": {0, 1, 0},
		"query": {1, 0.05, 0},
	}}
}

func TestQuery_BeforeBuild(t *testing.T) {
	x := New(testEmbedder())
	_, err := x.Query(context.Background(), "query", 3)
	assert.ErrorIs(t, err, ErrIndexNotBuilt)
}

func TestBuild_PositionsAndOrdering(t *testing.T) {
	x := New(testEmbedder())
	chunks := testChunks()
	require.NoError(t, x.Build(context.Background(), chunks))
	require.Equal(t, len(chunks), x.Len())
	assert.Equal(t, chunks, x.Chunks())

	res, err := x.Query(context.Background(), "query", 3)
	require.NoError(t, err)
	require.Len(t, res, 3)
	// Scores must be non-increasing.
	for i := 1; i < len(res); i++ {
		assert.LessOrEqual(t, res[i].Score, res[i-1].Score)
	}
	assert.Equal(t, "alpha", res[0].Chunk.Content)
	assert.InDelta(t, 1.0, res[0].Score, 0.01)
}

func TestBuild_RowCountMismatch(t *testing.T) {
	x := New(&stubEmbedder{short: true})
	err := x.Build(context.Background(), testChunks())
	assert.ErrorIs(t, err, ErrEmbeddingFailure)
}

func TestBuild_EmbedderError(t *testing.T) {
	x := New(&stubEmbedder{fail: true})
	err := x.Build(context.Background(), testChunks())
	assert.ErrorIs(t, err, ErrEmbeddingFailure)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	emb := testEmbedder()

	x := New(emb)
	require.NoError(t, x.Build(context.Background(), testChunks()))
	before, err := x.Query(context.Background(), "query", 3)
	require.NoError(t, err)
	require.NoError(t, x.Save(dir))
	assert.True(t, Exists(dir))

	loaded := New(testEmbedder())
	require.NoError(t, loaded.Load(dir))
	require.Equal(t, x.Len(), loaded.Len())
	assert.Equal(t, x.Chunks(), loaded.Chunks())

	after, err := loaded.Query(context.Background(), "query", 3)
	require.NoError(t, err)
	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].Chunk, after[i].Chunk)
		assert.InDelta(t, before[i].Score, after[i].Score, 1e-9)
	}
}

func TestLoad_CountMismatch(t *testing.T) {
	dir := t.TempDir()
	x := New(testEmbedder())
	require.NoError(t, x.Build(context.Background(), testChunks()))
	require.NoError(t, x.Save(dir))

	// Drop one chunk from the metadata artifact so the pair disagrees.
	chunks := x.Chunks()[:2]
	data, err := json.Marshal(chunks)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, chunksFile), data, 0o644))

	loaded := New(testEmbedder())
	err = loaded.Load(dir)
	assert.ErrorIs(t, err, ErrCorruptIndex)
}

func TestExists_MissingArtifact(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, Exists(dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, vectorsFile), []byte("x"), 0o644))
	assert.False(t, Exists(dir))
}

// gatedEmbedder lets a test hold Prepare open mid-rebuild.
type gatedEmbedder struct {
	*stubEmbedder
	block   bool
	entered chan struct{}
	release chan struct{}
}

func (g *gatedEmbedder) Prepare(corpus []string) error {
	if g.block {
		close(g.entered)
		<-g.release
	}
	return g.stubEmbedder.Prepare(corpus)
}

func TestBuild_BlocksConcurrentQueries(t *testing.T) {
	g := &gatedEmbedder{
		stubEmbedder: testEmbedder(),
		entered:      make(chan struct{}),
		release:      make(chan struct{}),
	}
	x := New(g)
	require.NoError(t, x.Build(context.Background(), testChunks()))

	// Hold the second build open inside Prepare, where embedder state is
	// being replaced.
	g.block = true
	buildDone := make(chan error, 1)
	go func() { buildDone <- x.Build(context.Background(), testChunks()) }()
	<-g.entered

	queryDone := make(chan error, 1)
	go func() {
		_, err := x.Query(context.Background(), "query", 3)
		queryDone <- err
	}()

	// The query must not proceed while the rebuild holds the write lock.
	select {
	case <-queryDone:
		t.Fatal("query completed while rebuild was in progress")
	case <-time.After(50 * time.Millisecond):
	}

	close(g.release)
	require.NoError(t, <-buildDone)

	select {
	case err := <-queryDone:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("query did not complete after rebuild finished")
	}
}

func TestSave_LeavesNoTemporaryFiles(t *testing.T) {
	dir := t.TempDir()
	x := New(testEmbedder())
	require.NoError(t, x.Build(context.Background(), testChunks()))
	require.NoError(t, x.Save(dir))
	require.NoError(t, x.Save(dir)) // overwrite in place

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	assert.ElementsMatch(t, []string{vectorsFile, chunksFile}, names)
}

func TestSave_FailsWhenDirIsAFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "blocked")
	require.NoError(t, os.WriteFile(dir, []byte("x"), 0o644))

	x := New(testEmbedder())
	require.NoError(t, x.Build(context.Background(), testChunks()))
	assert.Error(t, x.Save(dir))
}
