package vectorindex

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/emery7592/presia-backend/internal/domain"
)

const (
	vectorsFile = "index.gob"
	chunksFile  = "chunks.json"
)

type vectorArtifact struct {
	Dimension int
	Vectors   [][]float64
}

// Exists reports whether both persisted artifacts are present in dir.
func Exists(dir string) bool {
	for _, name := range []string{vectorsFile, chunksFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return false
		}
	}
	return true
}

// Save writes the two index artifacts: the vector blob and the parallel chunk
// metadata in index-position order. Both are written to temporary files and
// renamed into place, so a failed save leaves any previous artifact pair
// intact instead of half-replaced.
func (x *Index) Save(dir string) error {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if !x.built {
		return ErrIndexNotBuilt
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	vectorsTmp := filepath.Join(dir, vectorsFile+".tmp")
	vf, err := os.Create(vectorsTmp)
	if err != nil {
		return fmt.Errorf("create vector artifact: %w", err)
	}
	if err := gob.NewEncoder(vf).Encode(vectorArtifact{Dimension: x.dimension, Vectors: x.vectors}); err != nil {
		vf.Close()
		os.Remove(vectorsTmp)
		return fmt.Errorf("encode vector artifact: %w", err)
	}
	if err := vf.Close(); err != nil {
		os.Remove(vectorsTmp)
		return fmt.Errorf("close vector artifact: %w", err)
	}

	data, err := json.MarshalIndent(x.chunks, "", "  ")
	if err != nil {
		os.Remove(vectorsTmp)
		return fmt.Errorf("encode chunk artifact: %w", err)
	}
	chunksTmp := filepath.Join(dir, chunksFile+".tmp")
	if err := os.WriteFile(chunksTmp, data, 0o644); err != nil {
		os.Remove(vectorsTmp)
		return fmt.Errorf("write chunk artifact: %w", err)
	}

	if err := os.Rename(vectorsTmp, filepath.Join(dir, vectorsFile)); err != nil {
		os.Remove(vectorsTmp)
		os.Remove(chunksTmp)
		return fmt.Errorf("install vector artifact: %w", err)
	}
	if err := os.Rename(chunksTmp, filepath.Join(dir, chunksFile)); err != nil {
		os.Remove(chunksTmp)
		return fmt.Errorf("install chunk artifact: %w", err)
	}
	return nil
}

// Load reads both artifacts and installs them, replacing any previous
// contents. The two artifacts must agree on count; a mismatch means one of
// them was regenerated without the other and the pair is unusable.
func (x *Index) Load(dir string) error {
	vf, err := os.Open(filepath.Join(dir, vectorsFile))
	if err != nil {
		return fmt.Errorf("open vector artifact: %w", err)
	}
	defer vf.Close()
	var va vectorArtifact
	if err := gob.NewDecoder(vf).Decode(&va); err != nil {
		return fmt.Errorf("%w: decode vector artifact: %v", ErrCorruptIndex, err)
	}

	data, err := os.ReadFile(filepath.Join(dir, chunksFile))
	if err != nil {
		return fmt.Errorf("read chunk artifact: %w", err)
	}
	var chunks []domain.DocumentChunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return fmt.Errorf("%w: decode chunk artifact: %v", ErrCorruptIndex, err)
	}

	if len(va.Vectors) != len(chunks) {
		return fmt.Errorf("%w: %d vectors but %d chunks", ErrCorruptIndex, len(va.Vectors), len(chunks))
	}
	for _, v := range va.Vectors {
		if len(v) != va.Dimension {
			return fmt.Errorf("%w: vector dimension %d, artifact dimension %d", ErrCorruptIndex, len(v), va.Dimension)
		}
	}

	// Local embedders rebuild their vocabulary from the persisted chunk
	// texts so query-time embeddings stay comparable to the stored vectors.
	// Prepare mutates embedder state concurrent queries read, so it runs
	// under the same write lock as the install.
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Content
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	if err := x.embedder.Prepare(texts); err != nil {
		return fmt.Errorf("prepare embedder from artifacts: %w", err)
	}
	if d := x.embedder.Dimension(); d != 0 && d != va.Dimension {
		return fmt.Errorf("%w: embedder dimension %d, artifact dimension %d", ErrCorruptIndex, d, va.Dimension)
	}

	x.dimension = va.Dimension
	x.vectors = va.Vectors
	x.chunks = chunks
	x.built = true
	return nil
}
