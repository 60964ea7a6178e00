package chat

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/emery7592/presia-backend/internal/chunker"
	"github.com/emery7592/presia-backend/internal/domain"
	"github.com/emery7592/presia-backend/internal/prompt"
	"github.com/emery7592/presia-backend/internal/vectorindex"
)

// FallbackMessage is returned to the chat caller on any internal failure.
// The boundary never surfaces an error to the end user.
const FallbackMessage = "Désolé, je rencontre un problème technique. Réessaie dans un instant."

// Service is the application core behind the chat boundary: it owns the
// embedding index lifecycle and runs each exchange through the prompt
// assembler and the conversation loop.
type Service struct {
	chunker   domain.Chunker
	index     *vectorindex.Index
	assembler *prompt.Assembler
	loop      *Loop
	docPath   string
	indexDir  string
	log       *zap.Logger

	// Serializes explicit rebuilds; queries stay safe because the index
	// holds its write lock across embedder preparation and the vector swap.
	rebuildMu sync.Mutex
}

// NewService wires the chat core together.
func NewService(ch domain.Chunker, index *vectorindex.Index, assembler *prompt.Assembler, loop *Loop, docPath, indexDir string, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		chunker:   ch,
		index:     index,
		assembler: assembler,
		loop:      loop,
		docPath:   docPath,
		indexDir:  indexDir,
		log:       log,
	}
}

// Init prepares the index at startup. A persisted index is always preferred
// over rebuilding, to keep startup fast and embeddings stable across
// restarts; corrupt artifacts fall back to a rebuild. Any remaining failure
// is fatal: a broken index silently serving empty context is worse than
// refusing to start.
func (s *Service) Init(ctx context.Context) error {
	if vectorindex.Exists(s.indexDir) {
		err := s.index.Load(s.indexDir)
		if err == nil {
			s.log.Info("loaded persisted index", zap.Int("chunks", s.index.Len()))
			return nil
		}
		if !errors.Is(err, vectorindex.ErrCorruptIndex) {
			return err
		}
		s.log.Warn("persisted index corrupt, rebuilding", zap.Error(err))
	}
	if err := s.Rebuild(ctx); err != nil {
		return err
	}
	s.log.Info("built index", zap.Int("chunks", s.index.Len()))
	return nil
}

// Rebuild re-chunks the source document, re-embeds and re-indexes it, and
// persists the fresh artifacts. It is an explicit, blocking administrative
// operation; concurrent rebuilds are serialized.
func (s *Service) Rebuild(ctx context.Context) error {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	pages, err := chunker.LoadPages(s.docPath)
	if err != nil {
		return err
	}
	chunks, err := s.chunker.Chunk(pages)
	if err != nil {
		return err
	}
	if err := s.index.Build(ctx, chunks); err != nil {
		return err
	}
	if err := s.index.Save(s.indexDir); err != nil {
		// The fresh index is already serving; only the artifacts are
		// stale, so a restart would revert to the previous embeddings.
		s.log.Warn("index rebuilt in memory but persisting failed, restart would serve stale artifacts",
			zap.Error(err))
		return err
	}
	return nil
}

// ChunkCount reports the size of the loaded index.
func (s *Service) ChunkCount() int { return s.index.Len() }

// Chat answers one user message given the prior conversation. Internal
// failures are logged and converted to the fixed fallback message.
func (s *Service) Chat(ctx context.Context, message string, history []domain.Turn) string {
	instruction := s.assembler.BuildInstruction(ctx, message)
	answer, err := s.loop.Run(ctx, instruction, history, message)
	if err != nil {
		s.log.Error("chat exchange failed", zap.Error(err))
		return FallbackMessage
	}
	return answer
}
