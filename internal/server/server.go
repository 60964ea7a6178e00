// Package server exposes the chat core over HTTP.
package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/emery7592/presia-backend/internal/chat"
	"github.com/emery7592/presia-backend/internal/domain"
)

// HistoryTurn is the wire form of one prior exchange message.
type HistoryTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message string        `json:"message" binding:"required"`
	History []HistoryTurn `json:"history"`
}

// ChatResponse carries the assistant's reply.
type ChatResponse struct {
	Assistant string `json:"assistant"`
}

// Handler adapts HTTP requests onto the chat service.
type Handler struct {
	svc *chat.Service
	log *zap.Logger
}

func NewHandler(svc *chat.Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, log: log}
}

// NewRouter builds the HTTP surface: the chat endpoint, a health probe and
// an administrative reindex trigger.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", h.Health)
	router.POST("/chat", h.Chat)
	router.POST("/admin/reindex", h.Reindex)

	return router
}

func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	history := make([]domain.Turn, 0, len(req.History))
	for _, t := range req.History {
		role := domain.Role(t.Role)
		switch role {
		case domain.RoleUser, domain.RoleAssistant:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "history roles must be user or assistant"})
			return
		}
		history = append(history, domain.Turn{Role: role, Content: t.Content})
	}

	answer := h.svc.Chat(c.Request.Context(), req.Message, history)
	c.JSON(http.StatusOK, ChatResponse{Assistant: answer})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "chunks": h.svc.ChunkCount()})
}

func (h *Handler) Reindex(c *gin.Context) {
	if err := h.svc.Rebuild(c.Request.Context()); err != nil {
		h.log.Error("reindex failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reindex failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "chunks": h.svc.ChunkCount()})
}

// Run serves the router until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, addr string, router *gin.Engine, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	srv := &http.Server{Addr: addr, Handler: router}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	log.Info("http server listening", zap.String("addr", addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	}
}
