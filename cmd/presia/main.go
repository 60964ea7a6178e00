package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/emery7592/presia-backend/internal/chat"
	"github.com/emery7592/presia-backend/internal/chunker"
	"github.com/emery7592/presia-backend/internal/completion"
	"github.com/emery7592/presia-backend/internal/config"
	"github.com/emery7592/presia-backend/internal/domain"
	"github.com/emery7592/presia-backend/internal/embedding/openai"
	"github.com/emery7592/presia-backend/internal/embedding/tfidf"
	"github.com/emery7592/presia-backend/internal/leadstore"
	"github.com/emery7592/presia-backend/internal/notify"
	"github.com/emery7592/presia-backend/internal/prompt"
	"github.com/emery7592/presia-backend/internal/retriever"
	"github.com/emery7592/presia-backend/internal/server"
	"github.com/emery7592/presia-backend/internal/tools"
	"github.com/emery7592/presia-backend/internal/topics"
	"github.com/emery7592/presia-backend/internal/vectorindex"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ./config.yaml or ~/.config/presia/config.yaml)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	svc, store, err := buildService(cfg, logger)
	if err != nil {
		logger.Fatal("assembly failed", zap.Error(err))
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := svc.Init(ctx); err != nil {
		logger.Fatal("index init failed", zap.Error(err))
	}

	router := server.NewRouter(server.NewHandler(svc, logger))
	if err := server.Run(ctx, cfg.Server.Addr, router, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// buildService assembles the chat core from the configuration.
func buildService(cfg *config.AppConfig, logger *zap.Logger) (*chat.Service, *leadstore.Store, error) {
	var emb domain.Embedder
	switch cfg.Embedder.Type {
	case "tfidf", "":
		emb = tfidf.NewEmbedder()
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			return nil, nil, fmt.Errorf("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:   cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv: cfg.Embedder.OpenAI.APIKeyEnv,
			Model:     cfg.Embedder.OpenAI.Model,
			Timeout:   time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
			BatchSize: cfg.Embedder.OpenAI.BatchSize,
		})
		if err != nil {
			return nil, nil, err
		}
		emb = client
	default:
		return nil, nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}

	index := vectorindex.New(emb)
	ret := retriever.New(index, cfg.Retriever.TopK, logger)

	rules := topics.DefaultRules()
	if cfg.Topics.RulesPath != "" {
		loaded, err := topics.LoadRules(cfg.Topics.RulesPath)
		if err != nil {
			return nil, nil, err
		}
		rules = loaded
	}
	assembler := prompt.New(topics.NewRouter(rules), ret, cfg.Retriever.MaxContextChars, "")

	store, err := leadstore.Open(cfg.Leads.DBPath)
	if err != nil {
		return nil, nil, err
	}

	var notifier domain.Notifier
	pushover, err := notify.NewPushoverClient(notify.Config{
		URL:      cfg.Notify.URL,
		UserEnv:  cfg.Notify.UserEnv,
		TokenEnv: cfg.Notify.TokenEnv,
		Timeout:  time.Duration(cfg.Notify.TimeoutSecs) * time.Second,
	})
	if err != nil {
		logger.Warn("push notifications disabled", zap.Error(err))
	} else {
		notifier = pushover
	}

	registry, err := tools.NewRegistry(
		&tools.RecordUserDetails{Store: store, Notifier: notifier, Log: logger},
		&tools.RecordUnknownQuestion{Store: store, Notifier: notifier, Log: logger},
	)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	client, err := completion.NewClient(completion.Config{
		BaseURL:   cfg.Completion.BaseURL,
		APIKeyEnv: cfg.Completion.APIKeyEnv,
		Model:     cfg.Completion.Model,
		Timeout:   time.Duration(cfg.Completion.TimeoutSecs) * time.Second,
	})
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	loop := chat.NewLoop(client, registry, cfg.Completion.MaxToolRounds, logger)
	ch := chunker.NewWordChunker(cfg.Document.ChunkSize, cfg.Document.MinChunkChars)
	svc := chat.NewService(ch, index, assembler, loop, cfg.Document.Path, cfg.Index.Dir, logger)
	return svc, store, nil
}
