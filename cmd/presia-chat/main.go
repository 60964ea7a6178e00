package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/emery7592/presia-backend/internal/chat"
	"github.com/emery7592/presia-backend/internal/chatui"
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

	// The TUI owns the terminal, so logs stay out of the way.
	logger := zap.NewNop()

	var emb domain.Embedder
	switch cfg.Embedder.Type {
	case "tfidf", "":
		emb = tfidf.NewEmbedder()
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			log.Fatal("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:   cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv: cfg.Embedder.OpenAI.APIKeyEnv,
			Model:     cfg.Embedder.OpenAI.Model,
			Timeout:   time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
			BatchSize: cfg.Embedder.OpenAI.BatchSize,
		})
		if err != nil {
			log.Fatalf("openai embedder init failed: %v", err)
		}
		emb = client
	default:
		log.Fatalf("unknown embedder: %s", cfg.Embedder.Type)
	}

	index := vectorindex.New(emb)
	ret := retriever.New(index, cfg.Retriever.TopK, logger)

	rules := topics.DefaultRules()
	if cfg.Topics.RulesPath != "" {
		if rules, err = topics.LoadRules(cfg.Topics.RulesPath); err != nil {
			log.Fatalf("failed to load topic rules: %v", err)
		}
	}
	assembler := prompt.New(topics.NewRouter(rules), ret, cfg.Retriever.MaxContextChars, "")

	store, err := leadstore.Open(cfg.Leads.DBPath)
	if err != nil {
		log.Fatalf("failed to open lead store: %v", err)
	}
	defer store.Close()

	var notifier domain.Notifier
	if pushover, err := notify.NewPushoverClient(notify.Config{
		URL:      cfg.Notify.URL,
		UserEnv:  cfg.Notify.UserEnv,
		TokenEnv: cfg.Notify.TokenEnv,
		Timeout:  time.Duration(cfg.Notify.TimeoutSecs) * time.Second,
	}); err == nil {
		notifier = pushover
	}

	registry, err := tools.NewRegistry(
		&tools.RecordUserDetails{Store: store, Notifier: notifier, Log: logger},
		&tools.RecordUnknownQuestion{Store: store, Notifier: notifier, Log: logger},
	)
	if err != nil {
		log.Fatalf("failed to build tool registry: %v", err)
	}

	client, err := completion.NewClient(completion.Config{
		BaseURL:   cfg.Completion.BaseURL,
		APIKeyEnv: cfg.Completion.APIKeyEnv,
		Model:     cfg.Completion.Model,
		Timeout:   time.Duration(cfg.Completion.TimeoutSecs) * time.Second,
	})
	if err != nil {
		log.Fatalf("completion client init failed: %v", err)
	}

	loop := chat.NewLoop(client, registry, cfg.Completion.MaxToolRounds, logger)
	ch := chunker.NewWordChunker(cfg.Document.ChunkSize, cfg.Document.MinChunkChars)
	svc := chat.NewService(ch, index, assembler, loop, cfg.Document.Path, cfg.Index.Dir, logger)

	fmt.Println("Préparation de l'index...")
	if err := svc.Init(context.Background()); err != nil {
		log.Fatalf("index init failed: %v", err)
	}

	m := chatui.New(svc, prompt.DefaultName)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
