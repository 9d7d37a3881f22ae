package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skellner/converse/internal/config"
	"github.com/skellner/converse/internal/engine"
	"github.com/skellner/converse/internal/nlp"
	"github.com/skellner/converse/internal/notify"
	"github.com/skellner/converse/internal/server"
	"github.com/skellner/converse/internal/session"
	"github.com/skellner/converse/internal/storage"
	"github.com/skellner/converse/internal/storage/postgres"
	"github.com/skellner/converse/internal/storage/sqlite"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize the annotation backend
	tagger, builtin, err := nlp.NewTagger(nlp.Options{
		Model:       cfg.NLP.Model,
		RemoteURL:   cfg.NLP.RemoteURL,
		LexiconPath: cfg.NLP.LexiconPath,
		CacheSize:   cfg.NLP.CacheSize,
	})
	if err != nil {
		log.Fatalf("Failed to initialize annotation backend: %v", err)
	}

	// Initialize archive storage
	archive, err := openArchive(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer archive.Close()

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Session store: one context engine per conversation
	sessions := session.NewStore(func() *engine.ContextEngine {
		return engine.New(tagger, engine.WithWindowSize(cfg.Context.WindowSize))
	})

	// Watch the lexicon file for live reloads of the builtin backend
	var watcher *notify.LexiconWatcher
	if cfg.NLP.WatchLexicon && cfg.NLP.LexiconPath != "" && builtin != nil {
		watcher = notify.NewLexiconWatcher(cfg.NLP.LexiconPath, func(path string) {
			lex, err := nlp.LoadLexiconFile(path)
			if err != nil {
				log.Printf("Lexicon reload failed: %v", err)
				return
			}
			builtin.ReloadLexicons(lex)
			if cache, ok := tagger.(*nlp.CachingTagger); ok {
				cache.Purge()
			}
			log.Printf("Lexicon reloaded from %s", path)
		})
		if err := watcher.Start(); err != nil {
			log.Printf("Failed to watch lexicon file: %v", err)
			watcher = nil
		}
	}

	// Start server
	addr, _ := server.Start(ctx, cfg, sessions, archive)
	log.Printf("Converse API running at http://%s", addr)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")

	if watcher != nil {
		watcher.Stop()
	}

	cancel()
	time.Sleep(1 * time.Second) // Give time for connections to close
}

// openArchive builds the configured archive store.
func openArchive(cfg *config.Config) (storage.ArchiveStore, error) {
	switch cfg.Storage.StorageEngine {
	case "sqlite":
		if err := os.MkdirAll(cfg.Storage.DataPath, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		return sqlite.NewArchiveStore(cfg.Storage.DataPath + "/converse.db")
	case "postgres":
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
			cfg.Storage.PostgresUser, cfg.Storage.PostgresPass,
			cfg.Storage.PostgresHost, cfg.Storage.PostgresPort,
			cfg.Storage.PostgresDB, cfg.Storage.PostgresSSL)
		return postgres.NewArchiveStore(dsn)
	default:
		return nil, fmt.Errorf("unknown storage engine %q", cfg.Storage.StorageEngine)
	}
}
