// cmd/server/main.go
package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/deepblue-labs/datachat/internal/analyzer"
	"github.com/deepblue-labs/datachat/internal/cache"
	"github.com/deepblue-labs/datachat/internal/config"
	"github.com/deepblue-labs/datachat/internal/dataset"
	"github.com/deepblue-labs/datachat/internal/llm"
	"github.com/deepblue-labs/datachat/internal/server"
	"github.com/deepblue-labs/datachat/internal/watch"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	var store cache.Store
	if cfg.Cache.Path != "" {
		store, err = cache.NewSQLite(cfg.Cache.Path, cfg.Cache.TTL)
		if err != nil {
			log.Fatalf("failed to open cache store: %v", err)
		}
	} else {
		store = cache.NewMemory(cfg.Cache.TTL)
	}
	defer store.Close()

	llmProvider, err := llm.NewOpenAI(&cfg.OpenAI)
	if err != nil {
		log.Fatalf("failed to create LLM provider: %v", err)
	}

	registry := dataset.NewRegistry()
	if cfg.Data.Dir != "" {
		tables, err := dataset.LoadDir(cfg.Data.Dir)
		if err != nil {
			log.Fatalf("failed to load data directory: %v", err)
		}
		for _, t := range tables {
			registry.Add(t)
		}
		slog.Info("datasets loaded", "dir", cfg.Data.Dir, "count", registry.Len())

		if cfg.Data.Watch {
			watcher, err := watch.New(registry, store)
			if err != nil {
				log.Fatalf("failed to create dataset watcher: %v", err)
			}
			defer watcher.Stop()
			if err := watcher.Watch(context.Background(), cfg.Data.Dir); err != nil {
				log.Fatalf("failed to watch data directory: %v", err)
			}
		}
	}

	a := analyzer.New(llmProvider, store)

	srv := server.New(*cfg, a, store, registry)
	slog.Info("starting server", "host", cfg.Server.Host, "port", cfg.Server.Port)
	if err := srv.Run(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
