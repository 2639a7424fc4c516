// Command ragpipe runs the document upload and question answering service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/RawatRahul14/ragpipe/config"
	"github.com/RawatRahul14/ragpipe/llm"
	"github.com/RawatRahul14/ragpipe/log"
	"github.com/RawatRahul14/ragpipe/metadata"
	"github.com/RawatRahul14/ragpipe/pipeline"
	"github.com/RawatRahul14/ragpipe/prompt"
	"github.com/RawatRahul14/ragpipe/rag"
	"github.com/RawatRahul14/ragpipe/server"
	"github.com/RawatRahul14/ragpipe/store"
	"github.com/RawatRahul14/ragpipe/store/memory"
	"github.com/RawatRahul14/ragpipe/store/postgres"
	"github.com/RawatRahul14/ragpipe/store/redis"
	"github.com/RawatRahul14/ragpipe/store/sqlite"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	if *debug {
		log.SetLevel(log.LevelDebug)
	}

	if err := run(*configPath); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.OpenAIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}

	prompts, err := loadPrompts(cfg)
	if err != nil {
		return err
	}
	models, err := loadModels(cfg)
	if err != nil {
		return err
	}

	embedder, err := rag.NewOpenAIEmbedder(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.EmbeddingModel)
	if err != nil {
		return fmt.Errorf("create embedder: %w", err)
	}
	client := llm.NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIBaseURL)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	checkpoints, err := newCheckpointStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("create checkpoint store: %w", err)
	}

	meta, err := newMetadataStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("create metadata store: %w", err)
	}
	defer meta.Close(context.Background())

	p := pipeline.New(client, prompts, models,
		pipeline.WithCheckpointStore(checkpoints),
		pipeline.WithGradeConcurrency(cfg.GradeConcurrency),
	)

	srv := server.NewServer(cfg, embedder, p, meta)
	return srv.Start()
}

func loadPrompts(cfg config.Config) (*prompt.Registry, error) {
	if cfg.PromptsPath != "" {
		return prompt.LoadRegistry(cfg.PromptsPath)
	}
	return prompt.DefaultRegistry()
}

func loadModels(cfg config.Config) (*config.ModelRegistry, error) {
	if cfg.ModelsPath != "" {
		return config.LoadModelRegistry(cfg.ModelsPath)
	}
	return config.DefaultModelRegistry()
}

func newCheckpointStore(ctx context.Context, cfg config.Config) (store.CheckpointStore, error) {
	switch cfg.CheckpointBackend {
	case "redis":
		return redis.NewRedisCheckpointStore(ctx, cfg.RedisAddr, cfg.RedisPassword, 0)
	case "sqlite":
		path := cfg.SqlitePath
		if path == "" {
			path = "checkpoints.db"
		}
		return sqlite.NewSqliteCheckpointStore(path)
	case "postgres":
		return postgres.NewPostgresCheckpointStore(ctx, cfg.PostgresDSN)
	default:
		return memory.NewMemoryCheckpointStore(), nil
	}
}

func newMetadataStore(ctx context.Context, cfg config.Config) (metadata.Store, error) {
	if cfg.MongoURI == "" {
		log.Info("no MongoDB URI configured, upload metadata will not be persisted")
		return metadata.NopStore{}, nil
	}
	return metadata.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
}
