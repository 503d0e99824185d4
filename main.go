package main

import (
	"context"
	"log"
	"time"

	"feynman_tutor/internal/api"
	"feynman_tutor/internal/config"
	"feynman_tutor/internal/reminder"
	"feynman_tutor/internal/services"
	"feynman_tutor/src"
	"feynman_tutor/src/graph"
	"feynman_tutor/src/llm"
	"feynman_tutor/src/logger"
	"feynman_tutor/src/memory"
	"feynman_tutor/src/storage"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg, err := src.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := logger.InitLogger(cfg.LogConfig); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	ctx := context.Background()

	yamlConfig, err := config.LoadConfig(cfg.PromptsFile)
	if err != nil {
		logger.Fatal().Err(err).Str("file", cfg.PromptsFile).Msg("Failed to load prompts")
	}

	health := map[string]api.Pinger{}
	var closers []func(context.Context)

	// Redis backs the record store (when selected) and the LLM response cache
	var redisClient *redis.Client
	if cfg.StoreConfig.Backend == "redis" || cfg.RedisConfig.URL != "" {
		redisClient, err = storage.NewRedisClient(ctx, cfg.RedisConfig.URL)
		if err != nil {
			if cfg.StoreConfig.Backend == "redis" {
				logger.Fatal().Err(err).Msg("Failed to connect to Redis")
			}
			logger.Warn().Err(err).Msg("Redis unavailable, LLM cache disabled")
			redisClient = nil
		} else {
			closers = append(closers, func(context.Context) { redisClient.Close() })
		}
	}

	var store interface {
		memory.RecordStore
		api.Pinger
	}
	switch cfg.StoreConfig.Backend {
	case "redis":
		store = storage.NewRedisRecordStore(redisClient, cfg.StoreConfig.MaxRetries)
	case "sql":
		sqlStore, err := storage.OpenSQLRecordStore(ctx, cfg.StoreConfig.SQLDriver, cfg.StoreConfig.SQLDSN, cfg.StoreConfig.MaxRetries)
		if err != nil {
			logger.Fatal().Err(err).Str("driver", cfg.StoreConfig.SQLDriver).Msg("Failed to open record database")
		}
		closers = append(closers, func(context.Context) { sqlStore.Close() })
		store = sqlStore
	default:
		logger.Warn().Msg("Using in-memory record store, records are lost on restart")
		store = storage.NewMemoryRecordStore()
	}
	health["store"] = store

	var cache services.Cache
	if redisClient != nil {
		cache = storage.NewRedisCache(redisClient, cfg.RedisConfig.CacheTTL)
	}

	var gen services.Generator
	chatModel, err := llm.NewChatModel(ctx, cfg.LLMConfig)
	if err != nil {
		logger.Warn().Err(err).Str("provider", cfg.LLMConfig.Provider).Msg("Chat model unavailable, serving fallback content")
	} else {
		client, err := llm.NewClient(ctx, chatModel, yamlConfig.Prompts, cfg.LLMConfig.Timeout)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to build LLM chains")
		}
		gen = client
	}

	var catalog graph.Catalog
	if cfg.GraphConfig.Enabled {
		repo, err := graph.NewRepository(ctx, cfg.GraphConfig)
		if err != nil {
			logger.Fatal().Err(err).Str("uri", cfg.GraphConfig.URI).Msg("Failed to connect to Neo4j")
		}
		if err := repo.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("Failed to create graph schema")
		}
		if err := graph.Seed(ctx, repo, yamlConfig.Concepts); err != nil {
			logger.Fatal().Err(err).Msg("Failed to seed knowledge graph")
		}
		closers = append(closers, func(ctx context.Context) { repo.Close(ctx) })
		health["graph"] = repo
		catalog = repo
	} else {
		catalog = graph.NewStaticCatalog(yamlConfig.Concepts, cfg.GraphConfig.MaxRelated, cfg.GraphConfig.Depth)
	}

	memoryService := memory.NewService(store, memory.NewScheduler(cfg.MemoryConfig))

	handler := api.NewHandler(api.Deps{
		Concepts:       services.NewConceptService(catalog, gen, cache),
		Learning:       services.NewLearningService(gen, cache),
		Importer:       services.NewImporter(catalog),
		Memory:         memoryService,
		Health:         health,
		MaxUploadBytes: int64(cfg.ServerConfig.MaxUploadBytes),
	})
	h := api.NewServer(cfg.ServerConfig, handler)

	if cfg.ReminderConfig.Enabled {
		reminders := reminder.New(memoryService, reminder.LogNotifier{}, cfg.ReminderConfig.Interval)
		if err := reminders.Start(); err != nil {
			logger.Fatal().Err(err).Msg("Failed to start review reminders")
		}
		closers = append(closers, func(context.Context) { reminders.Stop() })
	}

	h.OnShutdown = append(h.OnShutdown, func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i](ctx)
		}
		logger.Info().Msg("Shutdown complete")
	})

	logger.Info().
		Str("addr", cfg.ServerConfig.Addr).
		Str("store", cfg.StoreConfig.Backend).
		Str("llm", cfg.LLMConfig.Provider).
		Bool("neo4j", cfg.GraphConfig.Enabled).
		Msg("Feynman tutor starting")
	h.Spin()
}
