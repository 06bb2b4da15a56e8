package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"waisdom/internal/api"
	"waisdom/internal/config"
	"waisdom/internal/embedding"
	"waisdom/internal/extract"
	"waisdom/internal/insight"
	"waisdom/internal/interests"
	"waisdom/internal/interfaces"
	"waisdom/internal/models"
	"waisdom/internal/pipeline"
	"waisdom/internal/scheduler"
	"waisdom/internal/store"
	"waisdom/internal/vectorindex"
	"waisdom/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// 1. Environment and configuration. A missing .env file is fine, the
	// config falls back to process environment variables for secrets.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Logger
	logger.Init(logger.ParseLevel(cfg.Logger.Level))
	appLogger := logger.New("Assistant")
	appLogger.Info("Starting research assistant...")

	ctx := context.Background()

	// 3. Embedding client and vector index
	embedder, err := embedding.NewEmbedder(cfg.Embedding)
	if err != nil {
		log.Fatalf("Failed to create embedding client: %v", err)
	}

	var index interfaces.VectorIndex
	switch cfg.Vector.Backend {
	case "milvus":
		milvusIndex, err := vectorindex.NewMilvusIndex(ctx, cfg.Vector.Milvus, embedder, logger.New("MilvusIndex"))
		if err != nil {
			log.Fatalf("Failed to connect to Milvus: %v", err)
		}
		defer milvusIndex.Close()
		index = milvusIndex
	default:
		index = vectorindex.NewMemory(embedder)
	}

	// 4. Record store
	var backend store.Backend
	switch cfg.Storage.Backend {
	case "mongo":
		mongoBackend, err := store.NewMongoBackend(ctx, cfg.Storage.Mongo)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer mongoBackend.Close(context.Background())
		backend = mongoBackend
	default:
		fileBackend, err := store.NewFileBackend(cfg.Storage.File.Dir, logger.New("FileStore"))
		if err != nil {
			log.Fatalf("Failed to open file store: %v", err)
		}
		backend = fileBackend
	}
	contentStore := store.New(backend, index, logger.New("ContentStore"))

	// 5. Insight gateway and extractor
	generator, err := insight.NewGenerator(cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to create LLM client: %v", err)
	}
	gateway := insight.NewGateway(generator, logger.New("InsightGateway"))
	extractor := extract.NewService(logger.New("Extractor"))

	processor := pipeline.New(contentStore, extractor, gateway, cfg.Assistant, logger.New("Pipeline"))

	// 6. Interests registry
	var registry interests.Registry
	if cfg.Redis.Enabled {
		redisRegistry, err := interests.NewRedis(ctx, cfg.Redis, cfg.Assistant.DefaultInterests)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisRegistry.Close()
		registry = redisRegistry
	} else {
		registry = interests.NewMemory(cfg.Assistant.DefaultInterests)
	}

	// 7. Reminder scheduler. The log observer is the default delivery
	// channel; chat frontends register their own observers here.
	sched := scheduler.New(contentStore, logger.New("Scheduler"))
	reminderLogger := logger.New("Reminders")
	sched.AddReminderObserver(func(ctx context.Context, reminders []models.ReminderNote) error {
		for _, note := range reminders {
			reminderLogger.Info(fmt.Sprintf("Reminder due: %s (%s, priority %.1f)", note.Title, note.ID, note.PriorityScore))
		}
		return nil
	})
	sched.SchedulePeriodicReminders(time.Duration(cfg.Assistant.ReminderCheckMinutes) * time.Minute)
	defer sched.Stop()

	// 8. HTTP server
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	handler := api.NewHandler(processor, registry, logger.New("HTTP"))
	handler.Register(router)

	server := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}
	go func() {
		appLogger.Info(fmt.Sprintf("HTTP server listening at %s", cfg.HTTP.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve HTTP: %v", err)
		}
	}()

	// 9. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(fmt.Sprintf("HTTP shutdown error: %v", err))
	}
	appLogger.Info("Server gracefully stopped")
}
