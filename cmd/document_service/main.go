package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Athena_1.0/internal/config"
	"Athena_1.0/internal/database/milvus"
	"Athena_1.0/internal/database/mysql"
	"Athena_1.0/internal/database/redis"
	"Athena_1.0/internal/document_service/api"
	"Athena_1.0/internal/document_service/cache"
	"Athena_1.0/internal/document_service/service"
	"Athena_1.0/internal/document_service/store"
	"Athena_1.0/internal/embedding"
	"Athena_1.0/internal/models"
	pkghttp "Athena_1.0/pkg/http"
	"Athena_1.0/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const defaultConfigPath = "config/config.yaml"

func main() {
	// .env is optional; API keys can also come from the real environment.
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(logger.ParseLevel(cfg.Logger.Level))
	appLogger := logger.New("DocumentService")
	appLogger.Info("Starting Document Service...")

	// MySQL: document rows.
	db, err := mysql.GetDB(&cfg.Databases.MySQL)
	if err != nil {
		log.Fatalf("Failed to connect to MySQL: %v", err)
	}
	if err := db.AutoMigrate(&models.Document{}); err != nil {
		log.Fatalf("Failed to migrate documents table: %v", err)
	}
	docStore := store.NewDocumentStore(db)

	// Milvus: one vector entry per document.
	ctx := context.Background()
	milvusClient, err := milvus.GetClient(ctx, &cfg.Databases.Milvus)
	if err != nil {
		log.Fatalf("Failed to connect to Milvus: %v", err)
	}
	if err := milvusClient.EnsureCollection(ctx); err != nil {
		log.Fatalf("Failed to ensure Milvus collection: %v", err)
	}
	if cfg.Databases.Milvus.FlushInterval != "" {
		interval, err := time.ParseDuration(cfg.Databases.Milvus.FlushInterval)
		if err != nil {
			log.Fatalf("Invalid Milvus flush interval: %v", err)
		}
		milvusClient.StartAutoFlush(interval)
	}

	embedder, err := embedding.NewEmdModel(&cfg.Embedding)
	if err != nil {
		log.Fatalf("Failed to create embedding client: %v", err)
	}

	// Query-embedding cache: Redis when configured, in-process LRU otherwise.
	var embCache cache.EmbeddingCache
	if cfg.Databases.Redis.Address != "" {
		rdb, err := redis.GetClient(&cfg.Databases.Redis)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		embCache = cache.NewRedisCache(rdb)
	} else {
		embCache, err = cache.NewLocalCache()
		if err != nil {
			log.Fatalf("Failed to create local embedding cache: %v", err)
		}
	}

	svc := service.New(appLogger, embedder, milvusClient, docStore, embCache)

	gin.SetMode(gin.ReleaseMode)
	handler := api.NewHandler(svc, appLogger,
		api.HealthCheck{Name: "mysql", Check: mysql.HealthCheck},
		api.HealthCheck{Name: "milvus", Check: milvusClient.HealthCheck},
	)
	router := api.SetupRouter(handler)

	srv, err := pkghttp.NewServer(&cfg.Middleware, router, pkghttp.WithAddress(cfg.Server.Address))
	if err != nil {
		log.Fatalf("Failed to create HTTP server: %v", err)
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve HTTP: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	shutdownTimeout := 10 * time.Second
	if cfg.Server.ShutdownTimeout != "" {
		if parsed, err := time.ParseDuration(cfg.Server.ShutdownTimeout); err == nil {
			shutdownTimeout = parsed
		}
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Warn("HTTP server shutdown did not complete cleanly: " + err.Error())
	}

	milvusClient.Close()
	if err := mysql.Close(); err != nil {
		appLogger.Warn("MySQL close failed: " + err.Error())
	}
	if err := redis.Close(); err != nil {
		appLogger.Warn("Redis close failed: " + err.Error())
	}

	appLogger.Info("Server gracefully stopped")
}
