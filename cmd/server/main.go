package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"github.com/NusretOzates/simple-model-registry/internal/adapters/primary/http/handlers"
	"github.com/NusretOzates/simple-model-registry/internal/adapters/primary/http/middleware"
	"github.com/NusretOzates/simple-model-registry/internal/adapters/secondary/localfs"
	"github.com/NusretOzates/simple-model-registry/internal/adapters/secondary/postgres"
	"github.com/NusretOzates/simple-model-registry/internal/adapters/secondary/s3"
	"github.com/NusretOzates/simple-model-registry/internal/config"
	ports "github.com/NusretOzates/simple-model-registry/internal/core/ports/output"
	"github.com/NusretOzates/simple-model-registry/internal/core/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	initLogger(cfg)

	// Database pool
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		log.Fatalf("parse db config: %v", err)
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxConns)
	poolCfg.MinConns = int32(cfg.Database.MinConns)
	poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		log.Fatalf("create db pool: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		log.Fatalf("ping db: %v", err)
	}
	if err := postgres.Bootstrap(context.Background(), pool); err != nil {
		log.Fatalf("bootstrap schema: %v", err)
	}
	log.Info("database connection established")

	// Artifact store
	var store ports.ArtifactStore
	switch cfg.Storage.Method {
	case config.StorageMethodLocal:
		store, err = localfs.New(cfg.Storage.Path)
		if err != nil {
			log.Fatalf("init local artifact store: %v", err)
		}
		log.Infof("local artifact store at %s", cfg.Storage.Path)
	case config.StorageMethodS3:
		store, err = s3.New(context.Background(), cfg.Storage.S3)
		if err != nil {
			log.Fatalf("init s3 artifact store: %v", err)
		}
		log.Infof("s3 artifact store at %s bucket %s", cfg.Storage.S3.Endpoint, cfg.Storage.S3.Bucket)
	}

	// Repositories and core service
	modelRepo := postgres.NewModelRepository(pool)
	versionRepo := postgres.NewVersionRepository(pool)
	aliasRepo := postgres.NewAliasRepository(pool)
	registry := services.NewRegistryService(modelRepo, versionRepo, aliasRepo, store)

	// HTTP layer
	h := handlers.New(registry, pool)

	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging(), gin.Recovery())

	api := router.Group("/api/v1")
	h.RegisterRoutes(api)
	router.GET("/healthz", h.Health)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced shutdown: %v", err)
	}

	log.Info("server stopped")
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
