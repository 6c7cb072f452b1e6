package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/nodewatch-systems/nodewatch/internal/config"
	"github.com/nodewatch-systems/nodewatch/internal/controlstate"
	"github.com/nodewatch-systems/nodewatch/internal/handlers"
	"github.com/nodewatch-systems/nodewatch/internal/logging"
	"github.com/nodewatch-systems/nodewatch/internal/messaging"
	"github.com/nodewatch-systems/nodewatch/internal/middleware"
	"github.com/nodewatch-systems/nodewatch/internal/repository"
	"github.com/nodewatch-systems/nodewatch/internal/server"
	"github.com/nodewatch-systems/nodewatch/internal/service"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)
	slog.SetDefault(logger.Logger)

	ctx := context.Background()

	// Telemetry ledger
	var repo repository.ReadingRepository
	var pool *pgxpool.Pool
	switch cfg.Database.Type {
	case "memory":
		logger.Warn("Using in-memory ledger; readings are lost on restart")
		repo = repository.NewMemoryRepository()
	default:
		connString := cfg.Database.Postgres.DSN()

		logger.Info("Running database migrations")
		m, err := migrate.New("file://migrations", connString)
		if err != nil {
			log.Fatalf("Failed to initialize migrations: %v", err)
		}
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			log.Fatalf("Failed to run migrations: %v", err)
		}

		pgRepo, err := repository.NewPostgresRepository(ctx, connString)
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		defer pgRepo.Close()
		repo = pgRepo
		pool = pgRepo.Pool()
	}

	// Control-state store
	var store controlstate.Store
	switch cfg.ControlStore.Type {
	case "memory":
		store = controlstate.NewMemoryStore()
	case "postgres":
		if pool == nil {
			log.Fatalf("control_store.type=postgres requires database.type=postgres")
		}
		store = controlstate.NewPostgresStore(pool)
	default:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.ControlStore.Redis.Addr,
			Password: cfg.ControlStore.Redis.Password,
			DB:       cfg.ControlStore.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		store = controlstate.NewRedisStore(client, cfg.ControlStore.Redis.KeyPrefix)
	}
	defer store.Close()

	// Live tap (optional)
	var readingPub service.ReadingPublisher
	var flagPub service.FlagPublisher
	if cfg.NATS.Enabled {
		natsCfg := messaging.DefaultConfig()
		natsCfg.URL = cfg.NATS.URL
		natsCfg.Name = cfg.NATS.Name
		pub, err := messaging.Connect(natsCfg)
		if err != nil {
			log.Fatalf("Failed to connect to NATS: %v", err)
		}
		defer pub.Close()
		readingPub = pub
		flagPub = pub
		logger.Info("NATS live tap enabled", "url", cfg.NATS.URL)
	}

	ingestSvc := service.NewIngestService(repo, readingPub, logger)
	readingsSvc := service.NewReadingsService(repo, cfg.Liveness.StalenessThreshold)
	controlSvc := service.NewControlService(store, flagPub, logger)

	handler := handlers.NewHandler(ingestSvc, readingsSvc, controlSvc, logger)
	router := server.NewRouter(handler, middleware.DefaultCORSConfig())

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("NodeWatch server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server stopped")
}
