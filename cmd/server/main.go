package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/viktorvidual/invoices/internal/cache"
	"github.com/viktorvidual/invoices/internal/config"
	"github.com/viktorvidual/invoices/internal/db"
	"github.com/viktorvidual/invoices/internal/handlers"
	"github.com/viktorvidual/invoices/internal/logger"
	"github.com/viktorvidual/invoices/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		// logger config is not available yet, fall back to defaults
		logger.New(logger.Config{}).Fatal("invalid configuration", zap.Error(err))
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	defer func() { _ = log.Sync() }()

	dbConn, err := db.Open(cfg.Database, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Handle migrate-only flag
	if *migrateOnlyFlag {
		if err := migrate(cfg, dbConn); err != nil {
			log.Fatal("migration failed", zap.Error(err))
		}
		log.Info("migrations completed successfully")
		return
	}

	// Handle seed-only flag
	if *seedOnlyFlag {
		if err := db.Seed(dbConn); err != nil {
			log.Fatal("seeding failed", zap.Error(err))
		}
		log.Info("seeding completed successfully")
		return
	}

	// Run migrations on startup if enabled
	if cfg.App.Migrations || cfg.App.SQLMigrations {
		if err := migrate(cfg, dbConn); err != nil {
			log.Fatal("migration failed", zap.Error(err))
		}
		log.Info("migrations completed")
	}

	if cfg.App.Seed {
		if err := db.Seed(dbConn); err != nil {
			log.Fatal("seeding failed", zap.Error(err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	views := cache.NewViewCache(cfg.Cache.TTL)
	invalidator := cache.Invalidator(views)

	// Broadcast invalidations to the other instances when Redis is configured
	if addr := cfg.Redis.Addr(); addr != "" {
		remote, err := cache.NewRedisInvalidator(ctx, addr, cfg.Redis.Password, cfg.Redis.DB,
			cache.WithChannel(cfg.Redis.Channel),
			cache.WithRedisLogger(log.Named("cache")),
		)
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer remote.Close()

		go func() {
			if err := remote.Subscribe(ctx, views); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("view invalidation subscription ended", zap.Error(err))
			}
		}()
		invalidator = cache.Fanout(views, remote)
	}

	store := db.NewInvoiceStore(dbConn)
	svc := services.NewInvoiceService(store, invalidator, services.WithLogger(log.Named("invoices")))
	app := NewApp(log, handlers.NewInvoiceHandler(svc, store), views, cfg.Server.AllowedOrigins)

	// Create server with config timeouts
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("port", cfg.Server.Port), zap.Bool("dev", cfg.App.Dev))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("error during shutdown", zap.Error(err))
	}
	log.Info("server stopped gracefully")
}

// migrate runs the versioned SQL migrations on postgres when enabled and
// GORM AutoMigrate otherwise.
func migrate(cfg *config.Config, conn *gorm.DB) error {
	if cfg.App.SQLMigrations {
		return db.MigrateSQL(cfg.Database.URL())
	}
	return db.Migrate(conn)
}
