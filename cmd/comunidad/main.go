package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/bitcoinperu/comunidad/api"
	"github.com/bitcoinperu/comunidad/internal/community"
	"github.com/bitcoinperu/comunidad/internal/config"
	"github.com/bitcoinperu/comunidad/internal/database"
	"github.com/bitcoinperu/comunidad/internal/directory"
	"github.com/bitcoinperu/comunidad/internal/identities"
	"github.com/bitcoinperu/comunidad/internal/price"
	"github.com/bitcoinperu/comunidad/pkg/logger"
	"github.com/bitcoinperu/comunidad/pkg/metrics"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	cfg := config.LoadConfig()

	zapLogger, err := logger.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := database.NewPostgresDB(cfg.DatabaseDSN, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLife)
	if err != nil {
		zapLogger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		zapLogger.Fatal("Failed to migrate schema", zap.Error(err))
	}

	identitiesSvc := identities.NewService(zapLogger, db, cfg.SessionTTL)
	communitySvc := community.NewService(zapLogger, db)
	directorySvc := directory.NewService(zapLogger, db)

	priceCache := price.NewCache(cfg.PriceFreshTTL, cfg.PriceStaleTTL)
	aggregator := price.NewAggregator(zapLogger, price.DefaultProviders(cfg.ProviderTimeout)...)
	priceSvc := price.NewService(zapLogger, priceCache, aggregator)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Hourly cleanup of expired sessions
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := identitiesSvc.PurgeExpiredSessions(ctx)
				if err != nil {
					zapLogger.Error("Session purge failed", zap.Error(err))
				} else if n > 0 {
					zapLogger.Info("Purged expired sessions", zap.Int64("count", n))
				}
			}
		}
	}()

	// DB pool metrics every 30s
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if sqlDB, err := db.DB(); err == nil {
					stats := sqlDB.Stats()
					metrics.DBOpenConns.Set(float64(stats.OpenConnections))
					metrics.DBIdleConns.Set(float64(stats.Idle))
				}
			}
		}
	}()

	server := api.NewServer(zapLogger, api.Config{
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimit:      cfg.RateLimit,
		RedisAddr:      cfg.RedisAddr,
		SessionTTL:     cfg.SessionTTL,
	}, priceSvc, identitiesSvc, communitySvc, directorySvc)

	if err := server.Start(ctx, cfg.ListenAddr); err != nil {
		zapLogger.Fatal("Server error", zap.Error(err))
	}
	zapLogger.Info("Server stopped")
}
