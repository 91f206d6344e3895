// Package bootstrap builds the pieces shared by the API server and the sync worker.
package bootstrap

import (
	"context"
	"time"

	"wallet-api/internal/repository"
	"wallet-api/internal/service"
	"wallet-api/pkg/config"
	"wallet-api/pkg/pluggy"
	"wallet-api/pkg/rabbitmq"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// BankClient builds the aggregator client. When Redis is reachable and a key
// TTL is configured, minted API keys are shared through Redis. The returned
// func releases the Redis client.
func BankClient(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*pluggy.Client, func()) {
	opts := pluggy.Options{
		BaseURL:  cfg.Pluggy.BaseURL,
		PageSize: cfg.Pluggy.PageSize,
		Timeout:  cfg.Pluggy.Timeout,
	}
	var credentials pluggy.CredentialProvider = pluggy.NewClientCredentials(opts, cfg.Pluggy.ClientID, cfg.Pluggy.ClientSecret, logger)

	cleanup := func() {}
	if cfg.Redis.Addr != "" && cfg.Pluggy.KeyCacheTTL > 0 {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Warn("Redis unavailable, pluggy key cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			_ = rdb.Close()
		} else {
			logger.Info("Pluggy key cache enabled", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.Pluggy.KeyCacheTTL))
			credentials = pluggy.NewRedisKeyCache(credentials, rdb, cfg.Pluggy.KeyCacheTTL, logger)
			cleanup = func() { _ = rdb.Close() }
		}
	}

	return pluggy.NewClient(opts, credentials, logger), cleanup
}

// SyncService wires transaction ingestion against the database.
func SyncService(cfg *config.Config, db *pgxpool.Pool, bank service.BankData, publisher rabbitmq.Publisher, logger *zap.Logger) *service.SyncService {
	accountRepo := repository.NewAccountRepository(db, logger)
	return service.NewSyncService(
		bank,
		repository.NewConnectionRepository(db, logger),
		service.NewAccountReconciler(accountRepo, cfg.Sync.RefreshBalances, logger),
		repository.NewTransactionRepository(db, logger),
		publisher,
		cfg.Sync.Timeout,
		logger,
	)
}
