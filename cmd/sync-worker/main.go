package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"wallet-api/internal/bootstrap"
	"wallet-api/pkg/config"
	"wallet-api/pkg/logger"
	"wallet-api/pkg/postgres"
	"wallet-api/pkg/rabbitmq"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// cronLogger adapts zap to the cron.Logger interface.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Infow(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Named("sync-worker")
	appLogger.Info("Starting sync worker", zap.String("schedule", cfg.Sync.Schedule))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	bank, closeBank := bootstrap.BankClient(ctx, cfg, appLogger)
	defer closeBank()

	publisher := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, appLogger)
	defer publisher.Close()

	syncService := bootstrap.SyncService(cfg, db, bank, publisher, appLogger)

	clog := cronLogger{s: appLogger.Sugar()}
	c := cron.New(cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog)))

	if _, err := c.AddFunc(cfg.Sync.Schedule, func() {
		if _, err := syncService.SyncAll(ctx); err != nil {
			appLogger.Error("Scheduled sync aborted", zap.Error(err))
		}
	}); err != nil {
		appLogger.Fatal("Invalid sync schedule", zap.String("schedule", cfg.Sync.Schedule), zap.Error(err))
	}

	c.Start()
	<-ctx.Done()

	appLogger.Info("Shutting down sync worker")
	// waits for a running sync to return
	<-c.Stop().Done()
}
