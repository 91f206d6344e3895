package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"wallet-api/internal/api"
	"wallet-api/internal/api/handlers"
	"wallet-api/internal/bootstrap"
	"wallet-api/internal/repository"
	"wallet-api/internal/service"
	"wallet-api/pkg/auth"
	"wallet-api/pkg/config"
	"wallet-api/pkg/logger"
	"wallet-api/pkg/postgres"
	"wallet-api/pkg/rabbitmq"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// @title Wallet API
// @version 1.0
// @description Personal finance API: manual incomes and expenses, bank data ingested through Pluggy, summaries and XLSX reports
// @termsOfService http://swagger.io/terms/

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting wallet API")

	// money goes out as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db, appLogger)
	connRepo := repository.NewConnectionRepository(db, appLogger)
	txRepo := repository.NewTransactionRepository(db, appLogger)
	incomeRepo := repository.NewIncomeRepository(db, appLogger)
	expenseRepo := repository.NewExpenseRepository(db, appLogger)
	investmentRepo := repository.NewInvestmentRepository(db, appLogger)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)

	// Aggregator and events
	bank, closeBank := bootstrap.BankClient(ctx, cfg, appLogger)
	defer closeBank()

	publisher := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, appLogger)
	defer publisher.Close()

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager, appLogger)
	connService := service.NewConnectionService(connRepo, bank, appLogger)
	syncService := bootstrap.SyncService(cfg, db, bank, publisher, appLogger)
	txService := service.NewTransactionService(txRepo, connRepo, appLogger)
	incomeService := service.NewIncomeService(incomeRepo, appLogger)
	expenseService := service.NewExpenseService(expenseRepo, appLogger)
	investmentService := service.NewInvestmentService(investmentRepo, connRepo, bank, appLogger)
	summaryService := service.NewSummaryService(incomeRepo, expenseRepo, txRepo, appLogger)

	// Initialize handlers
	h := api.Handlers{
		Auth:        handlers.NewAuthHandler(authService, appLogger),
		Connection:  handlers.NewConnectionHandler(connService, syncService, txService, appLogger),
		Transaction: handlers.NewTransactionHandler(txService, appLogger),
		Income:      handlers.NewIncomeHandler(incomeService, appLogger),
		Expense:     handlers.NewExpenseHandler(expenseService, appLogger),
		Investment:  handlers.NewInvestmentHandler(investmentService, appLogger),
		Summary:     handlers.NewSummaryHandler(summaryService, appLogger),
	}

	// Setup router
	app := api.SetupRouter(h, jwtManager, &cfg.Server, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
