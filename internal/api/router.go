package api

import (
	"wallet-api/docs"
	"wallet-api/internal/api/handlers"
	"wallet-api/pkg/config"
	"wallet-api/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

type Handlers struct {
	Auth        *handlers.AuthHandler
	Connection  *handlers.ConnectionHandler
	Transaction *handlers.TransactionHandler
	Income      *handlers.IncomeHandler
	Expense     *handlers.ExpenseHandler
	Investment  *handlers.InvestmentHandler
	Summary     *handlers.SummaryHandler
}

func SetupRouter(h Handlers, tokens middleware.TokenValidator, cfg *config.ServerConfig, appLogger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept,Authorization",
		ExposeHeaders: "Content-Disposition",
	}))
	app.Use(logger.New())

	_ = docs.SwaggerInfo
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Auth routes (public)
	auth := app.Group("/user/auth")
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.RefreshToken)

	// Protected routes
	protected := app.Group("/api/v1", middleware.AuthMiddleware(tokens, appLogger))

	protected.Post("/pluggy/connect-token", h.Connection.ConnectToken)

	connections := protected.Group("/connections")
	connections.Post("", h.Connection.Create)
	connections.Get("", h.Connection.List)
	connections.Get("/:itemId", h.Connection.Get)
	connections.Delete("/:itemId", h.Connection.Delete)
	connections.Get("/:itemId/accounts", h.Connection.Accounts)
	connections.Get("/:itemId/status", h.Connection.Status)
	connections.Post("/:itemId/sync", h.Connection.Sync)
	connections.Get("/:itemId/transactions", h.Connection.Transactions)

	protected.Get("/transactions", h.Transaction.List)

	incomes := protected.Group("/incomes")
	incomes.Get("", h.Income.List)
	incomes.Post("", h.Income.Create)
	incomes.Put("/:id", h.Income.Update)
	incomes.Delete("/:id", h.Income.Delete)

	expenses := protected.Group("/expenses")
	expenses.Get("", h.Expense.List)
	expenses.Post("", h.Expense.Create)
	expenses.Get("/by-category", h.Expense.ByCategory)
	expenses.Put("/:id", h.Expense.Update)
	expenses.Delete("/:id", h.Expense.Delete)

	investments := protected.Group("/investments")
	investments.Post("/sync", h.Investment.Sync)
	investments.Get("", h.Investment.List)

	summary := protected.Group("/summary")
	summary.Get("/monthly", h.Summary.Monthly)
	summary.Get("/yearly", h.Summary.Yearly)
	summary.Get("/categories", h.Summary.Categories)
	summary.Get("/evolution", h.Summary.Evolution)
	summary.Get("/export-monthly", h.Summary.ExportMonthly)
	summary.Get("/export-monthly-by-category", h.Summary.ExportMonthlyByCategory)

	return app
}
