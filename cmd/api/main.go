package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/caotrungduc03/banking-app/internal/adapter/handler"
	"github.com/caotrungduc03/banking-app/internal/adapter/middleware"
	"github.com/caotrungduc03/banking-app/internal/adapter/storage"
	"github.com/caotrungduc03/banking-app/internal/core/auth"
	"github.com/caotrungduc03/banking-app/internal/core/config"
	"github.com/caotrungduc03/banking-app/internal/core/engine"
	"github.com/caotrungduc03/banking-app/internal/core/stats"
	"github.com/caotrungduc03/banking-app/internal/core/worker"
)

func main() {
	// 1. Load Config
	cfg := config.LoadConfig()

	// 2. Setup Logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 3. Pick the store backend
	var store storage.Store
	var closeStore func()
	if cfg.DatabaseURL == "" {
		slog.Warn("DATABASE_URL not set, using in-memory store")
		store = storage.NewMemoryStore()
		closeStore = func() {}
	} else {
		dbPool, err := storage.ConnectDB(cfg.DatabaseURL)
		if err != nil {
			slog.Error("Database connection failed", "error", err)
			os.Exit(1)
		}
		if err := storage.Migrate(cfg.DatabaseURL); err != nil {
			slog.Error("Database migration failed", "error", err)
			os.Exit(1)
		}
		store = storage.NewPostgresStore(dbPool)
		closeStore = dbPool.Close
	}

	// 4. Setup core services & handlers
	eng := engine.New(store, cfg.WebhookURL)
	verifier := auth.NewStatic(cfg.Env == "development")

	accountHandler := &handler.AccountHandler{Store: store}
	transferHandler := &handler.TransferHandler{Engine: eng, Auth: verifier}
	historyHandler := &handler.HistoryHandler{Store: store, Aggregator: stats.NewAggregator(store)}

	// 5. Setup Fiber
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	// 6. Routes
	api := app.Group("/v1")

	// Public
	api.Post("/accounts", accountHandler.CreateAccount)
	api.Post("/accounts/:id/keys", accountHandler.GenerateKey)

	// Protected
	private := api.Use(middleware.Protected(store))
	private.Post("/transfers", middleware.Idempotency(store), transferHandler.Transfer)
	private.Post("/transfers/qr", middleware.Idempotency(store), transferHandler.TransferQR)
	private.Post("/transfers/nfc", middleware.Idempotency(store), transferHandler.TransferNFC)
	private.Post("/deposits", transferHandler.Deposit)
	private.Post("/withdrawals", transferHandler.Withdraw)
	private.Get("/accounts/:id", accountHandler.GetAccount)
	private.Get("/accounts/:id/transactions", historyHandler.GetHistory)
	private.Get("/accounts/:id/statistics", historyHandler.GetStatistics)

	// 7. Start workers
	worker.StartSettlementSweep(store)
	worker.StartWebhookWorker(store, cfg.WebhookSecret)

	// 8. Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("Server starting", "env", cfg.Env, "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("Server forced to shutdown", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}

	closeStore()
	slog.Info("Server exited")
}
