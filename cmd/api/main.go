package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/joho/godotenv"

	"github.com/hyunsoolee/jangbu-api/internal/config"
	"github.com/hyunsoolee/jangbu-api/internal/database"
	"github.com/hyunsoolee/jangbu-api/internal/handlers"
	"github.com/hyunsoolee/jangbu-api/internal/middleware"
	"github.com/hyunsoolee/jangbu-api/internal/services"
	"github.com/hyunsoolee/jangbu-api/internal/store"
	"github.com/hyunsoolee/jangbu-api/internal/utils"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Apply schema migrations before taking traffic
	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	// Connect to database
	pool, err := database.Connect(context.Background(), cfg.DatabaseURL, int32(cfg.DBMaxConnections), cfg.DBConnectionTimeout)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()
	log.Println("✓ Connected to database successfully")

	st := store.New(pool)

	// Workbook archive is optional; without a bucket uploads are not kept
	var archiver *services.ArchiveService
	if cfg.S3Bucket != "" {
		archiver, err = services.NewArchiveService(cfg.S3Bucket, cfg.S3Region, cfg.AWSEndpoint)
		if err != nil {
			log.Fatalf("Failed to initialize archive service: %v", err)
		}
		log.Println("✓ Archive service initialized successfully")
	}

	// Initialize services
	ingestor := services.NewIngestor(st, logger)
	reconciler := services.NewReconciler(st, logger)
	settlement := services.NewSettlementCalculator(st, logger)

	// Initialize handlers
	uploadHandler := handlers.NewUploadHandler(ingestor, st, archiver, logger)
	ledgerHandler := handlers.NewLedgerHandler(st, reconciler, logger)
	rulesHandler := handlers.NewRulesHandler(st, logger)
	filtersHandler := handlers.NewFiltersHandler(st, logger)
	mappingsHandler := handlers.NewMappingsHandler(st, logger)
	settlementHandler := handlers.NewSettlementHandler(settlement, logger)
	profitHandler := handlers.NewProfitHandler(st, logger)

	app := fiber.New(fiber.Config{
		AppName:      "jangbu API v1.0",
		ErrorHandler: utils.ErrorHandler,
	})

	// Apply global middleware
	app.Use(middleware.CORS(cfg.CORSOrigins))
	app.Use(middleware.TrustedIdentity())

	// Health check endpoint (public)
	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "jangbu-api",
		})
	})

	// API v1 routes
	v1 := app.Group("/v1")

	// Ledger routes
	v1.Post("/ledger/:type/upload", uploadHandler.UploadLedger)
	v1.Post("/ledger/:type/confirm", ledgerHandler.ConfirmRows)
	v1.Delete("/ledger/:type/range", ledgerHandler.DeleteRange)
	v1.Get("/ledger/:type/analysis", profitHandler.AnalyzeItems)
	v1.Get("/ledger/:type", ledgerHandler.ListRows)
	v1.Post("/ledger/:type", ledgerHandler.CreateRow)
	v1.Put("/ledger/:type/:id", ledgerHandler.UpdateRow)
	v1.Delete("/ledger/:type", ledgerHandler.DeleteRows)

	// Classification rule and category routes
	v1.Get("/rules/:type", rulesHandler.ListRules)
	v1.Post("/rules/:type", rulesHandler.CreateRules)
	v1.Delete("/rules/:type/:id", rulesHandler.DeleteRule)
	v1.Get("/categories/:type", rulesHandler.ListCategories)
	v1.Post("/categories/:type", rulesHandler.CreateCategory)
	v1.Delete("/categories/:type/:id", rulesHandler.DeleteCategory)

	// Filter routes
	v1.Get("/filters/:type", filtersHandler.ListFilters)
	v1.Post("/filters/:type", filtersHandler.CreateFilter)
	v1.Delete("/filters/:type/:id", filtersHandler.DeleteFilter)

	// Column-mapping profile routes
	v1.Get("/mappings", mappingsHandler.ListMappings)
	v1.Post("/mappings", mappingsHandler.CreateMapping)
	v1.Delete("/mappings/:id", mappingsHandler.DeleteMapping)

	// Settlement routes
	v1.Get("/settlement", settlementHandler.GetSettlement)
	v1.Post("/settlement", settlementHandler.SaveSettlement)

	// Profit report routes
	v1.Get("/profit/period", profitHandler.ProfitPeriod)
	v1.Get("/profit/calendar", profitHandler.ProfitCalendar)
	v1.Get("/profit/detail", profitHandler.ProfitDetail)

	addr := fmt.Sprintf(":%d", cfg.Port)
	go func() {
		log.Printf("🚀 jangbu API is running on %s", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("Server stopped: %v", err)
		}
	}()

	// Drain in-flight requests on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		log.Fatalf("Forced shutdown: %v", err)
	}
	log.Println("Server stopped cleanly")
}
