package main

import (
	"database/sql"
	"flag"
	"log"
	"net/http"

	httpapi "atelier-backend/internal/api/http"
	"atelier-backend/internal/config"
	"atelier-backend/internal/logger"
	"atelier-backend/internal/repository/postgres"
	"atelier-backend/internal/security"
	"atelier-backend/internal/service"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load .env if present; real env vars still win inside config.Load
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Atelier Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.SessionExpiryMinutes, cfg.JWT.ImpersonationExpiryMins)

	// Initialize Services
	tenantSvc := service.NewTenantService(store, tokenManager)
	availabilitySvc := service.NewAvailabilityService(store)
	invoiceSvc := service.NewInvoiceService(store)
	paymentSvc := service.NewPaymentService(store)
	itemSvc := service.NewItemService(store)

	// Set up HTTP server
	router := httpapi.NewRouter(httpapi.Services{
		Tokens:       tokenManager,
		Tenants:      tenantSvc,
		Availability: availabilitySvc,
		Invoices:     invoiceSvc,
		Payments:     paymentSvc,
		Items:        itemSvc,
	})

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := http.ListenAndServe(cfg.GetServerAddress(), router); err != nil {
		logger.Error("HTTP server error", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
}
