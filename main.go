package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/staffhive/staffing-engine/pkg/config"
	"github.com/staffhive/staffing-engine/pkg/database"
	"github.com/staffhive/staffing-engine/pkg/handlers"
	"github.com/staffhive/staffing-engine/pkg/logging"
	"github.com/staffhive/staffing-engine/pkg/repositories"
	"github.com/staffhive/staffing-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// Load .env when present; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("database", cfg.Database.Database),
		zap.String("database_host", cfg.Database.Host),
		zap.Bool("sweeper_enabled", cfg.Sweeper.Enabled))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Migrations run over database/sql; the serving path uses the pgx pool.
	migrationDB, err := sql.Open("pgx", cfg.Database.URL())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(migrationDB, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	if err := migrationDB.Close(); err != nil {
		logger.Warn("Failed to close migration connection", zap.Error(err))
	}

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.URL(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	employeeRepo := repositories.NewEmployeeRepository(db)
	pmRepo := repositories.NewPMRepository(db)
	developerRepo := repositories.NewDeveloperRepository(db)
	underSelectionRepo := repositories.NewUnderSelectionRepository(db)
	clientRepo := repositories.NewClientRepository(db)
	projectRepo := repositories.NewProjectRepository(db)

	clock := services.SystemClock()

	costService := services.NewCostService(projectRepo, pmRepo, developerRepo, underSelectionRepo)
	lifecycleService := services.NewLifecycleService(
		projectRepo, clientRepo, employeeRepo,
		pmRepo, developerRepo, underSelectionRepo,
		costService, clock, logger)
	staffingService := services.NewStaffingService(
		projectRepo, pmRepo, developerRepo, underSelectionRepo, clock, logger)
	directoryService := services.NewDirectoryService(
		employeeRepo, pmRepo, developerRepo, underSelectionRepo, clientRepo, logger)
	indicatorService := services.NewIndicatorService(
		projectRepo, pmRepo, underSelectionRepo, clock, logger)

	if cfg.Sweeper.Enabled {
		sweeper := services.NewReleaseSweeper(projectRepo, lifecycleService, clock, logger)
		sweeper.RunScheduler(ctx, time.Duration(cfg.Sweeper.IntervalHours)*time.Hour)
	}

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewProjectsHandler(lifecycleService, costService, logger).RegisterRoutes(mux)
	handlers.NewStaffingHandler(staffingService, logger).RegisterRoutes(mux)
	handlers.NewDirectoryHandler(directoryService, logger).RegisterRoutes(mux)
	handlers.NewIndicatorsHandler(indicatorService, logger).RegisterRoutes(mux)

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.BindAddr, cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting staffing-engine",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}
