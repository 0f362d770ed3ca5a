package main

import (
	"context"
	"log/slog"

	"github.com/SscSPs/shop_ledger/internal/core/services"
	"github.com/SscSPs/shop_ledger/internal/handlers"
	"github.com/SscSPs/shop_ledger/internal/middleware"
	"github.com/SscSPs/shop_ledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/shop_ledger/migrations"
	"github.com/SscSPs/shop_ledger/pkg/database"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long:  `Connects to PostgreSQL, applies pending migrations when RUN_MIGRATIONS is set and serves the API on PORT.`,
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	middleware.SetupValidator()

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return fail(logger, "Failed to initialize database pool", err)
	}
	defer database.ClosePgxPool(dbPool)
	logger.Info("Database connection pool established.")

	if cfg.RunMigrations {
		logger.Info("Running database migrations...")
		if err := database.RunMigrations(cfg.DatabaseURL, migrations.FS, logger); err != nil {
			return fail(logger, "Failed to apply migrations", err)
		}
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	if err := r.SetTrustedProxies(nil); err != nil {
		return fail(logger, "Failed to set trusted proxies", err)
	}

	container := services.NewServiceContainer(pgsql.NewRepositoryProvider(dbPool))
	if err := handlers.RegisterRoutes(r, cfg, container); err != nil {
		return fail(logger, "Failed to register routes", err)
	}

	logger.Info("Server starting", slog.String("port", cfg.Port), slog.Bool("auth_enabled", cfg.AuthEnabled))
	if err := r.Run(":" + cfg.Port); err != nil {
		return fail(logger, "Server failed to run", err)
	}
	return nil
}
