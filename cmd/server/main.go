package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/crestline-ir/internal/api"
	"github.com/crestline-ir/internal/blob"
	"github.com/crestline-ir/internal/config"
	"github.com/crestline-ir/internal/db"
	"github.com/crestline-ir/internal/db/models"
	"github.com/crestline-ir/internal/notify"
	"github.com/crestline-ir/internal/services"
	"github.com/crestline-ir/internal/store"
	"github.com/crestline-ir/pkg/logger"
	"github.com/crestline-ir/pkg/metrics"
	"go.uber.org/zap"
)

func main() {
	var cfg *config.Configuration
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	} else {
		cfg = config.InitializeDefault()
	}

	zapLogger, err := logger.NewLogger(cfg.Logging.Environment, cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()
	zap.ReplaceGlobals(zapLogger)

	config.LogConfig(zapLogger)

	database, err := db.Initialize(cfg)
	if err != nil {
		zapLogger.Fatal("Failed to initialize database", zap.Error(err))
	}

	metricsCollector := metrics.NewMetricsCollector()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	blobs, err := blob.NewS3Store(ctx, cfg.Storage)
	if err != nil {
		zapLogger.Fatal("Failed to initialize blob storage", zap.Error(err))
	}

	stores := store.NewStores(database)
	notifier := notify.NewLogNotifier(zapLogger)

	auditService := services.NewAuditService(stores.Activity, zapLogger)
	userService := services.NewUserService(stores, auditService, zapLogger, metricsCollector)
	accessService := services.NewAccessService(stores, zapLogger, metricsCollector)
	versionService := services.NewVersionService(stores, blobs, auditService, zapLogger, metricsCollector)
	grantService := services.NewGrantService(stores, auditService, zapLogger, metricsCollector)
	adminService := services.NewAdminService(userService, grantService, notifier, auditService, zapLogger, metricsCollector)
	sessionService := services.NewSessionService(cfg.Security.SessionTimeout, zapLogger, metricsCollector)
	defer sessionService.Stop()

	if err := seedAdmin(ctx, userService, stores.Users, zapLogger); err != nil {
		zapLogger.Fatal("Failed to seed database", zap.Error(err))
	}

	router := api.NewRouter(cfg, api.Services{
		Users:    userService,
		Access:   accessService,
		Versions: versionService,
		Grants:   grantService,
		Admin:    adminService,
		Audit:    auditService,
		Sessions: sessionService,
	}, stores, blobs, zapLogger, metricsCollector)
	router.SetupRoutes()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Server.Port
	}
	go func() {
		if err := router.Run(":" + port); err != nil {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()
	zapLogger.Info("Server started", zap.String("port", port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	sqlDB, err := database.DB()
	if err == nil {
		sqlDB.Close()
	}
	zapLogger.Info("Server gracefully stopped")
}

// seedAdmin creates the initial administrator account on an empty database.
// Credentials come from the environment so no default password ships.
func seedAdmin(ctx context.Context, users *services.UserService, userStore store.UserStore, logger *zap.Logger) error {
	existing, err := userStore.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.Info("Database already seeded, skipping")
		return nil
	}

	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		logger.Warn("ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	admin, err := users.CreateUser(ctx, email, "Administrator", password, models.RoleAdmin)
	if err != nil {
		return err
	}
	logger.Info("Created initial administrator", zap.Uint("user_id", admin.ID))
	return nil
}
