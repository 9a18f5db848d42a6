package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"masters-marketplace/config"
	deliveryHttp "masters-marketplace/internal/delivery/http"
	"masters-marketplace/internal/delivery/http/handler"
	"masters-marketplace/internal/delivery/http/middleware"
	"masters-marketplace/internal/infrastructure/cache"
	"masters-marketplace/internal/infrastructure/database"
	"masters-marketplace/internal/infrastructure/search"
	"masters-marketplace/internal/repository"
	"masters-marketplace/internal/service"
	"masters-marketplace/internal/usecase"
	"masters-marketplace/pkg/jwt"
	"masters-marketplace/pkg/validator"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	Search      *elasticsearch.Client
	Server      *http.Server

	indexer    *service.SearchIndexService
	dispatcher *service.ChangeDispatcher
	otp        *service.OTPService
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	// Setup logger
	app.Log = setupLogger(cfg.App)
	app.Log.Info("Configuration loaded successfully")

	// Apply schema migrations
	if cfg.DB.Migrate {
		if err := database.RunMigrations(cfg.DB); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		app.Log.Info("Database migrations applied")
	}

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	app.Log.Info("Database connected successfully")

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	app.Log.Info("Redis connected successfully")

	// Initialize Elasticsearch
	es, err := search.NewElasticsearchClient(cfg.Search)
	if err != nil {
		return nil, fmt.Errorf("failed to create search client: %w", err)
	}
	app.Search = es

	// Initialize all layers
	if err := app.initializeServer(); err != nil {
		return nil, err
	}

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(cfg config.AppConfig) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	return log
}

// initializeServer wires repositories, services, usecases and handlers
func (app *App) initializeServer() error {
	cfg := app.Config
	log := app.Log

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	masterRepo := repository.NewMasterRepository()
	reviewRepo := repository.NewReviewRepository()
	referenceRepo := repository.NewReferenceRepository()
	auditLogRepo := repository.NewAuditLogRepository()
	retryRepo := repository.NewIndexRetryRepository(app.RedisClient)
	searchRepo := repository.NewMasterSearchRepository(app.Search, cfg.Search.Index, cfg.Search.Timeout)

	// Initialize services
	auditService := service.NewAuditService(log, auditLogRepo)
	referenceCache := service.NewReferenceCache(app.RedisClient, log, cfg.Cache)
	app.indexer = service.NewSearchIndexService(app.DB, log, masterRepo, reviewRepo, searchRepo, retryRepo, cfg.Search)
	app.dispatcher = service.NewChangeDispatcher(app.indexer, referenceCache, retryRepo, log, cfg.Search)
	app.otp = service.NewOTPService(app.RedisClient, log, service.NewLogSMSSender(log), cfg.OTP)

	// Initialize usecases
	capital := cfg.Catalog.CapitalCity
	authUsecase := usecase.NewAuthUsecase(app.DB, log, masterRepo, referenceRepo, auditService, app.otp, app.dispatcher, jwtService, app.RedisClient, capital)
	masterUsecase := usecase.NewMasterUsecase(app.DB, log, masterRepo, reviewRepo, referenceRepo, auditService, app.dispatcher, capital)
	reviewUsecase := usecase.NewReviewUsecase(app.DB, log, masterRepo, reviewRepo, auditService, app.dispatcher)
	referenceUsecase := usecase.NewReferenceUsecase(app.DB, log, referenceRepo, masterRepo, referenceCache, auditService, app.dispatcher)
	searchUsecase := usecase.NewSearchUsecase(log, searchRepo)
	auditLogUsecase := usecase.NewAuditLogUsecase(app.DB, log, auditLogRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUsecase, customValidator)
	masterHandler := handler.NewMasterHandler(masterUsecase, customValidator)
	reviewHandler := handler.NewReviewHandler(reviewUsecase, customValidator)
	referenceHandler := handler.NewReferenceHandler(referenceUsecase, customValidator)
	searchHandler := handler.NewSearchHandler(searchUsecase)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, app.RedisClient)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.CORSOrigins...)

	// Initialize router
	router := deliveryHttp.NewRouter(log, authHandler, masterHandler, reviewHandler, referenceHandler, searchHandler, auditLogHandler, authMiddleware, corsMiddleware)
	httpRouter := router.Setup()

	// Start background indexing
	if err := app.indexer.Start(cfg.Search.ReconcileCron); err != nil {
		return fmt.Errorf("failed to start search indexer: %w", err)
	}

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	app.Server = &http.Server{
		Addr:              serverAddr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Build the index in the background; the API serves from the database meanwhile
	go app.bootstrapIndex()

	// Start server in goroutine
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

func (app *App) bootstrapIndex() {
	ctx := context.Background()

	if err := app.indexer.EnsureIndex(ctx); err != nil {
		app.Log.Warnf("Failed to ensure search index: %+v", err)
		return
	}
	if err := app.indexer.ReindexAll(ctx); err != nil {
		app.Log.Warnf("Failed to build search index: %+v", err)
		return
	}
	app.Log.Info("Search index is up to date")
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Log.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	app.Log.Info("Server shutdown complete")
}

// Close stops background workers, then closes database and redis connections
func (app *App) Close() {
	// Dispatcher first so queued events reach the indexer
	if app.dispatcher != nil {
		app.dispatcher.Stop()
	}
	if app.indexer != nil {
		app.indexer.Stop()
	}
	if app.otp != nil {
		app.otp.Stop()
	}

	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
