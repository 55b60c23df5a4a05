package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jakdoczlapie/transit-admin-backend/internal/config"
	"github.com/jakdoczlapie/transit-admin-backend/internal/database"
	"github.com/jakdoczlapie/transit-admin-backend/internal/handlers"
	"github.com/jakdoczlapie/transit-admin-backend/internal/middleware"
	"github.com/jakdoczlapie/transit-admin-backend/internal/selection"
	"github.com/jakdoczlapie/transit-admin-backend/internal/services"
	"github.com/jakdoczlapie/transit-admin-backend/internal/upstream"
	"github.com/jakdoczlapie/transit-admin-backend/pkg/extract"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

const viewCacheTTL = time.Minute

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting Transit Admin Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Operator selection persistence: Postgres when configured, process
	// memory otherwise.
	var persistence selection.Persistence
	if cfg.Database.URL != "" {
		logger.Info("Connecting to database...")
		db, err := database.NewConnection(cfg.Database)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		repo := database.NewPreferenceRepository(db)
		if err := repo.Init(); err != nil {
			logger.Fatalf("Failed to initialize preferences table: %v", err)
		}
		persistence = repo
		logger.Info("Database connection established")
	} else {
		logger.Warn("DATABASE_URL not set, operator selection will not survive restarts")
		persistence = selection.NewMemoryPersistence()
	}

	store, err := selection.NewStore(persistence)
	if err != nil {
		logger.Fatalf("Failed to load operator selection: %v", err)
	}

	// Initialize services
	logger.Info("Initializing services...")
	client := upstream.New(cfg.Upstream.BaseURL, cfg.Upstream.Timeout)
	cache := services.NewViewCache(viewCacheTTL)
	extractor := extract.NewHTTPExtractor(extract.Config{
		BaseURL: cfg.Extract.BaseURL,
		APIKey:  cfg.Extract.APIKey,
		Timeout: cfg.Extract.Timeout,
	})

	tracker := services.NewLiveTracker(client, store, logger, cfg.Live.TrackInterval, cfg.Live.ReportInterval)
	tracker.Start()
	defer tracker.Stop()

	logger.Info("Services initialized")

	// Initialize handlers
	proxyHandler := handlers.NewProxyHandler(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, logger)
	healthHandler := handlers.NewHealthHandler(client)
	timetableHandler := handlers.NewTimetableHandler(client, cache, logger)
	journeyHandler := handlers.NewJourneyHandler(client, logger)
	statsHandler := handlers.NewStatsHandler(client, store, logger)
	reportHandler := handlers.NewReportHandler(client, cache, logger)
	liveHandler := handlers.NewLiveHandler(tracker)
	preferencesHandler := handlers.NewPreferencesHandler(store, logger)
	importHandler := handlers.NewImportHandler(extractor, cfg.Import.MaxFileSize, logger)

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthHandler.Health)

	// Raw pass-through to the external transit API
	router.Any("/api/v1/*path", proxyHandler.Proxy)

	// Aggregation and preference endpoints
	api := router.Group("/api")
	{
		routes := api.Group("/routes")
		{
			routes.GET("/:id/timetable", timetableHandler.GetTimetable)
			routes.GET("/:id/runs", timetableHandler.GetRuns)
			routes.POST("/:id/reports", reportHandler.CreateReport)
		}

		api.GET("/journeys", journeyHandler.Search)
		api.GET("/dashboard/stats", statsHandler.GetStats)
		api.GET("/operators/:name/reports/feed", reportHandler.GetFeed)

		live := api.Group("/live")
		{
			live.GET("/tracks", liveHandler.GetTracks)
			live.GET("/reports", liveHandler.GetReports)
		}

		preferences := api.Group("/preferences/operators")
		{
			preferences.GET("", preferencesHandler.GetOperators)
			preferences.PUT("/active", preferencesHandler.SetActive)
			preferences.POST("/comparison/toggle", preferencesHandler.ToggleComparison)
		}

		// Destructive admin operations sit behind the optional bearer check.
		admin := api.Group("", middleware.AdminAuth(cfg.Auth.JWTSecret))
		{
			admin.DELETE("/reports/:id", reportHandler.DeleteReport)
			admin.POST("/schedules/import", importHandler.ImportSchedules)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}
