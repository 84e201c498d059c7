package main

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"crm-service/internal/crm"
	"crm-service/internal/handler"
	"crm-service/internal/middleware"
	"crm-service/pkg/config"
	"crm-service/pkg/logger"
	"crm-service/pkg/store"
	"crm-service/pkg/store/gridstore"
	"crm-service/pkg/store/sheetstore"
	"crm-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting CRM service...", zap.String("environment", cfg.Server.Env))

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized")

	// Open the backing store session once; it is injected into the service
	// and held for the life of the process.
	st, err := openStore(cfg, log)
	if err != nil {
		log.Fatal("Failed to connect to backing store",
			zap.String("backend", cfg.Store.Backend),
			zap.Error(err))
	}
	defer st.Close()

	// Fail fast if the configured tables are missing rather than on the
	// first request.
	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, name := range []string{cfg.Store.CompaniesTable, cfg.Store.CallsTable} {
		if _, err := st.Table(startupCtx, name); err != nil {
			log.Fatal("Required table is not available",
				zap.String("table", name),
				zap.Error(err))
		}
	}
	log.Info("Backing store connected",
		zap.String("backend", cfg.Store.Backend),
		zap.String("companies_table", cfg.Store.CompaniesTable),
		zap.String("calls_table", cfg.Store.CallsTable))

	// Wire the CRM service into the handlers
	handler.Init(crm.New(st, cfg, log))

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = errorHandler(cfg, log)

	// Middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware())

	// Request logging and metrics middleware
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start).Seconds()
			status := c.Response().Status
			method := c.Request().Method
			path := c.Request().URL.Path

			log := logger.FromEcho(c)
			log.Info("HTTP Request",
				zap.String("method", method),
				zap.String("path", path),
				zap.Int("status", status),
				zap.Float64("duration_s", duration),
				zap.String("ip", c.RealIP()),
			)

			prometheus.HttpRequestsTotal.WithLabelValues(
				method, path, strconv.Itoa(status)).Inc()
			prometheus.HttpRequestDuration.WithLabelValues(
				method, path, strconv.Itoa(status)).Observe(duration)

			return err
		}
	})

	// Public routes that don't require authentication
	e.GET("/", handler.Health)
	e.GET("/health", handler.Health)

	// Prometheus metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Protected routes behind the shared-secret header check
	protected := e.Group("", middleware.APIKeyMiddleware(&cfg.Auth))
	protected.POST("/log-call", handler.LogCall)
	protected.GET("/get-company-history", handler.GetCompanyHistory)
	protected.GET("/search-calls", handler.SearchCalls)
	protected.GET("/get-follow-ups", handler.GetFollowUps)
	protected.POST("/complete-follow-up/:id", handler.CompleteFollowUp)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}

// openStore selects the store driver from configuration. Domain layers never
// branch on the active backend; this is the only place that knows which
// driver is live.
func openStore(cfg *config.Config, log *zap.Logger) (store.Store, error) {
	switch cfg.Store.Backend {
	case "grid":
		st, err := gridstore.New(cfg)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := st.Provision(ctx, cfg.Store.CompaniesTable, cfg.Store.CallsTable); err != nil {
			return nil, err
		}
		return st, nil
	default:
		log.Info("Using Google Sheets backend", zap.String("spreadsheet_id", cfg.Store.SpreadsheetID))
		return sheetstore.New(context.Background(), cfg)
	}
}

// errorHandler converts any error that escapes a handler into the legacy
// {success:false, message} payload. Error detail is included outside
// production for operator debugging, never in production responses.
func errorHandler(cfg *config.Config, log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "An unexpected error occurred"

		if he, ok := err.(*echo.HTTPError); ok {
			status = he.Code
			if msg, ok := he.Message.(string); ok {
				message = msg
			}
		} else if cfg.Server.Env != "production" {
			message = "An unexpected error occurred: " + err.Error()
		}

		log.Error("Unhandled error",
			zap.String("path", c.Request().URL.Path),
			zap.Int("status", status),
			zap.Error(err))

		_ = c.JSON(status, echo.Map{
			"success": false,
			"message": message,
		})
	}
}
