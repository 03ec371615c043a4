package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mohammad-safakhou/scout/config"
	"github.com/mohammad-safakhou/scout/internal/mcptool"
	"github.com/mohammad-safakhou/scout/internal/provider"
	"github.com/mohammad-safakhou/scout/internal/telemetry"
	"github.com/mohammad-safakhou/scout/internal/timeline"
)

// Run starts the HTTP API server and blocks.
func Run(cfg *config.Config) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	// Unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(200, "ok") })

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector())
	var metrics *telemetry.Metrics
	if cfg.Telemetry.MetricsEnabled {
		metrics = telemetry.New(promRegistry)
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{})))

	// Shared dependencies (top-level DI)
	registry := provider.NewRegistry(cfg.LLM, log.New(log.Writer(), "[LLM] ", log.LstdFlags))
	tools := mcptool.NewClient(cfg.Tools.RegistryURL, cfg.Tools.ProxyURL, cfg.Tools.APIKey, cfg.Tools.Timeout,
		log.New(log.Writer(), "[MCP] ", log.LstdFlags))

	archive, err := newArchiveStore(cfg.Storage)
	if err != nil {
		return err
	}

	api := e.Group("/api")

	th := &TurnsHandler{
		cfg:      cfg,
		registry: registry,
		tools:    tools,
		archive:  archive,
		metrics:  metrics,
		logger:   log.New(log.Writer(), "[TURN] ", log.LstdFlags),
	}
	th.Register(api)

	ph := &ProvidersHandler{registry: registry}
	ph.Register(api)

	toolsHandler := &ToolsHandler{client: tools}
	toolsHandler.Register(api)

	return e.Start(cfg.Server.Address)
}

// newArchiveStore selects the timeline archive backend.
func newArchiveStore(cfg config.StorageConfig) (timeline.ArchiveStore, error) {
	switch cfg.Backend {
	case "", "inmemory":
		return timeline.NewMemoryArchive(), nil
	case "redis":
		addr := fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port)
		store, err := timeline.NewRedisArchive(context.Background(), addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, fmt.Errorf("redis archive: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}
