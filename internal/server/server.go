// Package server exposes extraction and prompt composition over HTTP.
package server

import (
	"context"
	"log/slog"

	"github.com/abdulachik/panelforge/internal/db"
	"github.com/abdulachik/panelforge/internal/prompt"
	"github.com/abdulachik/panelforge/internal/refine"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Config holds server dependencies. Store and Refiner are optional.
type Config struct {
	Store          *db.Store
	Refiner        refine.Refiner
	DefaultGrammar string
	HistoryBudget  int
}

// Server is the HTTP API.
type Server struct {
	Echo   *echo.Echo
	Health *Health

	store          *db.Store
	refiner        refine.Refiner
	defaultGrammar string
	historyBudget  int
}

// New creates a server with its routes registered.
func New(cfg Config) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency}
			if v.Error != nil {
				slog.Warn("request failed", append(attrs, "error", v.Error)...)
				return nil
			}
			slog.Debug("request", attrs...)
			return nil
		},
	}))
	e.Use(middleware.BodyLimit("1M"))

	if cfg.DefaultGrammar == "" {
		cfg.DefaultGrammar = prompt.BriefSketchName
	}

	s := &Server{
		Echo:           e,
		Health:         NewHealth(),
		store:          cfg.Store,
		refiner:        cfg.Refiner,
		defaultGrammar: cfg.DefaultGrammar,
		historyBudget:  cfg.HistoryBudget,
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.Echo.GET("/health", s.handleGetHealth)

	v1 := s.Echo.Group("/v1")
	v1.POST("/extract/character", s.handlePostExtractCharacter)
	v1.POST("/extract/location", s.handlePostExtractLocation)
	v1.POST("/compose", s.handlePostCompose)
	v1.POST("/compose/fallback", s.handlePostComposeFallback)
	v1.GET("/grammars", s.handleGetGrammars)
	v1.GET("/schema/:kind", s.handleGetSchema)
}

// CheckStore pings the database and records the result.
func (s *Server) CheckStore(ctx context.Context) {
	if s.store == nil {
		return
	}
	if err := s.store.PingContext(ctx); err != nil {
		s.Health.SetUnhealthy("database", err)
		return
	}
	s.Health.SetHealthy("database", "ok")
}

// Start listens on addr until Shutdown.
func (s *Server) Start(addr string) error {
	slog.Info("server listening", "addr", addr)
	return s.Echo.Start(addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down server")
	return s.Echo.Shutdown(ctx)
}
