package http

import (
	"context"
	"time"

	"github.com/census-statistics-service/internal/config"
	"github.com/census-statistics-service/internal/delivery/http/handler"
	"github.com/census-statistics-service/internal/delivery/http/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"go.uber.org/zap"
)

// Server is the Fiber-based HTTP server.
type Server struct {
	app    *fiber.App
	config *config.Config
	logger *zap.Logger

	// Handlers
	ingestHandler    *handler.IngestHandler
	poiHandler       *handler.POIHandler
	statisticHandler *handler.StatisticHandler
}

// NewServer creates a new HTTP server.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	ingestHandler *handler.IngestHandler,
	poiHandler *handler.POIHandler,
	statisticHandler *handler.StatisticHandler,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "Census Statistics Service",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:              app,
		config:           cfg,
		logger:           logger,
		ingestHandler:    ingestHandler,
		poiHandler:       poiHandler,
		statisticHandler: statisticHandler,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery())
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS())
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

func (s *Server) setupRoutes() {
	api := s.app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// Ingestion
	api.Post("/ingest", s.ingestHandler.Ingest)

	// Statistics
	api.Get("/statistics", s.statisticHandler.List)
	api.Get("/statistics/:id", s.statisticHandler.Get)

	// Points of interest
	api.Get("/statistics/:id/pois", s.poiHandler.List)
	api.Post("/statistics/:id/recompute-pois", s.poiHandler.Recompute)
	api.Post("/statistics/:id/recompute-pois/enqueue", s.poiHandler.Enqueue)
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		logger.Error("HTTP Error",
			zap.String("path", c.Path()),
			zap.Int("status", code),
			zap.Error(err),
		)

		return c.Status(code).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "INTERNAL_SERVER_ERROR",
				"message": err.Error(),
			},
		})
	}
}
