// Package httpserver provides HTTP server and routing.
package httpserver

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"feed-ranking-service/internal/app/service"
	"feed-ranking-service/internal/domain"
	"feed-ranking-service/internal/transport/httpserver/handler"
	"feed-ranking-service/internal/transport/httpserver/middleware"
	"feed-ranking-service/internal/validator"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port      int
	BodyLimit int
	Debug     bool
}

// Server wraps Fiber app with handlers.
type Server struct {
	App    *fiber.App
	Logger *zap.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	cfg ServerConfig,
	feedSvc *service.FeedService,
	scoringSvc *service.ScoringService,
	rescoreSvc *service.RescoreService,
	repo domain.PostRepository,
	sessions handler.SessionStore,
	db *gorm.DB,
	v *validator.Validator,
	logger *zap.Logger,
) *Server {
	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "feed-ranking-service",
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: errorHandler(logger),
	})

	// Health check middleware MUST be registered BEFORE other middleware
	// for Kubernetes probes to work even during high load
	app.Use(middleware.NewHealthCheck(db))

	// Global middleware
	app.Use(requestid.New())
	app.Use(middleware.Recover(logger))
	app.Use(middleware.Logger(logger))
	app.Use(middleware.CORS())
	app.Use(compress.New())

	// Create handlers
	feedHandler := handler.NewFeedHandler(feedSvc, v, logger)
	adminHandler := handler.NewAdminHandler(scoringSvc, rescoreSvc, repo, sessions, logger)

	// Register routes
	registerRoutes(app, feedHandler, adminHandler)

	return &Server{
		App:    app,
		Logger: logger,
	}
}

// registerRoutes sets up all API routes.
func registerRoutes(
	app *fiber.App,
	feedHandler *handler.FeedHandler,
	adminHandler *handler.AdminHandler,
) {
	// Health checks are handled by middleware (/livez, /readyz)

	// API v1 routes
	v1 := app.Group("/api/v1")

	// Feeds
	feed := v1.Group("/feed")
	feed.Get("/trending", feedHandler.Trending)

	users := v1.Group("/users")
	users.Get("/:user_id/feed", feedHandler.Personalized)
	users.Post("/:user_id/feed", feedHandler.PersonalizedWithWeights)

	// Admin routes
	admin := v1.Group("/admin")
	admin.Post("/scoring/presets/:name", adminHandler.ApplyPreset)
	admin.Get("/scoring/config", adminHandler.GetConfig)
	admin.Patch("/scoring/config", adminHandler.UpdateConfig)
	admin.Get("/scoring/metrics", adminHandler.Metrics)
	admin.Post("/rescore", adminHandler.Rescore)
}

// errorHandler returns a custom error handler that logs based on HTTP status code.
// 404s are logged at DEBUG level (expected client behavior), 4xx at WARN, 5xx at ERROR.
func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		// Log based on status code - 404s are common and not server errors
		switch {
		case code == fiber.StatusNotFound:
			logger.Debug("resource not found",
				zap.String("path", c.Path()),
				zap.String("method", c.Method()),
			)
		case code >= 500:
			logger.Error("server error",
				zap.Error(err),
				zap.Int("status", code),
				zap.String("path", c.Path()),
			)
		case code >= 400:
			logger.Warn("client error",
				zap.Error(err),
				zap.Int("status", code),
				zap.String("path", c.Path()),
			)
		default:
			logger.Error("unhandled error",
				zap.Error(err),
				zap.Int("status", code),
				zap.String("path", c.Path()),
			)
		}

		return c.Status(code).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "UNHANDLED_ERROR",
		})
	}
}

// Start starts the HTTP server.
func (s *Server) Start(port int) error {
	s.Logger.Info("starting HTTP server", zap.Int("port", port))

	return s.App.Listen(fmt.Sprintf(":%d", port))
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	s.Logger.Info("shutting down HTTP server")

	return s.App.Shutdown()
}
