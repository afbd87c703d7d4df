package api

import (
	"net/http"

	"github.com/bilgisen/newsdigest/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
)

// RouteConfig carries the settings the routes need beyond the handlers.
type RouteConfig struct {
	Session  middleware.SessionConfig
	AdminKey string          // admin routes are not mounted when empty
	Static   http.FileSystem // UI assets; nil skips the page
}

// SetupRoutes configures all the routes for the application
func SetupRoutes(app *fiber.App, handlers *Handlers, cfg RouteConfig) {
	// API group with versioning
	api := app.Group("/api/v1")

	api.Get("/health", handlers.HealthCheck)

	sess := middleware.Session(cfg.Session)
	api.Get("/session", sess, handlers.GetSession)

	feeds := api.Group("/feeds")
	{
		feeds.Post("", sess, middleware.ValidateBody[AddFeedRequest](), handlers.AddFeed)
		feeds.Delete("", sess, handlers.RemoveFeed)
	}

	api.Post("/cycles", sess, handlers.StartCycle)

	if cfg.AdminKey != "" {
		admin := api.Group("/admin", middleware.AdminOnly(cfg.AdminKey))
		{
			admin.Delete("/sessions", handlers.ClearSessions)
			admin.Get("/cycles", handlers.ListCycles)
		}
	}

	if cfg.Static != nil {
		app.Use("/", filesystem.New(filesystem.Config{
			Root:   cfg.Static,
			Index:  "index.html",
			MaxAge: 300,
		}))
	}

	// 404 Handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Endpoint not found",
		})
	})
}
