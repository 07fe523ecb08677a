package gardening

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the gardener feature.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	gardener := app.Group("/gardener")
	gardener.Get("/stats", handler.GetStats)
	gardener.Post("/pause", handler.Pause)
	gardener.Post("/resume", handler.Resume)
	gardener.Post("/process", handler.ProcessTracks)
}
