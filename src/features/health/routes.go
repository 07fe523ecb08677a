package health

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the health feature.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	app.Get("/health/files", handler.ListFiles)
}
