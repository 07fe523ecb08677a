package organizing

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the organize feature.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	organize := app.Group("/organize")
	organize.Post("/preview", handler.PreviewOrganize)
	organize.Post("/execute", handler.ExecuteOrganize)
	organize.Post("/undo", handler.UndoOrganize)
}
