package enriching

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the enrichment feature.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	enrich := app.Group("/enrich")
	enrich.Post("/identify", handler.Identify)
	enrich.Post("/preview", handler.Preview)
	enrich.Post("/apply", handler.Apply)
}
