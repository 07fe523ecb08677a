package scanning

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the scanning feature.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	app.Post("/library/scan", handler.StartScan)
	app.Get("/library/scan/status", handler.GetScanStatus)
}
