package hosting

import (
	"fmt"
	"log/slog"

	"github.com/contre95/tonegarden/src/features/config"
	"github.com/contre95/tonegarden/src/features/enriching"
	"github.com/contre95/tonegarden/src/features/gardening"
	"github.com/contre95/tonegarden/src/features/health"
	"github.com/contre95/tonegarden/src/features/library"
	"github.com/contre95/tonegarden/src/features/metrics"
	"github.com/contre95/tonegarden/src/features/organizing"
	"github.com/contre95/tonegarden/src/features/scanning"
	"github.com/gofiber/fiber/v2"
)

// Services bundles what the control API exposes.
type Services struct {
	Library    *library.Service
	Scanning   *scanning.Service
	Enriching  *enriching.Service
	Gardening  *gardening.Service
	Organizing *organizing.Service
	Health     *health.Service
}

// Server is the HTTP control surface of the application.
type Server struct {
	app  *fiber.App
	port int
}

// NewServer creates the fiber app and mounts every feature's routes.
func NewServer(cfg *config.Manager, services Services) *Server {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			slog.Error("Internal Server Error", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
		AppName:               "tonegarden",
		DisableStartupMessage: true,
		EnablePrintRoutes:     cfg.Get().Server.PrintRoutes,
	})

	app.Use(RequestLogMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	config.RegisterRoutes(app, cfg)
	library.RegisterRoutes(app, services.Library)
	scanning.RegisterRoutes(app, services.Scanning)
	enriching.RegisterRoutes(app, services.Enriching)
	gardening.RegisterRoutes(app, services.Gardening)
	organizing.RegisterRoutes(app, services.Organizing)
	health.RegisterRoutes(app, services.Health)
	metrics.RegisterRoutes(app)

	return &Server{app: app, port: cfg.Get().Server.Port}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.app.Listen(":" + fmt.Sprint(s.port))
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
