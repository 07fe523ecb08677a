package scanning

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// Handler is the handler for the scanning feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new handler for the scanning feature.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// StartScan kicks off a background library scan.
func (h *Handler) StartScan(c *fiber.Ctx) error {
	slog.Debug("StartScan handler called")

	var req struct {
		Root string `json:"root"`
	}
	if err := c.BodyParser(&req); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	id, err := h.service.StartScan(req.Root)
	if err != nil {
		if errors.Is(err, ErrScanRunning) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		slog.Error("Error starting scan", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"job_id": id})
}

// GetScanStatus returns the latest scan job's progress.
func (h *Handler) GetScanStatus(c *fiber.Ctx) error {
	slog.Debug("GetScanStatus handler called")

	job, err := h.service.ScanStatus()
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(job)
}
