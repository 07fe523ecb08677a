package health

import (
	"log/slog"

	"github.com/contre95/tonegarden/src/music"
	"github.com/gofiber/fiber/v2"
)

// Handler is the handler for the health feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new handler for the health feature.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ListFiles returns the per-file health records, optionally filtered
// by status.
func (h *Handler) ListFiles(c *fiber.Ctx) error {
	slog.Debug("ListFiles handler called", "status", c.Query("status"))

	records, err := h.service.List(c.Context(), music.HealthStatus(c.Query("status")))
	if err != nil {
		slog.Error("Error listing file health", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"files": records, "count": len(records)})
}
