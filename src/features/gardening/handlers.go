package gardening

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// Handler is the handler for the gardener feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new handler for the gardener feature.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetStats returns the gardener's accumulated counters.
func (h *Handler) GetStats(c *fiber.Ctx) error {
	slog.Debug("GetStats handler called")
	return c.JSON(h.service.Stats())
}

// Pause suspends the periodic sweep.
func (h *Handler) Pause(c *fiber.Ctx) error {
	slog.Debug("Pause handler called")
	h.service.Pause()
	return c.JSON(fiber.Map{"status": "paused"})
}

// Resume restarts the periodic sweep.
func (h *Handler) Resume(c *fiber.Ctx) error {
	slog.Debug("Resume handler called")
	h.service.Resume()
	return c.JSON(fiber.Map{"status": "running"})
}

// ProcessTracks queues specific tracks for immediate assessment.
func (h *Handler) ProcessTracks(c *fiber.Ctx) error {
	slog.Debug("ProcessTracks handler called")

	var req struct {
		TrackIDs []int64 `json:"track_ids"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if len(req.TrackIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "track_ids is required"})
	}

	h.service.ProcessTracks(req.TrackIDs)
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"queued": len(req.TrackIDs)})
}
