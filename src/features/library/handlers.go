package library

import (
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Handler is the handler for the library feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new handler for the library feature.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetTracks is the handler for listing tracks. `?review=true` narrows
// the list to tracks flagged for review.
func (h *Handler) GetTracks(c *fiber.Ctx) error {
	slog.Debug("GetTracks handler called")

	var err error
	var tracks any
	if c.QueryBool("review") {
		tracks, err = h.service.GetTracksNeedingReview(c.Context())
	} else {
		tracks, err = h.service.GetTracks(c.Context())
	}
	if err != nil {
		slog.Error("Error loading tracks", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(tracks)
}

// GetTrack is the handler for getting a single track.
func (h *Handler) GetTrack(c *fiber.Ctx) error {
	slog.Debug("GetTrack handler called", "id", c.Params("id"))

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid track id"})
	}

	track, err := h.service.GetTrack(c.Context(), id)
	if err != nil {
		slog.Error("Error loading track", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if track == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "track not found"})
	}
	return c.JSON(track)
}
