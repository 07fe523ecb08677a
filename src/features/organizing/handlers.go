package organizing

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// Handler is the handler for the organize feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new handler for the organize feature.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type organizeRequest struct {
	Pattern string `json:"pattern"`
	Root    string `json:"root"`
}

// PreviewOrganize returns the planned moves without applying them.
func (h *Handler) PreviewOrganize(c *fiber.Ctx) error {
	slog.Debug("PreviewOrganize handler called")

	var req organizeRequest
	if err := c.BodyParser(&req); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	previews, err := h.service.PreviewAll(c.Context(), req.Pattern, req.Root)
	if err != nil {
		slog.Error("Error building organize preview", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"previews": previews, "count": len(previews)})
}

// ExecuteOrganize plans and applies a batch.
func (h *Handler) ExecuteOrganize(c *fiber.Ctx) error {
	slog.Debug("ExecuteOrganize handler called")

	var req organizeRequest
	if err := c.BodyParser(&req); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	previews, err := h.service.PreviewAll(c.Context(), req.Pattern, req.Root)
	if err != nil {
		slog.Error("Error building organize plan", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	result, err := h.service.Execute(c.Context(), previews)
	if err != nil {
		slog.Error("Error executing organize batch", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(result)
}

// UndoOrganize rolls the last batch back.
func (h *Handler) UndoOrganize(c *fiber.Ctx) error {
	slog.Debug("UndoOrganize handler called")

	result, err := h.service.Undo(c.Context())
	if err != nil {
		if errors.Is(err, ErrNoUndo) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		slog.Error("Error undoing organize batch", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(result)
}
