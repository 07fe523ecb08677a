package enriching

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// Handler is the handler for the enrichment feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new handler for the enrichment feature.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type enrichRequest struct {
	Path          string `json:"path"`
	OnlyFillEmpty bool   `json:"only_fill_empty"`
	WriteIDs      bool   `json:"write_ids"`
	EmbedCover    bool   `json:"embed_cover"`
}

func (r enrichRequest) options() ApplyOptions {
	return ApplyOptions{
		OnlyFillEmpty: r.OnlyFillEmpty,
		WriteIDs:      r.WriteIDs,
		EmbedCover:    r.EmbedCover,
	}
}

func parseEnrichRequest(c *fiber.Ctx) (*enrichRequest, error) {
	var req enrichRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Path == "" {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "path is required"})
	}
	return &req, nil
}

// Identify fingerprints a file and returns the best candidate.
func (h *Handler) Identify(c *fiber.Ctx) error {
	slog.Debug("Identify handler called")

	req, err := parseEnrichRequest(c)
	if req == nil {
		return err
	}

	id, err := h.service.Identify(c.Context(), req.Path)
	if err != nil {
		if IsNoMatch(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no matches found"})
		}
		return err
	}
	return c.JSON(id)
}

// Preview lists the tag changes an apply would make.
func (h *Handler) Preview(c *fiber.Ctx) error {
	slog.Debug("Preview handler called")

	req, err := parseEnrichRequest(c)
	if req == nil {
		return err
	}

	preview, err := h.service.PreviewApply(c.Context(), req.Path, req.options())
	if err != nil {
		if IsNoMatch(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no matches found"})
		}
		return err
	}
	return c.JSON(preview)
}

// Apply identifies a file and writes the result into its tags.
func (h *Handler) Apply(c *fiber.Ctx) error {
	slog.Debug("Apply handler called")

	req, err := parseEnrichRequest(c)
	if req == nil {
		return err
	}

	result, err := h.service.Apply(c.Context(), req.Path, req.options())
	if err != nil {
		if IsNoMatch(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no matches found"})
		}
		return err
	}
	return c.JSON(result)
}
