package config

import (
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Handler is the handler for the config feature.
type Handler struct {
	configManager *Manager
}

// NewHandler creates a new handler for the config feature.
func NewHandler(configManager *Manager) *Handler {
	return &Handler{configManager: configManager}
}

// GetConfig returns the current configuration in the requested format.
func (h *Handler) GetConfig(c *fiber.Ctx) error {
	format := c.Query("fmt", "json")
	switch format {
	case "toml":
		c.Set("Content-Type", "application/toml")
		return c.SendString(h.configManager.GetTOML())
	case "json":
		c.Set("Content-Type", "application/json")
		return c.SendString(h.configManager.GetJSON())
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid format, use 'json' or 'toml'",
		})
	}
}

// UpdateConfig replaces the runtime configuration from a JSON body and
// persists it. Unknown keys already in the file are preserved by Save.
func (h *Handler) UpdateConfig(c *fiber.Ctx) error {
	updated := *h.configManager.Get()
	if err := c.BodyParser(&updated); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := validator.New().Struct(updated); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	h.configManager.Update(&updated)
	slog.Info("configuration updated")

	if err := h.configManager.Save(); err != nil {
		slog.Warn("failed to save config to file", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "saved"})
}
