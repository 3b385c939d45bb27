package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/seuros/posturai/internal/logging"
)

const upTimeout = 2 * time.Second

// HandleHealth reports that the process is serving requests.
func (h *Handlers) HandleHealth(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"service": "posturai",
		"version": h.version,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	})
}

// HandleUp is the container health check. It fails when the monitoring
// backend does not answer.
func (h *Handlers) HandleUp(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), upTimeout)
	defer cancel()

	if err := h.backend.Ping(ctx); err != nil {
		logging.L().Warn("backend ping failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).SendString("backend unavailable")
	}
	return c.SendStatus(fiber.StatusOK)
}

func (h *Handlers) HandleVersion(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"version": h.version,
	})
}
