package handler

import (
	"context"
	"time"

	"ai-teacher/internal/domain"
	"ai-teacher/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type HealthHandler struct {
	cache domain.Cache
}

func NewHealthHandler(cache domain.Cache) *HealthHandler {
	return &HealthHandler{cache: cache}
}

// Health godoc
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()
	if err := h.cache.Ping(ctx); err != nil {
		logger.Get().Warn("Health check: cache unreachable", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "cache": "unreachable"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
