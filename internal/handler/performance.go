package handler

import (
	"ai-teacher/internal/middleware"
	"ai-teacher/internal/service"

	"github.com/gofiber/fiber/v2"
)

// PerformanceHandler serves the signed-in user's quiz history.
type PerformanceHandler struct {
	service service.PerformanceService
}

func NewPerformanceHandler(service service.PerformanceService) *PerformanceHandler {
	return &PerformanceHandler{service: service}
}

// GetPerformance godoc
// @Summary Performance summary and history
// @Tags performance
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} domain.Performance
// @Router /performance [get]
func (h *PerformanceHandler) GetPerformance(c *fiber.Ctx) error {
	perf, err := h.service.Get(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(perf)
}

// GetChart godoc
// @Summary Score chart drawing instructions
// @Tags performance
// @Produce json
// @Security ApiKeyAuth
// @Param width query number false "Canvas width (default 800)"
// @Param height query number false "Canvas height (default 300)"
// @Success 200 {object} chart.Chart
// @Failure 400 {object} middleware.ErrorResponse
// @Router /performance/chart [get]
func (h *PerformanceHandler) GetChart(c *fiber.Ctx) error {
	width, _ := c.Locals(middleware.ValidatedWidthKey).(float64)
	height, _ := c.Locals(middleware.ValidatedHeightKey).(float64)
	ch, err := h.service.Chart(c.UserContext(), middleware.UserID(c), width, height)
	if err != nil {
		return err
	}
	return c.JSON(ch)
}

// GetDistribution godoc
// @Summary Difficulty distribution
// @Tags performance
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} chart.Bucket
// @Router /performance/difficulty [get]
func (h *PerformanceHandler) GetDistribution(c *fiber.Ctx) error {
	buckets, err := h.service.Distribution(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(buckets)
}
