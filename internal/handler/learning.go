package handler

import (
	"ai-teacher/internal/domain"
	"ai-teacher/internal/dto"
	"ai-teacher/internal/middleware"
	"ai-teacher/internal/service"

	"github.com/gofiber/fiber/v2"
)

// LearningHandler serves topic explanations, tutor chat and progress stats.
type LearningHandler struct {
	service service.LearningService
}

func NewLearningHandler(service service.LearningService) *LearningHandler {
	return &LearningHandler{service: service}
}

// ExplainTopic godoc
// @Summary Explain a topic
// @Tags learning
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.ExplainTopicRequest true "Topic"
// @Success 200 {object} domain.TopicExplanation
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /topics/explain [post]
func (h *LearningHandler) ExplainTopic(c *fiber.Ctx) error {
	var req dto.ExplainTopicRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("Invalid request body")
	}
	exp, err := h.service.ExplainTopic(c.UserContext(), middleware.UserID(c), req.TopicName)
	if err != nil {
		return err
	}
	return c.JSON(exp)
}

// Chat godoc
// @Summary Send a chat message to the tutor
// @Tags learning
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.ChatMessageRequest true "Message"
// @Success 200 {object} domain.ChatReply
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /chat/message [post]
func (h *LearningHandler) Chat(c *fiber.Ctx) error {
	var req dto.ChatMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("Invalid request body")
	}
	reply, err := h.service.Chat(c.UserContext(), middleware.UserID(c), req.Message)
	if err != nil {
		return err
	}
	return c.JSON(reply)
}

// Stats godoc
// @Summary Signed-in student's progress report
// @Tags learning
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} domain.StudentStats
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /students/me/stats [get]
func (h *LearningHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(stats)
}
