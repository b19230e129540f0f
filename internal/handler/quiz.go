package handler

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"ai-teacher/internal/domain"
	"ai-teacher/internal/dto"
	"ai-teacher/internal/export"
	"ai-teacher/internal/logger"
	"ai-teacher/internal/middleware"
	"ai-teacher/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const pdfFormField = "pdf_file"

// QuizHandler handles quiz workflow HTTP requests
type QuizHandler struct {
	service service.QuizService
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(service service.QuizService) *QuizHandler {
	return &QuizHandler{service: service}
}

// GeneratePool godoc
// @Summary Generate a question pool
// @Description Requests twice the configured number of questions from a topic (JSON) or an uploaded PDF (multipart with pdf_file).
// @Tags quiz
// @Accept json,mpfd
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.GeneratePoolRequest true "Quiz configuration"
// @Success 200 {object} domain.SessionSnapshot
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 429 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /quiz/pool [post]
func (h *QuizHandler) GeneratePool(c *fiber.Ctx) error {
	cfg, err := parseQuizConfig(c)
	if err != nil {
		return err
	}
	snap, err := h.service.GeneratePool(c.UserContext(), middleware.UserID(c), *cfg)
	if err != nil {
		return err
	}
	return c.JSON(snap)
}

func parseQuizConfig(c *fiber.Ctx) (*domain.QuizConfig, error) {
	var req dto.GeneratePoolRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, domain.NewValidationError("Invalid request body")
	}
	difficulty, err := domain.ParseDifficulty(req.Difficulty)
	if err != nil {
		return nil, err
	}
	cfg := &domain.QuizConfig{
		Topic:            strings.TrimSpace(req.Topic),
		Difficulty:       difficulty,
		RequiredCount:    req.NumQuestions,
		TotalMarks:       req.TotalMarks,
		MarksPerQuestion: req.MarksPerQuestion,
	}

	if !strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		return cfg, nil
	}
	fh, err := c.FormFile(pdfFormField)
	if err != nil {
		return nil, domain.NewValidationError("Please upload a PDF file first")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, domain.NewValidationError("Could not read the uploaded file")
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, domain.NewValidationError("Could not read the uploaded file")
	}
	cfg.PDF = &domain.PDFSource{Filename: fh.Filename, Content: content}
	return cfg, nil
}

// ToggleSelect godoc
// @Summary Toggle a question in the selection
// @Tags quiz
// @Produce json
// @Security ApiKeyAuth
// @Param questionId path int true "Question ID"
// @Success 200 {object} domain.SessionSnapshot
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /quiz/selection/{questionId} [post]
func (h *QuizHandler) ToggleSelect(c *fiber.Ctx) error {
	id, _ := c.Locals(middleware.ValidatedQuestionIDKey).(int)
	snap, err := h.service.ToggleSelect(c.UserContext(), middleware.UserID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(snap)
}

// Finalize godoc
// @Summary Create the quiz from the selection
// @Tags quiz
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} domain.Quiz
// @Failure 409 {object} middleware.ErrorResponse
// @Router /quiz/finalize [post]
func (h *QuizHandler) Finalize(c *fiber.Ctx) error {
	quiz, err := h.service.Finalize(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(quiz)
}

// Submit godoc
// @Summary Submit answers for evaluation
// @Tags quiz
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.SubmitQuizRequest true "Answers"
// @Success 200 {object} domain.Evaluation
// @Failure 409 {object} middleware.ErrorResponse
// @Failure 429 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /quiz/submit [post]
func (h *QuizHandler) Submit(c *fiber.Ctx) error {
	var req dto.SubmitQuizRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return domain.NewValidationError("Invalid request body")
		}
	}
	eval, err := h.service.Submit(c.UserContext(), middleware.UserID(c), req.ToDomain())
	if err != nil {
		return err
	}
	return c.JSON(eval)
}

// Session godoc
// @Summary Current quiz session
// @Tags quiz
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} domain.SessionSnapshot
// @Router /quiz/session [get]
func (h *QuizHandler) Session(c *fiber.Ctx) error {
	return c.JSON(h.service.Snapshot(c.UserContext(), middleware.UserID(c)))
}

// Export godoc
// @Summary Export the current quiz
// @Description Returns the printable document as JSON, or as a text attachment with format=text.
// @Tags quiz
// @Produce json,plain
// @Security ApiKeyAuth
// @Param format query string false "json or text"
// @Success 200 {object} dto.ExportResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quiz/export [get]
func (h *QuizHandler) Export(c *fiber.Ctx) error {
	doc, err := h.service.Export(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	if c.Query("format") != "text" {
		return c.JSON(doc)
	}

	var buf bytes.Buffer
	if err := export.WriteText(&buf, doc.Document); err != nil {
		logger.Get().Error("Failed to render quiz export", zap.Error(err))
		return domain.NewInternalError("Failed to render quiz export", err)
	}
	name := strings.TrimSuffix(doc.FileName, ".pdf") + ".txt"
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Send(buf.Bytes())
}
