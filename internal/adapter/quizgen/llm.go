package quizgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"ai-teacher/internal/domain"
	"ai-teacher/internal/logger"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

const generatePrompt = `You are a quiz generator for an AI tutoring app. Respond with ONLY a JSON array of %d objects in the following format:
[
  {
    "id": 1,
    "question": "question text",
    "type": "multiple_choice",
    "options": ["A", "B", "C", "D"],
    "correct_answer": 0
  }
]

Topic: %s
Difficulty: %s

Rules:
1. "type" is one of multiple_choice, true_false, short_answer, essay
2. multiple_choice has exactly 4 options, true_false has ["True", "False"]
3. short_answer and essay omit "options" and "correct_answer"
4. ids are 1..%d and unique
5. Questions must match the difficulty level`

// LLMGenerator asks a langchaingo model for questions by topic.
// It does not read PDFs; PDF configs are rejected so callers stay on the backend.
type LLMGenerator struct {
	model   llms.Model
	timeout time.Duration
}

func NewLLMGenerator(model llms.Model, timeout time.Duration) *LLMGenerator {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &LLMGenerator{model: model, timeout: timeout}
}

var _ domain.QuestionGenerator = (*LLMGenerator)(nil)

type llmQuestion struct {
	ID            int      `json:"id"`
	Question      string   `json:"question"`
	Type          string   `json:"type"`
	Options       []string `json:"options"`
	CorrectAnswer *int     `json:"correct_answer"`
}

func (g *LLMGenerator) GeneratePool(ctx context.Context, cfg domain.QuizConfig) (*domain.GeneratedPool, error) {
	if cfg.IsPDF() {
		return nil, domain.NewValidationError("PDF quizzes require the backend generator")
	}
	l := logger.Get()
	n := cfg.PoolSize()
	prompt := fmt.Sprintf(generatePrompt, n, cfg.Topic, cfg.Difficulty.Label(), n)

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	raw, err := llms.GenerateFromSinglePrompt(callCtx, g.model, prompt, llms.WithTemperature(0.7))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			l.Error("LLM request timed out", zap.Error(err))
			return nil, domain.NewTransportError("LLM request timed out", err)
		}
		l.Error("Failed to get response from LLM", zap.Error(err))
		return nil, domain.NewTransportError("LLM call failed", err)
	}

	items, err := parseQuestions(raw)
	if err != nil {
		l.Error("Failed to parse LLM questions", zap.Error(err), zap.String("raw_response", raw))
		return nil, domain.NewTransportError("LLM returned malformed questions", err)
	}

	pool := &domain.GeneratedPool{Topic: cfg.Topic, Questions: make([]domain.Question, 0, len(items))}
	for i, it := range items {
		id := it.ID
		if id == 0 {
			id = i + 1
		}
		pool.Questions = append(pool.Questions, domain.Question{
			ID:                 id,
			Text:               it.Question,
			Kind:               domain.ParseQuestionKind(it.Type),
			Marks:              cfg.MarksPerQuestion,
			Options:            it.Options,
			CorrectAnswerIndex: it.CorrectAnswer,
		})
	}
	l.Info("LLM generated questions", zap.Int("requested", n), zap.Int("received", len(pool.Questions)))
	return pool, nil
}

// parseQuestions strips <think> blocks and decodes the outermost JSON array.
func parseQuestions(raw string) ([]llmQuestion, error) {
	cleaned := strings.TrimSpace(raw)
	if start := strings.Index(cleaned, "<think>"); start != -1 {
		if end := strings.Index(cleaned, "</think>"); end > start {
			cleaned = strings.TrimSpace(cleaned[:start] + cleaned[end+len("</think>"):])
		}
	}

	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("no JSON array found in LLM response")
	}

	var items []llmQuestion
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON from LLM: %w", err)
	}
	return items, nil
}
