package quizgen

import (
	"context"

	"ai-teacher/internal/domain"
)

// Router sends topic configs and PDF configs to different sources.
type Router struct {
	Topic domain.QuestionGenerator
	PDF   domain.QuestionGenerator
}

var _ domain.QuestionGenerator = Router{}

func (r Router) GeneratePool(ctx context.Context, cfg domain.QuizConfig) (*domain.GeneratedPool, error) {
	if cfg.IsPDF() {
		return r.PDF.GeneratePool(ctx, cfg)
	}
	return r.Topic.GeneratePool(ctx, cfg)
}
