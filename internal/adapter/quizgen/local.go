// Package quizgen holds question sources other than the remote backend.
package quizgen

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"ai-teacher/internal/domain"
)

var localKinds = []domain.QuestionKind{
	domain.MultipleChoice,
	domain.TrueFalse,
	domain.ShortAnswer,
	domain.Essay,
}

// LocalGenerator produces placeholder questions without any network access.
// It is the degraded-mode source used when the primary generator is unreachable.
type LocalGenerator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewLocalGenerator seeds from the clock when seed is 0.
func NewLocalGenerator(seed int64) *LocalGenerator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &LocalGenerator{rnd: rand.New(rand.NewSource(seed))}
}

var _ domain.QuestionGenerator = (*LocalGenerator)(nil)

func (g *LocalGenerator) GeneratePool(_ context.Context, cfg domain.QuizConfig) (*domain.GeneratedPool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	level := cfg.Difficulty.Label()
	n := cfg.PoolSize()
	questions := make([]domain.Question, 0, n)
	for i := 1; i <= n; i++ {
		q := domain.Question{
			ID:    i,
			Text:  fmt.Sprintf("Question %d: Sample question about %s at %s level?", i, cfg.Topic, level),
			Kind:  localKinds[g.rnd.Intn(len(localKinds))],
			Marks: cfg.MarksPerQuestion,
		}
		switch q.Kind {
		case domain.MultipleChoice:
			q.Options = []string{"Option A", "Option B", "Option C", "Option D"}
			q.CorrectAnswerIndex = intPtr(g.rnd.Intn(4))
		case domain.TrueFalse:
			q.Options = []string{"True", "False"}
			q.CorrectAnswerIndex = intPtr(g.rnd.Intn(2))
		}
		questions = append(questions, q)
	}
	return &domain.GeneratedPool{Topic: cfg.Topic, Questions: questions}, nil
}

func intPtr(i int) *int { return &i }
