package service

import (
	"context"
	"sync"
	"time"

	"ai-teacher/internal/domain"
	"ai-teacher/internal/dto"
	"ai-teacher/internal/export"
	"ai-teacher/internal/logger"
	"ai-teacher/internal/util"

	"go.uber.org/zap"
)

// QuizService defines the interface for the per-user quiz workflow.
type QuizService interface {
	GeneratePool(ctx context.Context, userID string, cfg domain.QuizConfig) (*domain.SessionSnapshot, error)
	ToggleSelect(ctx context.Context, userID string, questionID int) (*domain.SessionSnapshot, error)
	Finalize(ctx context.Context, userID string) (*domain.Quiz, error)
	Submit(ctx context.Context, userID string, answers map[int]domain.Answer) (*domain.Evaluation, error)
	Snapshot(ctx context.Context, userID string) domain.SessionSnapshot
	Export(ctx context.Context, userID string) (*dto.ExportResponse, error)
	// EndSession drops the user's workflow state; the next call starts from Idle.
	EndSession(ctx context.Context, userID string)
}

// SignInChecker answers whether a user currently has a persisted session.
type SignInChecker interface {
	IsSignedIn(ctx context.Context, userID string) bool
}

// quizService keeps one Session per user.
type quizService struct {
	generator domain.QuestionGenerator
	fallback  domain.QuestionGenerator
	evaluator domain.QuizEvaluator
	auth      SignInChecker
	recorder  PerformanceRecorder
	clock     func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewQuizService creates a new instance of quizService. A nil fallback disables degraded mode.
func NewQuizService(
	generator domain.QuestionGenerator,
	fallback domain.QuestionGenerator,
	evaluator domain.QuizEvaluator,
	auth SignInChecker,
	recorder PerformanceRecorder,
) QuizService {
	return &quizService{
		generator: generator,
		fallback:  fallback,
		evaluator: evaluator,
		auth:      auth,
		recorder:  recorder,
		clock:     time.Now,
		sessions:  make(map[string]*Session),
	}
}

func (s *quizService) EndSession(_ context.Context, userID string) {
	s.mu.Lock()
	_, ok := s.sessions[userID]
	delete(s.sessions, userID)
	s.mu.Unlock()
	if ok {
		logger.Get().Info("Quiz session ended", zap.String("userID", userID))
	}
}

func (s *quizService) session(userID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[userID]; ok {
		return sess
	}
	sess := NewSession(userID, SessionDeps{
		Generator: s.generator,
		Fallback:  s.fallback,
		Evaluator: s.evaluator,
		Gate: domain.AuthGateFunc(func(ctx context.Context) bool {
			return s.auth.IsSignedIn(ctx, userID)
		}),
		Recorder: s.recorder,
		Clock:    s.clock,
		NewID:    util.NewULID,
	})
	s.sessions[userID] = sess
	return sess
}

func (s *quizService) GeneratePool(ctx context.Context, userID string, cfg domain.QuizConfig) (*domain.SessionSnapshot, error) {
	return s.session(userID).GeneratePool(ctx, cfg)
}

func (s *quizService) ToggleSelect(ctx context.Context, userID string, questionID int) (*domain.SessionSnapshot, error) {
	return s.session(userID).ToggleSelect(ctx, questionID)
}

func (s *quizService) Finalize(ctx context.Context, userID string) (*domain.Quiz, error) {
	return s.session(userID).Finalize(ctx)
}

func (s *quizService) Submit(ctx context.Context, userID string, answers map[int]domain.Answer) (*domain.Evaluation, error) {
	return s.session(userID).Submit(ctx, answers)
}

func (s *quizService) Snapshot(_ context.Context, userID string) domain.SessionSnapshot {
	return s.session(userID).Snapshot()
}

// Export builds the printable document of the ready or submitted quiz.
func (s *quizService) Export(ctx context.Context, userID string) (*dto.ExportResponse, error) {
	if !s.auth.IsSignedIn(ctx, userID) {
		return nil, domain.NewAuthRequiredError("export quizzes")
	}
	quiz := s.session(userID).Quiz()
	if quiz == nil {
		return nil, domain.NewNotFoundError("No quiz to export. Generate a quiz first.")
	}
	return &dto.ExportResponse{
		FileName: export.FileName(quiz.Topic, s.clock()),
		Document: export.Build(quiz),
	}, nil
}
