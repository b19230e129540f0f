package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ai-teacher/internal/domain"
	"ai-teacher/internal/logger"

	"go.uber.org/zap"
)

// PerformanceRecorder persists the result of a completed quiz.
type PerformanceRecorder interface {
	Record(ctx context.Context, userID string, quiz *domain.Quiz, eval *domain.Evaluation) (domain.PerformanceEntry, error)
}

// SessionDeps are the collaborators of one quiz session.
type SessionDeps struct {
	Generator domain.QuestionGenerator
	// Fallback is used for topic quizzes when Generator fails with a TransportError. Nil disables it.
	Fallback  domain.QuestionGenerator
	Evaluator domain.QuizEvaluator
	Gate      domain.AuthGate
	Recorder  PerformanceRecorder
	Clock     func() time.Time
	NewID     func() string
}

// Session is the quiz workflow of one user:
// Idle -> PoolGenerated -> Selecting -> QuizReady -> Submitted.
// Network calls run without holding mu; the generating and submitting
// flags reject every other mutation until the call completes.
type Session struct {
	userID string
	deps   SessionDeps

	mu           sync.Mutex
	state        domain.SessionState
	generating   bool
	submitting   bool
	cfg          *domain.QuizConfig
	topic        string
	topicWarning string
	usedFallback bool
	pool         []domain.Question
	selection    []int
	quiz         *domain.Quiz
	startedAt    time.Time
	result       *domain.Evaluation
}

func NewSession(userID string, deps SessionDeps) *Session {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &Session{userID: userID, deps: deps, state: domain.StateIdle}
}

func (s *Session) requireAuth(ctx context.Context, action string) error {
	if s.deps.Gate == nil || !s.deps.Gate.IsAuthenticated(ctx) {
		return domain.NewAuthRequiredError(action)
	}
	return nil
}

// busyErrLocked reports an in-flight network call. Callers hold mu.
func (s *Session) busyErrLocked() error {
	switch {
	case s.generating:
		return domain.NewBusyError("Question generation")
	case s.submitting:
		return domain.NewBusyError("Quiz submission")
	}
	return nil
}

// GeneratePool validates cfg, fetches 2×RequiredCount candidates and installs them,
// discarding any selection and any unsubmitted quiz. On failure the session is unchanged.
func (s *Session) GeneratePool(ctx context.Context, cfg domain.QuizConfig) (*domain.SessionSnapshot, error) {
	if err := s.requireAuth(ctx, "generate quizzes"); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if err := s.busyErrLocked(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.generating = true
	s.mu.Unlock()

	pool, usedFallback, err := s.fetchPool(ctx, cfg)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.generating = false
	if err != nil {
		return nil, err
	}

	questions := make([]domain.Question, len(pool.Questions))
	for i, q := range pool.Questions {
		questions[i] = q.Normalize(cfg.MarksPerQuestion)
	}

	stored := cfg
	s.cfg = &stored
	s.topic = pool.Topic
	s.topicWarning = ""
	if !cfg.IsPDF() && !domain.IsAITopic(cfg.Topic) {
		s.topicWarning = fmt.Sprintf("%q may not be an AI topic; questions may be off-subject", cfg.Topic)
	}
	s.usedFallback = usedFallback
	s.pool = questions
	s.selection = nil
	s.quiz = nil
	s.result = nil
	s.state = domain.StatePoolGenerated

	logger.Get().Info("Question pool generated",
		zap.String("userID", s.userID),
		zap.String("topic", s.topic),
		zap.Int("poolSize", len(questions)),
		zap.Bool("usedFallback", usedFallback))

	snap := s.snapshotLocked()
	return &snap, nil
}

func (s *Session) fetchPool(ctx context.Context, cfg domain.QuizConfig) (*domain.GeneratedPool, bool, error) {
	want := cfg.PoolSize()

	pool, err := s.deps.Generator.GeneratePool(ctx, cfg)
	if err == nil {
		pool, err = checkPool(pool, want)
	}
	if err == nil {
		return pool, false, nil
	}
	if !domain.IsCode(err, domain.CodeTransport) || cfg.IsPDF() || s.deps.Fallback == nil {
		logger.Get().Error("Question generation failed", zap.String("userID", s.userID), zap.Error(err))
		return nil, false, err
	}

	logger.Get().Warn("Primary question source unavailable, using local fallback",
		zap.String("userID", s.userID), zap.Error(err))
	pool, fbErr := s.deps.Fallback.GeneratePool(ctx, cfg)
	if fbErr == nil {
		pool, fbErr = checkPool(pool, want)
	}
	if fbErr != nil {
		return nil, false, fbErr
	}
	return pool, true, nil
}

// checkPool requires at least want questions with unique ids and trims any extra.
func checkPool(pool *domain.GeneratedPool, want int) (*domain.GeneratedPool, error) {
	if pool == nil || len(pool.Questions) < want {
		got := 0
		if pool != nil {
			got = len(pool.Questions)
		}
		return nil, domain.NewTransportError(
			fmt.Sprintf("expected %d questions from generator, got %d", want, got), nil)
	}
	questions := pool.Questions[:want]
	seen := make(map[int]struct{}, want)
	for _, q := range questions {
		if _, dup := seen[q.ID]; dup {
			return nil, domain.NewTransportError(fmt.Sprintf("generator returned duplicate question id %d", q.ID), nil)
		}
		seen[q.ID] = struct{}{}
	}
	return &domain.GeneratedPool{Topic: pool.Topic, Questions: questions}, nil
}

// ToggleSelect adds questionID to the selection, or removes it if already selected.
func (s *Session) ToggleSelect(ctx context.Context, questionID int) (*domain.SessionSnapshot, error) {
	if err := s.requireAuth(ctx, "select questions"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.busyErrLocked(); err != nil {
		return nil, err
	}
	if s.state != domain.StatePoolGenerated && s.state != domain.StateSelecting {
		return nil, domain.NewInvalidStateError("select questions", s.state)
	}
	if !s.inPoolLocked(questionID) {
		return nil, domain.NewValidationError(fmt.Sprintf("question %d is not in the pool", questionID))
	}

	for i, id := range s.selection {
		if id == questionID {
			s.selection = append(s.selection[:i:i], s.selection[i+1:]...)
			s.state = domain.StateSelecting
			snap := s.snapshotLocked()
			return &snap, nil
		}
	}
	if len(s.selection) >= s.cfg.RequiredCount {
		return nil, domain.NewSelectionFullError(s.cfg.RequiredCount)
	}
	s.selection = append(s.selection, questionID)
	s.state = domain.StateSelecting

	snap := s.snapshotLocked()
	return &snap, nil
}

func (s *Session) inPoolLocked(id int) bool {
	for _, q := range s.pool {
		if q.ID == id {
			return true
		}
	}
	return false
}

// Finalize turns a full selection into a Quiz, in selection order.
func (s *Session) Finalize(ctx context.Context) (*domain.Quiz, error) {
	if err := s.requireAuth(ctx, "create quizzes"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.busyErrLocked(); err != nil {
		return nil, err
	}
	if s.state != domain.StatePoolGenerated && s.state != domain.StateSelecting {
		return nil, domain.NewInvalidStateError("finalize", s.state)
	}
	if len(s.selection) != s.cfg.RequiredCount {
		return nil, domain.NewIncompleteSelectionError(len(s.selection), s.cfg.RequiredCount)
	}

	byID := make(map[int]domain.Question, len(s.pool))
	for _, q := range s.pool {
		byID[q.ID] = q
	}
	questions := make([]domain.Question, 0, len(s.selection))
	for _, id := range s.selection {
		questions = append(questions, byID[id])
	}

	now := s.deps.Clock()
	quiz := &domain.Quiz{
		ID:               s.deps.NewID(),
		Topic:            s.topic,
		Difficulty:       s.cfg.Difficulty,
		Questions:        questions,
		TotalMarks:       s.cfg.TotalMarks,
		MarksPerQuestion: s.cfg.MarksPerQuestion,
		CreatedAt:        now,
	}
	s.quiz = quiz
	s.startedAt = now
	s.pool = nil
	s.selection = nil
	s.result = nil
	s.state = domain.StateQuizReady

	logger.Get().Info("Quiz finalized",
		zap.String("userID", s.userID),
		zap.String("quizID", quiz.ID),
		zap.Int("questions", len(questions)))
	return copyQuiz(quiz), nil
}

// Submit evaluates the ready quiz. Unanswered questions are sent as "".
// On success the performance entry is recorded before the state becomes Submitted;
// on any failure the session stays QuizReady.
func (s *Session) Submit(ctx context.Context, answers map[int]domain.Answer) (*domain.Evaluation, error) {
	if err := s.requireAuth(ctx, "submit quizzes"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if err := s.busyErrLocked(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if s.state != domain.StateQuizReady {
		state := s.state
		s.mu.Unlock()
		return nil, domain.NewInvalidStateError("submit", state)
	}
	s.submitting = true
	quiz := s.quiz
	elapsed := s.deps.Clock().Sub(s.startedAt)
	s.mu.Unlock()

	values := make(map[int]string, len(quiz.Questions))
	for _, q := range quiz.Questions {
		values[q.ID] = answers[q.ID].Value()
	}

	eval, err := s.deps.Evaluator.Evaluate(ctx, domain.EvaluationRequest{
		Quiz:    quiz,
		Answers: values,
		UserID:  s.userID,
		Elapsed: elapsed,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
	if err != nil {
		logger.Get().Error("Quiz evaluation failed",
			zap.String("userID", s.userID), zap.String("quizID", quiz.ID), zap.Error(err))
		return nil, err
	}

	if _, err := s.deps.Recorder.Record(ctx, s.userID, quiz, eval); err != nil {
		logger.Get().Error("Failed to record performance",
			zap.String("userID", s.userID), zap.String("quizID", quiz.ID), zap.Error(err))
		return nil, domain.NewInternalError("Failed to record quiz result", err)
	}
	s.result = eval
	s.state = domain.StateSubmitted

	logger.Get().Info("Quiz submitted",
		zap.String("userID", s.userID),
		zap.String("quizID", quiz.ID),
		zap.Float64("score", eval.Score))
	return eval, nil
}

// Quiz returns the ready or submitted quiz, if any.
func (s *Session) Quiz() *domain.Quiz {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyQuiz(s.quiz)
}

func (s *Session) Snapshot() domain.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() domain.SessionSnapshot {
	snap := domain.SessionSnapshot{
		State:        s.state,
		Generating:   s.generating,
		Submitting:   s.submitting,
		UsedFallback: s.usedFallback,
		TopicWarning: s.topicWarning,
		Topic:        s.topic,
		Pool:         append([]domain.Question{}, s.pool...),
		Selection:    append([]int{}, s.selection...),
		Quiz:         copyQuiz(s.quiz),
	}
	if s.cfg != nil {
		snap.Difficulty = s.cfg.Difficulty.Label()
		snap.RequiredCount = s.cfg.RequiredCount
		snap.TotalMarks = s.cfg.TotalMarks
		snap.MarksPerQuestion = s.cfg.MarksPerQuestion
	}
	if s.result != nil {
		r := *s.result
		r.Feedback = append([]domain.QuestionFeedback{}, s.result.Feedback...)
		snap.Result = &r
	}
	return snap
}

func copyQuiz(q *domain.Quiz) *domain.Quiz {
	if q == nil {
		return nil
	}
	c := *q
	c.Questions = append([]domain.Question{}, q.Questions...)
	return &c
}
