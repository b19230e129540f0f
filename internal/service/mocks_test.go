package service

import (
	"context"
	"sync"
	"time"

	"ai-teacher/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- MockQuestionGenerator ---
type MockQuestionGenerator struct {
	mock.Mock
}

func (m *MockQuestionGenerator) GeneratePool(ctx context.Context, cfg domain.QuizConfig) (*domain.GeneratedPool, error) {
	args := m.Called(ctx, cfg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GeneratedPool), args.Error(1)
}

// --- MockQuizEvaluator ---
type MockQuizEvaluator struct {
	mock.Mock
}

func (m *MockQuizEvaluator) Evaluate(ctx context.Context, req domain.EvaluationRequest) (*domain.Evaluation, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Evaluation), args.Error(1)
}

// --- MockPerformanceRepository ---
type MockPerformanceRepository struct {
	mock.Mock
}

func (m *MockPerformanceRepository) Append(ctx context.Context, userID string, entry domain.PerformanceEntry) error {
	args := m.Called(ctx, userID, entry)
	return args.Error(0)
}

func (m *MockPerformanceRepository) ListByUser(ctx context.Context, userID string) ([]domain.PerformanceEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PerformanceEntry), args.Error(1)
}

// --- MockAuthBackend ---
type MockAuthBackend struct {
	mock.Mock
}

func (m *MockAuthBackend) SignUp(ctx context.Context, name, email, password string) (*domain.AuthResult, error) {
	args := m.Called(ctx, name, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthResult), args.Error(1)
}

func (m *MockAuthBackend) SignIn(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthResult), args.Error(1)
}

// memCache is an in-memory domain.Cache.
type memCache struct {
	mu     sync.Mutex
	values map[string]string
	hashes map[string]map[string]string
	gets   int
}

func newMemCache() *memCache {
	return &memCache{values: map[string]string{}, hashes: map[string]map[string]string{}}
}

func (c *memCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	v, ok := c.values[key]
	if !ok {
		return "", domain.ErrCacheMiss
	}
	return v, nil
}

func (c *memCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.values, k)
		delete(c.hashes, k)
	}
	return nil
}

func (c *memCache) Ping(context.Context) error { return nil }

func (c *memCache) GetHash(_ context.Context, key string) (map[string]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.hashes[key]
	if !ok || len(h) == 0 {
		return nil, domain.ErrCacheMiss
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out, nil
}

func (c *memCache) SetHash(_ context.Context, key string, fields map[string]string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.hashes[key]
	if !ok {
		h = map[string]string{}
		c.hashes[key] = h
	}
	for k, v := range fields {
		h[k] = v
	}
	return nil
}

// recorderFunc adapts a function to PerformanceRecorder.
type recorderFunc func(ctx context.Context, userID string, quiz *domain.Quiz, eval *domain.Evaluation) (domain.PerformanceEntry, error)

func (f recorderFunc) Record(ctx context.Context, userID string, quiz *domain.Quiz, eval *domain.Evaluation) (domain.PerformanceEntry, error) {
	return f(ctx, userID, quiz, eval)
}

// signedIn is a SignInChecker with a fixed set of users.
type signedIn map[string]bool

func (s signedIn) IsSignedIn(_ context.Context, userID string) bool { return s[userID] }

// --- MockLearningBackend ---
type MockLearningBackend struct {
	mock.Mock
}

func (m *MockLearningBackend) ExplainTopic(ctx context.Context, topic string) (*domain.TopicExplanation, error) {
	args := m.Called(ctx, topic)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TopicExplanation), args.Error(1)
}

func (m *MockLearningBackend) Chat(ctx context.Context, userID, message string) (*domain.ChatReply, error) {
	args := m.Called(ctx, userID, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChatReply), args.Error(1)
}

func (m *MockLearningBackend) StudentStats(ctx context.Context, studentID string) (*domain.StudentStats, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StudentStats), args.Error(1)
}
