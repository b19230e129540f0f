package domain

import (
	"context"
	"time"
)

// GeneratedPool is what a question source returns for one request.
type GeneratedPool struct {
	Topic     string
	Questions []Question
}

// QuestionGenerator produces candidate questions for a validated config.
// Implementations request cfg.PoolSize() items and report transport problems
// as TransportError so callers can decide on a fallback.
type QuestionGenerator interface {
	GeneratePool(ctx context.Context, cfg QuizConfig) (*GeneratedPool, error)
}

// EvaluationRequest carries a finalized quiz and a response for every question.
type EvaluationRequest struct {
	Quiz    *Quiz
	Answers map[int]string
	UserID  string
	Elapsed time.Duration
}

// QuizEvaluator scores a submitted quiz. There is no local fallback.
type QuizEvaluator interface {
	Evaluate(ctx context.Context, req EvaluationRequest) (*Evaluation, error)
}

// AuthGate is the "is a user signed in" capability the quiz workflow queries.
type AuthGate interface {
	IsAuthenticated(ctx context.Context) bool
}

// AuthGateFunc adapts a function to AuthGate.
type AuthGateFunc func(ctx context.Context) bool

func (f AuthGateFunc) IsAuthenticated(ctx context.Context) bool { return f(ctx) }

// AuthBackend authenticates credentials against the remote service.
type AuthBackend interface {
	SignUp(ctx context.Context, name, email, password string) (*AuthResult, error)
	SignIn(ctx context.Context, email, password string) (*AuthResult, error)
}

// TopicExplainer asks the remote agent to explain a topic.
type TopicExplainer interface {
	ExplainTopic(ctx context.Context, topic string) (*TopicExplanation, error)
}

// ChatAgent relays a message to the remote agent, which keeps per-user memory.
type ChatAgent interface {
	Chat(ctx context.Context, userID, message string) (*ChatReply, error)
}

// StudentStatsReader loads a student's progress report.
type StudentStatsReader interface {
	StudentStats(ctx context.Context, studentID string) (*StudentStats, error)
}

// PerformanceRepository is durable storage for performance entries.
type PerformanceRepository interface {
	Append(ctx context.Context, userID string, entry PerformanceEntry) error
	ListByUser(ctx context.Context, userID string) ([]PerformanceEntry, error)
}

// CacheError represents an error originating from the cache.
type CacheError string

func (e CacheError) Error() string {
	return string(e)
}

// ErrCacheMiss is returned when a key is not found in the cache.
const ErrCacheMiss = CacheError("cache: key not found")

// Cache is the key-value port backing the history cache and persisted client state.
type Cache interface {
	// Get returns ErrCacheMiss if the key is not found.
	Get(ctx context.Context, key string) (string, error)
	// Set with ttl 0 keeps the value indefinitely.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	// Delete does not fail on missing keys.
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
	// GetHash returns ErrCacheMiss if the hash does not exist.
	GetHash(ctx context.Context, key string) (map[string]string, error)
	// SetHash writes all fields and the ttl in one transaction.
	SetHash(ctx context.Context, key string, fields map[string]string, ttl time.Duration) error
}
