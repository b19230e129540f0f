package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"ai-teacher/internal/cache"
	"ai-teacher/internal/domain"
	"ai-teacher/internal/logger"

	"go.uber.org/zap"
)

// MaxChatMessageLength bounds a single chat message.
const MaxChatMessageLength = 4000

// LearningService proxies the agent's teaching features for signed-in users.
type LearningService interface {
	ExplainTopic(ctx context.Context, userID, topic string) (*domain.TopicExplanation, error)
	Chat(ctx context.Context, userID, message string) (*domain.ChatReply, error)
	Stats(ctx context.Context, userID string) (*domain.StudentStats, error)
}

type learningService struct {
	explainer domain.TopicExplainer
	chat      domain.ChatAgent
	stats     domain.StudentStatsReader
	auth      SignInChecker
	cache     domain.Cache // nil disables explanation caching
	ttl       time.Duration
}

// NewLearningService creates a LearningService. Explanations are cached per topic
// for explanationTTL; a nil cache or a non-positive ttl turns caching off.
func NewLearningService(
	explainer domain.TopicExplainer,
	chat domain.ChatAgent,
	stats domain.StudentStatsReader,
	auth SignInChecker,
	c domain.Cache,
	explanationTTL time.Duration,
) LearningService {
	if explanationTTL <= 0 {
		c = nil
	}
	return &learningService{
		explainer: explainer,
		chat:      chat,
		stats:     stats,
		auth:      auth,
		cache:     c,
		ttl:       explanationTTL,
	}
}

func (s *learningService) ExplainTopic(ctx context.Context, userID, topic string) (*domain.TopicExplanation, error) {
	if !s.auth.IsSignedIn(ctx, userID) {
		return nil, domain.NewAuthRequiredError("get topic explanations")
	}
	topic = domain.NormalizeTopic(topic)
	if topic == "" {
		return nil, domain.NewValidationError("Please enter a topic")
	}

	if cached, ok := s.cachedExplanation(ctx, topic); ok {
		return cached, nil
	}

	exp, err := s.explainer.ExplainTopic(ctx, topic)
	if err != nil {
		logger.Get().Error("Topic explanation failed", zap.String("topic", topic), zap.Error(err))
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(exp); err == nil {
			if err := s.cache.Set(ctx, cache.ExplanationKey(topic), string(raw), s.ttl); err != nil {
				logger.Get().Warn("Failed to cache explanation", zap.String("topic", topic), zap.Error(err))
			}
		}
	}
	logger.Get().Info("Topic explained",
		zap.String("userID", userID),
		zap.String("topic", topic),
		zap.Float64("confidence", exp.ConfidenceScore))
	return exp, nil
}

func (s *learningService) cachedExplanation(ctx context.Context, topic string) (*domain.TopicExplanation, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, cache.ExplanationKey(topic))
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Get().Warn("Explanation cache read failed", zap.String("topic", topic), zap.Error(err))
		}
		return nil, false
	}
	var exp domain.TopicExplanation
	if err := json.Unmarshal([]byte(raw), &exp); err != nil {
		logger.Get().Warn("Discarding corrupt explanation cache entry", zap.String("topic", topic), zap.Error(err))
		return nil, false
	}
	return &exp, true
}

// Chat is never cached: the agent's reply depends on its conversation memory.
func (s *learningService) Chat(ctx context.Context, userID, message string) (*domain.ChatReply, error) {
	if !s.auth.IsSignedIn(ctx, userID) {
		return nil, domain.NewAuthRequiredError("chat with the AI teacher")
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, domain.NewValidationError("Please enter a message")
	}
	if len(message) > MaxChatMessageLength {
		return nil, domain.NewValidationError("Message is too long").
			WithContext("max_length", MaxChatMessageLength)
	}

	reply, err := s.chat.Chat(ctx, userID, message)
	if err != nil {
		logger.Get().Error("Chat request failed", zap.String("userID", userID), zap.Error(err))
		return nil, err
	}
	return reply, nil
}

func (s *learningService) Stats(ctx context.Context, userID string) (*domain.StudentStats, error) {
	if !s.auth.IsSignedIn(ctx, userID) {
		return nil, domain.NewAuthRequiredError("view your progress")
	}
	return s.stats.StudentStats(ctx, userID)
}
