package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"ai-teacher/internal/cache"
	"ai-teacher/internal/chart"
	"ai-teacher/internal/domain"
	"ai-teacher/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// PerformanceService defines the interface for performance tracking operations.
type PerformanceService interface {
	PerformanceRecorder
	Get(ctx context.Context, userID string) (*domain.Performance, error)
	Chart(ctx context.Context, userID string, width, height float64) (*chart.Chart, error)
	Distribution(ctx context.Context, userID string) ([]chart.Bucket, error)
}

type performanceService struct {
	repo  domain.PerformanceRepository
	cache domain.Cache // nil disables the read-through history cache
	ttl   time.Duration
	clock func() time.Time
	group singleflight.Group

	// generations counts Records per user. A load only caches what it read if
	// no Record happened since it started.
	genMu       sync.Mutex
	generations map[string]uint64
}

// NewPerformanceService creates a PerformanceService. Pass a nil cache when repo
// is itself cache-backed.
func NewPerformanceService(repo domain.PerformanceRepository, c domain.Cache, historyTTL time.Duration) PerformanceService {
	return &performanceService{
		repo:        repo,
		cache:       c,
		ttl:         historyTTL,
		clock:       time.Now,
		generations: make(map[string]uint64),
	}
}

// Record appends the completed quiz to the user's history.
func (s *performanceService) Record(ctx context.Context, userID string, quiz *domain.Quiz, eval *domain.Evaluation) (domain.PerformanceEntry, error) {
	entry := domain.NewPerformance().Record(quiz, eval, s.clock())
	if err := s.repo.Append(ctx, userID, entry); err != nil {
		return domain.PerformanceEntry{}, err
	}

	s.bump(userID)
	if s.cache != nil {
		if err := s.cache.Delete(ctx, cache.HistoryKey(userID)); err != nil {
			logger.Get().Warn("Failed to invalidate history cache", zap.String("userID", userID), zap.Error(err))
		}
	}

	logger.Get().Info("Performance recorded",
		zap.String("userID", userID),
		zap.Float64("score", entry.Record.Score),
		zap.String("difficulty", entry.Record.Difficulty))
	return entry, nil
}

func (s *performanceService) Get(ctx context.Context, userID string) (*domain.Performance, error) {
	entries, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	snap := domain.RestorePerformance(entries).Snapshot()
	return &snap, nil
}

func (s *performanceService) Chart(ctx context.Context, userID string, width, height float64) (*chart.Chart, error) {
	perf, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	c := chart.Render(perf.History, width, height)
	return &c, nil
}

func (s *performanceService) Distribution(ctx context.Context, userID string) ([]chart.Bucket, error) {
	perf, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return chart.Distribution(perf.History, perf.Summary.CurrentDifficultyLevel), nil
}

// load reads a user's entries once per concurrent burst of callers.
// Callers arriving after a Record start a fresh read.
func (s *performanceService) load(ctx context.Context, userID string) ([]domain.PerformanceEntry, error) {
	gen := s.generation(userID)
	v, err, _ := s.group.Do(userID+"#"+strconv.FormatUint(gen, 10), func() (interface{}, error) {
		if entries, ok := s.fromCache(ctx, userID); ok {
			return entries, nil
		}

		entries, err := s.repo.ListByUser(ctx, userID)
		if err != nil {
			return nil, domain.NewInternalError("Failed to load performance history", err)
		}
		s.storeHistory(ctx, userID, gen, entries)
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.PerformanceEntry), nil
}

// storeHistory caches entries read at generation gen. If a Record lands while
// the write is in flight the key is dropped again.
func (s *performanceService) storeHistory(ctx context.Context, userID string, gen uint64, entries []domain.PerformanceEntry) {
	if s.cache == nil || s.generation(userID) != gen {
		return
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	key := cache.HistoryKey(userID)
	if err := s.cache.Set(ctx, key, string(raw), s.ttl); err != nil {
		logger.Get().Warn("Failed to cache history", zap.String("userID", userID), zap.Error(err))
		return
	}
	if s.generation(userID) != gen {
		if err := s.cache.Delete(ctx, key); err != nil {
			logger.Get().Warn("Failed to drop stale history cache", zap.String("userID", userID), zap.Error(err))
		}
	}
}

func (s *performanceService) generation(userID string) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.generations[userID]
}

func (s *performanceService) bump(userID string) {
	s.genMu.Lock()
	s.generations[userID]++
	s.genMu.Unlock()
}

func (s *performanceService) fromCache(ctx context.Context, userID string) ([]domain.PerformanceEntry, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, cache.HistoryKey(userID))
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Get().Warn("History cache read failed", zap.String("userID", userID), zap.Error(err))
		}
		return nil, false
	}
	var entries []domain.PerformanceEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		logger.Get().Warn("Discarding corrupt history cache entry", zap.String("userID", userID), zap.Error(err))
		return nil, false
	}
	return entries, true
}
