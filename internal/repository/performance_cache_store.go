package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ai-teacher/internal/cache"
	"ai-teacher/internal/domain"
)

// cachePerformanceStore keeps each user's entries as one JSON list in the cache.
// It is the store used when no database is configured.
type cachePerformanceStore struct {
	cache domain.Cache
}

func NewCachePerformanceStore(c domain.Cache) domain.PerformanceRepository {
	return &cachePerformanceStore{cache: c}
}

func (s *cachePerformanceStore) Append(ctx context.Context, userID string, entry domain.PerformanceEntry) error {
	entries, err := s.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	entries = append(entries, entry)
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode performance entries: %w", err)
	}
	return s.cache.Set(ctx, cache.RecordsKey(userID), string(raw), 0)
}

func (s *cachePerformanceStore) ListByUser(ctx context.Context, userID string) ([]domain.PerformanceEntry, error) {
	raw, err := s.cache.Get(ctx, cache.RecordsKey(userID))
	if errors.Is(err, domain.ErrCacheMiss) {
		return []domain.PerformanceEntry{}, nil
	}
	if err != nil {
		return nil, err
	}
	var entries []domain.PerformanceEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("failed to decode performance entries: %w", err)
	}
	return entries, nil
}
