package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-teacher/internal/cache"
	"ai-teacher/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPerformanceTestDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

func sampleEntry(at time.Time) domain.PerformanceEntry {
	return domain.PerformanceEntry{
		Record:         domain.PerformanceRecord{Timestamp: at, Score: 80, Topic: "NLP", Difficulty: "Beginner"},
		CorrectAnswers: 4,
		TotalQuestions: 5,
	}
}

func TestSQLXPerformanceRepository_Append(t *testing.T) {
	db, mock := setupPerformanceTestDB(t)
	repo := NewSQLXPerformanceRepository(db)
	at := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO performance_records").
		WithArgs(sqlmock.AnyArg(), "u1", "NLP", "Beginner", 80.0, 4, 5, at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Append(context.Background(), "u1", sampleEntry(at)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLXPerformanceRepository_AppendError(t *testing.T) {
	db, mock := setupPerformanceTestDB(t)
	repo := NewSQLXPerformanceRepository(db)

	mock.ExpectExec("INSERT INTO performance_records").WillReturnError(errors.New("ORA-00001"))

	err := repo.Append(context.Background(), "u1", sampleEntry(time.Now()))
	assert.ErrorContains(t, err, "ORA-00001")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLXPerformanceRepository_ListByUser(t *testing.T) {
	db, mock := setupPerformanceTestDB(t)
	repo := NewSQLXPerformanceRepository(db)
	t1 := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	rows := sqlmock.NewRows([]string{"ID", "USER_ID", "TOPIC", "DIFFICULTY", "SCORE", "CORRECT_ANSWERS", "TOTAL_QUESTIONS", "RECORDED_AT"}).
		AddRow("01A", "u1", "NLP", "Beginner", 80.0, 4, 5, t1).
		AddRow("01B", "u1", nil, "Advanced", 40.0, 2, 5, t2)
	mock.ExpectQuery(`SELECT .* FROM performance_records\s+WHERE USER_ID = :1\s+ORDER BY RECORDED_AT ASC`).
		WithArgs("u1").
		WillReturnRows(rows)

	entries, err := repo.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, sampleEntry(t1), entries[0])
	assert.Equal(t, "", entries[1].Record.Topic)
	assert.Equal(t, "Advanced", entries[1].Record.Difficulty)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachePerformanceStore(t *testing.T) {
	fc := newFakeCache()
	store := NewCachePerformanceStore(fc)
	ctx := context.Background()
	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	entries, err := store.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, store.Append(ctx, "u1", sampleEntry(at)))
	require.NoError(t, store.Append(ctx, "u1", sampleEntry(at.Add(time.Minute))))

	entries, err = store.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, at.Add(time.Minute), entries[1].Record.Timestamp)
	assert.Contains(t, fc.values, cache.RecordsKey("u1"))
}

func TestCachePerformanceStore_CorruptValue(t *testing.T) {
	fc := newFakeCache()
	fc.values[cache.RecordsKey("u1")] = "{not json"
	_, err := NewCachePerformanceStore(fc).ListByUser(context.Background(), "u1")
	assert.Error(t, err)
}

type fakeCache struct {
	values map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string]string{}}
}

func (f *fakeCache) Get(_ context.Context, key string) (string, error) {
	v, ok := f.values[key]
	if !ok {
		return "", domain.ErrCacheMiss
	}
	return v, nil
}

func (f *fakeCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	f.values[key] = value
	return nil
}

func (f *fakeCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.values, k)
	}
	return nil
}

func (f *fakeCache) Ping(context.Context) error { return nil }

func (f *fakeCache) GetHash(context.Context, string) (map[string]string, error) {
	return nil, domain.ErrCacheMiss
}

func (f *fakeCache) SetHash(context.Context, string, map[string]string, time.Duration) error {
	return nil
}
