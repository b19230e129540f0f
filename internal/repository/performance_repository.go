package repository

import (
	"context"
	"fmt"

	"ai-teacher/internal/domain"
	"ai-teacher/internal/repository/models"
	"ai-teacher/internal/util"
)

// sqlxPerformanceRepository implements domain.PerformanceRepository on Oracle via sqlx.
type sqlxPerformanceRepository struct {
	db DBTX
}

// NewSQLXPerformanceRepository accepts a *sqlx.DB or a *sqlx.Tx.
func NewSQLXPerformanceRepository(db DBTX) domain.PerformanceRepository {
	return &sqlxPerformanceRepository{db: db}
}

func toDomainPerformanceEntry(m *models.PerformanceRecord) domain.PerformanceEntry {
	return domain.PerformanceEntry{
		Record: domain.PerformanceRecord{
			Timestamp:  m.RecordedAt.UTC(),
			Score:      m.Score,
			Topic:      util.NullStringToString(m.Topic),
			Difficulty: util.NullStringToString(m.Difficulty),
		},
		CorrectAnswers: m.CorrectAnswers,
		TotalQuestions: m.TotalQuestions,
	}
}

func fromDomainPerformanceEntry(userID string, e domain.PerformanceEntry) *models.PerformanceRecord {
	return &models.PerformanceRecord{
		ID:             util.NewULIDAt(e.Record.Timestamp),
		UserID:         userID,
		Topic:          util.StringToNullString(e.Record.Topic),
		Difficulty:     util.StringToNullString(e.Record.Difficulty),
		Score:          e.Record.Score,
		CorrectAnswers: e.CorrectAnswers,
		TotalQuestions: e.TotalQuestions,
		RecordedAt:     e.Record.Timestamp.UTC(),
	}
}

// Append inserts one entry. Records are never updated.
func (r *sqlxPerformanceRepository) Append(ctx context.Context, userID string, entry domain.PerformanceEntry) error {
	m := fromDomainPerformanceEntry(userID, entry)
	query := `INSERT INTO performance_records (ID, USER_ID, TOPIC, DIFFICULTY, SCORE, CORRECT_ANSWERS, TOTAL_QUESTIONS, RECORDED_AT)
	          VALUES (:1, :2, :3, :4, :5, :6, :7, :8)`
	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.UserID, m.Topic, m.Difficulty, m.Score, m.CorrectAnswers, m.TotalQuestions, m.RecordedAt)
	if err != nil {
		return fmt.Errorf("failed to insert performance record: %w", err)
	}
	return nil
}

// ListByUser returns a user's entries oldest first.
func (r *sqlxPerformanceRepository) ListByUser(ctx context.Context, userID string) ([]domain.PerformanceEntry, error) {
	query := `SELECT ID, USER_ID, TOPIC, DIFFICULTY, SCORE, CORRECT_ANSWERS, TOTAL_QUESTIONS, RECORDED_AT
	          FROM performance_records
	          WHERE USER_ID = :1
	          ORDER BY RECORDED_AT ASC, ID ASC`

	var rows []models.PerformanceRecord
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list performance records: %w", err)
	}

	entries := make([]domain.PerformanceEntry, 0, len(rows))
	for i := range rows {
		entries = append(entries, toDomainPerformanceEntry(&rows[i]))
	}
	return entries, nil
}
