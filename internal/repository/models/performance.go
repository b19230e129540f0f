package models

import (
	"database/sql"
	"time"
)

// PerformanceRecord is one row of performance_records.
type PerformanceRecord struct {
	ID             string         `db:"ID"` // ULID
	UserID         string         `db:"USER_ID"`
	Topic          sql.NullString `db:"TOPIC"`
	Difficulty     sql.NullString `db:"DIFFICULTY"`
	Score          float64        `db:"SCORE"`
	CorrectAnswers int            `db:"CORRECT_ANSWERS"`
	TotalQuestions int            `db:"TOTAL_QUESTIONS"`
	RecordedAt     time.Time      `db:"RECORDED_AT"`
}

func (PerformanceRecord) TableName() string {
	return "performance_records"
}
