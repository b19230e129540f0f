package domain

import (
	"strings"
	"time"
)

// PerformanceRecord is one historical quiz result. Append-only.
type PerformanceRecord struct {
	Timestamp  time.Time `json:"date"`
	Score      float64   `json:"score"`
	Topic      string    `json:"topic"`
	Difficulty string    `json:"difficulty"`
}

// PerformanceEntry is the persisted unit: a record plus the counts the summary needs.
type PerformanceEntry struct {
	Record         PerformanceRecord `json:"record"`
	CorrectAnswers int               `json:"correct_answers"`
	TotalQuestions int               `json:"total_questions"`
}

// PerformanceSummary is derived, never stored on its own.
type PerformanceSummary struct {
	TotalQuizzes           int     `json:"total_quizzes"`
	CorrectAnswersTotal    int     `json:"correct_answers"`
	AverageScorePercent    float64 `json:"average_score"`
	CurrentDifficultyLevel string  `json:"difficulty_level"`
	QuestionsPerQuiz       int     `json:"questions_per_quiz"`
}

// Performance owns a user's history and running summary.
type Performance struct {
	History []PerformanceRecord `json:"history"`
	Summary PerformanceSummary  `json:"summary"`
}

// NewPerformance starts an empty tracker at the Beginner level.
func NewPerformance() *Performance {
	return &Performance{
		History: []PerformanceRecord{},
		Summary: PerformanceSummary{CurrentDifficultyLevel: Beginner.Label()},
	}
}

// RestorePerformance replays stored entries in order.
func RestorePerformance(entries []PerformanceEntry) *Performance {
	p := NewPerformance()
	for _, e := range entries {
		p.apply(e)
	}
	return p
}

// Record appends the result of a completed quiz and recomputes the summary.
// The level follows the quiz's configured difficulty, not the achieved score.
func (p *Performance) Record(quiz *Quiz, eval *Evaluation, at time.Time) PerformanceEntry {
	entry := PerformanceEntry{
		Record: PerformanceRecord{
			Timestamp:  at.UTC(),
			Score:      eval.Score,
			Topic:      quiz.Topic,
			Difficulty: quiz.Difficulty.Label(),
		},
		CorrectAnswers: eval.CorrectAnswers,
		TotalQuestions: eval.TotalQuestions,
	}
	p.apply(entry)
	return entry
}

func (p *Performance) apply(e PerformanceEntry) {
	p.History = append(p.History, e.Record)

	s := &p.Summary
	s.TotalQuizzes++
	s.CorrectAnswersTotal += e.CorrectAnswers
	s.QuestionsPerQuiz = e.TotalQuestions
	if denom := s.TotalQuizzes * s.QuestionsPerQuiz; denom > 0 {
		s.AverageScorePercent = float64(s.CorrectAnswersTotal) / float64(denom) * 100
	} else {
		s.AverageScorePercent = 0
	}
	s.CurrentDifficultyLevel = NormalizeDifficultyLabel(e.Record.Difficulty)
}

// Snapshot returns a copy safe to hand to readers.
func (p *Performance) Snapshot() Performance {
	return Performance{
		History: append([]PerformanceRecord{}, p.History...),
		Summary: p.Summary,
	}
}

// NormalizeDifficultyLabel maps any casing to a display label; unknown values are Beginner.
func NormalizeDifficultyLabel(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "intermediate":
		return Intermediate.Label()
	case "advanced":
		return Advanced.Label()
	default:
		return Beginner.Label()
	}
}
