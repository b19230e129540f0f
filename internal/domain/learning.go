package domain

import "strings"

// TopicExplanation is the agent's write-up of one topic with its references.
type TopicExplanation struct {
	Topic             string              `json:"topic"`
	Explanation       string              `json:"explanation"`
	YouTubeLinks      []map[string]string `json:"youtube_links"`
	WebsiteReferences []map[string]string `json:"website_references"`
	CompletenessScore float64             `json:"completeness_score"`
	ConfidenceScore   float64             `json:"confidence_score"`
}

// ChatReply is one agent answer in a conversation.
type ChatReply struct {
	Message   string `json:"message"`
	Action    string `json:"action"`
	Timestamp string `json:"timestamp,omitempty"`
}

// QuizStats aggregates a student's attempts. Aggregates are nil with no attempts.
type QuizStats struct {
	TotalQuizzes            int      `json:"total_quizzes"`
	AvgScore                *float64 `json:"avg_score"`
	BestScore               *float64 `json:"best_score"`
	WorstScore              *float64 `json:"worst_score"`
	TotalQuestionsAttempted *int     `json:"total_questions_attempted"`
	TotalCorrect            *int     `json:"total_correct"`
}

// StudentStats is the backend's per-student progress report. Rows other than
// the aggregate are passed through as returned.
type StudentStats struct {
	Student        map[string]interface{}   `json:"student"`
	QuizStats      QuizStats                `json:"quiz_stats"`
	Progress       []map[string]interface{} `json:"progress"`
	RecentAttempts []map[string]interface{} `json:"recent_attempts"`
}

// NormalizeTopic trims and collapses inner whitespace.
func NormalizeTopic(topic string) string {
	return strings.Join(strings.Fields(topic), " ")
}
