package domain

// SessionState is the quiz workflow state of one user session.
type SessionState string

const (
	StateIdle          SessionState = "idle"
	StatePoolGenerated SessionState = "pool_generated"
	StateSelecting     SessionState = "selecting"
	StateQuizReady     SessionState = "quiz_ready"
	StateSubmitted     SessionState = "submitted"
)

// SessionSnapshot is a read-only copy of a session for rendering.
type SessionSnapshot struct {
	State            SessionState `json:"state"`
	Generating       bool         `json:"generating"`
	Submitting       bool         `json:"submitting"`
	UsedFallback     bool         `json:"used_fallback"`
	TopicWarning     string       `json:"topic_warning,omitempty"`
	Topic            string       `json:"topic,omitempty"`
	Difficulty       string       `json:"difficulty,omitempty"`
	RequiredCount    int          `json:"required_count"`
	TotalMarks       int          `json:"total_marks"`
	MarksPerQuestion int          `json:"marks_per_question"`
	Pool             []Question   `json:"pool"`
	Selection        []int        `json:"selection"`
	Quiz             *Quiz        `json:"quiz,omitempty"`
	Result           *Evaluation  `json:"result,omitempty"`
}
