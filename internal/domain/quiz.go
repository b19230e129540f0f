package domain

import (
	"fmt"
	"strings"
	"time"
)

// MaxPoolSize is the largest num_questions the backend accepts in one generation call.
const MaxPoolSize = 50

// PoolMultiplier is how many candidates are generated per required question.
const PoolMultiplier = 2

// Difficulty is a quiz difficulty level.
type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
)

// ParseDifficulty accepts any casing of the three levels.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "beginner":
		return Beginner, nil
	case "intermediate":
		return Intermediate, nil
	case "advanced":
		return Advanced, nil
	default:
		return "", NewValidationError(fmt.Sprintf("invalid difficulty: %q", s))
	}
}

// Label returns the capitalised form used for display and performance records.
func (d Difficulty) Label() string {
	switch d {
	case Intermediate:
		return "Intermediate"
	case Advanced:
		return "Advanced"
	default:
		return "Beginner"
	}
}

// QuestionKind is the answer format of a question.
type QuestionKind string

const (
	MultipleChoice QuestionKind = "multiple_choice"
	TrueFalse      QuestionKind = "true_false"
	ShortAnswer    QuestionKind = "short_answer"
	Essay          QuestionKind = "essay"
)

// ParseQuestionKind maps backend type strings; anything unknown is a short answer.
func ParseQuestionKind(s string) QuestionKind {
	switch QuestionKind(strings.ToLower(strings.TrimSpace(s))) {
	case MultipleChoice:
		return MultipleChoice
	case TrueFalse:
		return TrueFalse
	case Essay:
		return Essay
	default:
		return ShortAnswer
	}
}

// IsChoice reports whether answers are picked from options.
func (k QuestionKind) IsChoice() bool {
	return k == MultipleChoice || k == TrueFalse
}

// Question is one candidate quiz item. Never mutated after generation.
type Question struct {
	ID                 int          `json:"id"`
	Text               string       `json:"question"`
	Kind               QuestionKind `json:"type"`
	Marks              int          `json:"marks"`
	Options            []string     `json:"options,omitempty"`
	CorrectAnswerIndex *int         `json:"correct_answer,omitempty"`
}

// Normalize fixes marks and drops choice-only fields from non-choice kinds.
func (q Question) Normalize(marksPerQuestion int) Question {
	q.Kind = ParseQuestionKind(string(q.Kind))
	q.Marks = marksPerQuestion
	if !q.Kind.IsChoice() {
		q.Options = nil
		q.CorrectAnswerIndex = nil
	} else if q.Options != nil {
		q.Options = append([]string(nil), q.Options...)
	}
	return q
}

// PDFSource is an uploaded document used instead of a topic.
type PDFSource struct {
	Filename string
	Content  []byte
}

// QuizConfig holds the parameters of one generation request.
type QuizConfig struct {
	Topic            string
	PDF              *PDFSource
	Difficulty       Difficulty
	RequiredCount    int
	TotalMarks       int
	MarksPerQuestion int
}

// PoolSize is the number of candidates requested from the generator.
func (c QuizConfig) PoolSize() int {
	return c.RequiredCount * PoolMultiplier
}

// IsPDF reports whether the quiz is generated from a document.
func (c QuizConfig) IsPDF() bool {
	return c.PDF != nil
}

// Validate checks the config before any generation call.
func (c QuizConfig) Validate() error {
	if c.RequiredCount < 1 {
		return NewValidationError("number of questions must be at least 1")
	}
	if c.MarksPerQuestion < 1 {
		return NewValidationError("marks per question must be at least 1")
	}
	if c.PoolSize() > MaxPoolSize {
		return NewValidationError(fmt.Sprintf("number of questions must be at most %d", MaxPoolSize/PoolMultiplier))
	}
	if calculated := c.MarksPerQuestion * c.RequiredCount; calculated != c.TotalMarks {
		return NewValidationError(fmt.Sprintf(
			"marks per question × number of questions must equal total marks: %d × %d = %d, entered %d",
			c.MarksPerQuestion, c.RequiredCount, calculated, c.TotalMarks)).
			WithContext("marks_per_question", c.MarksPerQuestion).
			WithContext("num_questions", c.RequiredCount).
			WithContext("calculated_total", calculated).
			WithContext("total_marks", c.TotalMarks)
	}
	if _, err := ParseDifficulty(string(c.Difficulty)); err != nil {
		return err
	}
	if c.IsPDF() {
		if len(c.PDF.Content) == 0 {
			return NewValidationError("Please upload a PDF file first")
		}
		return nil
	}
	if strings.TrimSpace(c.Topic) == "" {
		return NewValidationError("Please enter or select an AI topic")
	}
	return nil
}

var aiKeywords = []string{
	"ai", "artificial intelligence", "machine learning", "deep learning",
	"neural network", "nlp", "natural language", "computer vision",
	"reinforcement learning", "supervised", "unsupervised", "transformer",
	"cnn", "rnn", "lstm", "gan", "bert", "gpt", "generative",
}

// IsAITopic is an advisory check; the backend does the real validation.
func IsAITopic(topic string) bool {
	lower := strings.ToLower(topic)
	for _, kw := range aiKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Quiz is a finalized, immutable set of selected questions.
type Quiz struct {
	ID               string     `json:"id"`
	Topic            string     `json:"topic"`
	Difficulty       Difficulty `json:"difficulty"`
	Questions        []Question `json:"questions"`
	TotalMarks       int        `json:"total_marks"`
	MarksPerQuestion int        `json:"marks_per_question"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Answer is a free-text response or a chosen option index.
type Answer struct {
	Text   string
	Option *int
}

// TextAnswer builds a free-text answer.
func TextAnswer(s string) Answer { return Answer{Text: s} }

// OptionAnswer builds an option-index answer.
func OptionAnswer(i int) Answer { return Answer{Option: &i} }

// Value is the string sent to the evaluator.
func (a Answer) Value() string {
	if a.Option != nil {
		return fmt.Sprintf("%d", *a.Option)
	}
	return strings.TrimSpace(a.Text)
}

// QuestionFeedback is the evaluator's verdict on one question.
type QuestionFeedback struct {
	QuestionID   int     `json:"question_id,omitempty"`
	Correct      bool    `json:"correct"`
	MarksAwarded float64 `json:"marks_awarded"`
	MaxMarks     float64 `json:"max_marks"`
	Feedback     string  `json:"feedback"`
}

// Evaluation is the result of scoring a submitted quiz.
type Evaluation struct {
	QuizID         string             `json:"quiz_id"`
	Score          float64            `json:"score"`
	CorrectAnswers int                `json:"correct_answers"`
	TotalQuestions int                `json:"total_questions"`
	TotalMarks     float64            `json:"total_marks"`
	ObtainedMarks  float64            `json:"obtained_marks"`
	Feedback       []QuestionFeedback `json:"feedback"`
}
