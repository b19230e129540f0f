package backend

import (
	"encoding/json"
	"strings"

	"ai-teacher/internal/domain"
)

type generateRequest struct {
	Topic            string `json:"topic"`
	Difficulty       string `json:"difficulty"`
	NumQuestions     int    `json:"num_questions"`
	TotalMarks       int    `json:"total_marks"`
	MarksPerQuestion int    `json:"marks_per_question"`
}

type wireQuestion struct {
	ID            int      `json:"id"`
	Question      string   `json:"question"`
	Type          string   `json:"type"`
	Marks         int      `json:"marks"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer *int     `json:"correct_answer,omitempty"`
}

func (q wireQuestion) toDomain() domain.Question {
	return domain.Question{
		ID:                 q.ID,
		Text:               q.Question,
		Kind:               domain.ParseQuestionKind(q.Type),
		Marks:              q.Marks,
		Options:            q.Options,
		CorrectAnswerIndex: q.CorrectAnswer,
	}
}

func fromDomain(q domain.Question) wireQuestion {
	return wireQuestion{
		ID:            q.ID,
		Question:      q.Text,
		Type:          string(q.Kind),
		Marks:         q.Marks,
		Options:       q.Options,
		CorrectAnswer: q.CorrectAnswerIndex,
	}
}

type generateResponse struct {
	QuizID     string         `json:"quiz_id"`
	Topic      string         `json:"topic"`
	Difficulty string         `json:"difficulty"`
	Questions  []wireQuestion `json:"questions"`
	TotalMarks int            `json:"total_marks"`
}

type evaluateRequest struct {
	QuizID           string            `json:"quiz_id"`
	Answers          map[string]string `json:"answers"`
	Questions        []wireQuestion    `json:"questions"`
	Topic            string            `json:"topic"`
	Difficulty       string            `json:"difficulty"`
	MarksPerQuestion int               `json:"marks_per_question"`
	UserID           string            `json:"user_id"`
	TimeTakenSeconds int               `json:"time_taken_seconds"`
}

type wireFeedback struct {
	QuestionID   json.Number `json:"question_id"`
	Correct      bool        `json:"correct"`
	MarksAwarded float64     `json:"marks_awarded"`
	MaxMarks     float64     `json:"max_marks"`
	Feedback     string      `json:"feedback"`
}

type evaluateResponse struct {
	QuizID         string         `json:"quiz_id"`
	Score          float64        `json:"score"`
	TotalQuestions int            `json:"total_questions"`
	CorrectAnswers int            `json:"correct_answers"`
	TotalMarks     float64        `json:"total_marks"`
	ObtainedMarks  float64        `json:"obtained_marks"`
	Feedback       []wireFeedback `json:"feedback"`
}

func (r evaluateResponse) toDomain() *domain.Evaluation {
	eval := &domain.Evaluation{
		QuizID:         r.QuizID,
		Score:          r.Score,
		CorrectAnswers: r.CorrectAnswers,
		TotalQuestions: r.TotalQuestions,
		TotalMarks:     r.TotalMarks,
		ObtainedMarks:  r.ObtainedMarks,
		Feedback:       make([]domain.QuestionFeedback, 0, len(r.Feedback)),
	}
	for _, f := range r.Feedback {
		id, _ := f.QuestionID.Int64()
		eval.Feedback = append(eval.Feedback, domain.QuestionFeedback{
			QuestionID:   int(id),
			Correct:      f.Correct,
			MarksAwarded: f.MarksAwarded,
			MaxMarks:     f.MaxMarks,
			Feedback:     f.Feedback,
		})
	}
	return eval
}

type signUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type explainRequest struct {
	TopicName string `json:"topic_name"`
}

type chatRequest struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

type authResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserID  string `json:"user_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Token   string `json:"token"`
	Error   string `json:"error"`
}

type errorBody struct {
	Detail  detail `json:"detail"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// detail is either a plain string or a list of validation errors with "msg" fields.
type detail struct {
	text string
}

func (d *detail) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		d.text = s
		return nil
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(b, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		d.text = strings.Join(msgs, "; ")
	}
	return nil
}

func (d detail) String() string { return d.text }
