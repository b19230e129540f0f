package dto

import (
	"ai-teacher/internal/domain"
	"ai-teacher/internal/export"
)

// GeneratePoolRequest represents the quiz configuration form.
// The same fields are accepted as multipart form values alongside a pdf_file.
// @Description Request body for generating a question pool
type GeneratePoolRequest struct {
	Topic            string `json:"topic" form:"topic"`
	Difficulty       string `json:"difficulty" form:"difficulty"`
	NumQuestions     int    `json:"num_questions" form:"num_questions"`
	TotalMarks       int    `json:"total_marks" form:"total_marks"`
	MarksPerQuestion int    `json:"marks_per_question" form:"marks_per_question"`
}

// AnswerItem is the response to one question: free text or a chosen option index.
type AnswerItem struct {
	QuestionID int    `json:"question_id"`
	Text       string `json:"text,omitempty"`
	Option     *int   `json:"option,omitempty"`
}

// SubmitQuizRequest carries the user's answers. Unanswered questions may be omitted.
// @Description Request body for submitting a quiz
type SubmitQuizRequest struct {
	Answers []AnswerItem `json:"answers"`
}

// ToDomain converts the request into answers keyed by question id.
func (r SubmitQuizRequest) ToDomain() map[int]domain.Answer {
	answers := make(map[int]domain.Answer, len(r.Answers))
	for _, a := range r.Answers {
		if a.Option != nil {
			answers[a.QuestionID] = domain.OptionAnswer(*a.Option)
			continue
		}
		answers[a.QuestionID] = domain.TextAnswer(a.Text)
	}
	return answers
}

// ExportResponse is the document handed to the PDF renderer.
// @Description Quiz export document
type ExportResponse struct {
	FileName string `json:"file_name"`
	export.Document
}

// ErrorResponse represents an error in the API response
type ErrorResponse struct {
	Error string `json:"error"`
}

// ExplainTopicRequest asks for a topic explanation.
type ExplainTopicRequest struct {
	TopicName string `json:"topic_name"`
}

// ChatMessageRequest is one user turn in the tutor chat.
type ChatMessageRequest struct {
	Message string `json:"message"`
}
