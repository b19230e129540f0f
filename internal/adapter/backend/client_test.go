package backend

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"ai-teacher/internal/config"
	"ai-teacher/internal/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp/fasthttputil"
)

// newStubBackend serves app on an in-memory listener and returns a client wired to it.
func newStubBackend(t *testing.T, app *fiber.App) *Client {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() {
		_ = app.Shutdown()
		_ = ln.Close()
	})

	return NewClient(
		config.BackendConfig{BaseURL: "http://backend.test", Timeout: 2 * time.Second, UserID: "default"},
		WithDial(func(string) (net.Conn, error) { return ln.Dial() }),
	)
}

func newApp() *fiber.App {
	return fiber.New(fiber.Config{DisableStartupMessage: true})
}

func topicConfig() domain.QuizConfig {
	return domain.QuizConfig{
		Topic:            "Machine Learning",
		Difficulty:       domain.Beginner,
		RequiredCount:    2,
		TotalMarks:       4,
		MarksPerQuestion: 2,
	}
}

func TestClient_GeneratePool_Topic(t *testing.T) {
	app := newApp()
	var got generateRequest
	app.Post(pathGenerate, func(c *fiber.Ctx) error {
		if err := json.Unmarshal(c.Body(), &got); err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"quiz_id":    "remote-1",
			"topic":      "Machine Learning",
			"difficulty": "Beginner",
			"questions": []fiber.Map{
				{"id": 1, "question": "What is overfitting?", "type": "short_answer", "marks": 2},
				{"id": 2, "question": "Pick the optimizer", "type": "multiple_choice", "marks": 2,
					"options": []string{"SGD", "ReLU", "Dropout", "BatchNorm"}, "correct_answer": 0},
				{"id": 3, "question": "Explain", "marks": 2},
				{"id": 4, "question": "Gradients vanish?", "type": "true_false", "marks": 2},
			},
		})
	})
	client := newStubBackend(t, app)

	pool, err := client.GeneratePool(context.Background(), topicConfig())
	require.NoError(t, err)

	assert.Equal(t, generateRequest{
		Topic: "Machine Learning", Difficulty: "Beginner", NumQuestions: 4, TotalMarks: 4, MarksPerQuestion: 2,
	}, got)
	assert.Equal(t, "Machine Learning", pool.Topic)
	require.Len(t, pool.Questions, 4)
	assert.Equal(t, domain.MultipleChoice, pool.Questions[1].Kind)
	assert.Equal(t, 0, *pool.Questions[1].CorrectAnswerIndex)
	assert.Equal(t, domain.ShortAnswer, pool.Questions[2].Kind)
}

func TestClient_GeneratePool_PDF(t *testing.T) {
	app := newApp()
	app.Post(pathGenerateFromPDF, func(c *fiber.Ctx) error {
		fh, err := c.FormFile("pdf_file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		f, err := fh.Open()
		if err != nil {
			return err
		}
		defer f.Close()
		content, _ := io.ReadAll(f)
		if string(content) != "%PDF-1.4" || c.FormValue("num_questions") != "4" || c.FormValue("difficulty") != "Beginner" {
			return fiber.NewError(fiber.StatusBadRequest, "unexpected form")
		}
		return c.JSON(fiber.Map{"questions": []fiber.Map{{"id": 1, "question": "From the document", "type": "essay", "marks": 2}}})
	})
	client := newStubBackend(t, app)

	cfg := topicConfig()
	cfg.Topic = ""
	cfg.PDF = &domain.PDFSource{Filename: "notes.pdf", Content: []byte("%PDF-1.4")}

	pool, err := client.GeneratePool(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "PDF Document", pool.Topic)
	assert.Equal(t, domain.Essay, pool.Questions[0].Kind)
}

func TestClient_Non2xxIsTransportError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"detail string", fiber.StatusBadRequest, `{"detail":"Topic is not AI related"}`, "Topic is not AI related"},
		{"detail list", fiber.StatusUnprocessableEntity, `{"detail":[{"msg":"num_questions too large"}]}`, "num_questions too large"},
		{"message", fiber.StatusInternalServerError, `{"message":"LLM offline"}`, "LLM offline"},
		{"no json", fiber.StatusBadGateway, `upstream down`, "Backend error: 502 Bad Gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp()
			app.Post(pathGenerate, func(c *fiber.Ctx) error {
				return c.Status(tt.status).SendString(tt.body)
			})
			client := newStubBackend(t, app)

			_, err := client.GeneratePool(context.Background(), topicConfig())
			require.Error(t, err)
			assert.True(t, domain.IsCode(err, domain.CodeTransport))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestClient_Unreachable(t *testing.T) {
	ln := fasthttputil.NewInmemoryListener()
	require.NoError(t, ln.Close())
	client := NewClient(config.BackendConfig{BaseURL: "http://backend.test", Timeout: time.Second},
		WithDial(func(string) (net.Conn, error) { return ln.Dial() }))

	_, err := client.GeneratePool(context.Background(), topicConfig())
	assert.True(t, domain.IsCode(err, domain.CodeTransport))
}

func TestClient_CancelledContext(t *testing.T) {
	var calls int32
	app := newApp()
	app.Post(pathEvaluate, func(c *fiber.Ctx) error {
		atomic.AddInt32(&calls, 1)
		return c.JSON(fiber.Map{})
	})
	client := newStubBackend(t, app)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Evaluate(ctx, domain.EvaluationRequest{Quiz: &domain.Quiz{ID: "q"}})
	assert.True(t, domain.IsCode(err, domain.CodeTransport))
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestClient_Evaluate(t *testing.T) {
	app := newApp()
	var got evaluateRequest
	app.Post(pathEvaluate, func(c *fiber.Ctx) error {
		if err := json.Unmarshal(c.Body(), &got); err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"quiz_id": got.QuizID, "score": 50.0, "total_questions": 2, "correct_answers": 1,
			"total_marks": 4.0, "obtained_marks": 2.0,
			"feedback": []fiber.Map{
				{"question_id": 1, "correct": true, "marks_awarded": 2, "max_marks": 2, "feedback": "Good"},
				{"question_id": "2", "correct": false, "marks_awarded": 0, "max_marks": 2, "feedback": "No answer provided - 0 marks"},
			},
		})
	})
	client := newStubBackend(t, app)

	quiz := &domain.Quiz{
		ID: "01J0QUIZ", Topic: "NLP", Difficulty: domain.Intermediate, MarksPerQuestion: 2, TotalMarks: 4,
		Questions: []domain.Question{
			{ID: 1, Text: "Define tokenization", Kind: domain.ShortAnswer, Marks: 2},
			{ID: 2, Text: "Pick one", Kind: domain.MultipleChoice, Marks: 2, Options: []string{"a", "b"}},
		},
	}
	eval, err := client.Evaluate(context.Background(), domain.EvaluationRequest{
		Quiz:    quiz,
		Answers: map[int]string{1: "splitting text", 2: ""},
		Elapsed: 95 * time.Second,
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"1": "splitting text", "2": ""}, got.Answers)
	assert.Equal(t, "Intermediate", got.Difficulty)
	assert.Equal(t, "default", got.UserID)
	assert.Equal(t, 95, got.TimeTakenSeconds)
	assert.Len(t, got.Questions, 2)

	assert.Equal(t, "01J0QUIZ", eval.QuizID)
	assert.Equal(t, 50.0, eval.Score)
	assert.Equal(t, 1, eval.CorrectAnswers)
	require.Len(t, eval.Feedback, 2)
	assert.Equal(t, 2, eval.Feedback[1].QuestionID)
}

func TestClient_Auth(t *testing.T) {
	app := newApp()
	app.Post(pathSignIn, func(c *fiber.Ctx) error {
		var req signInRequest
		_ = json.Unmarshal(c.Body(), &req)
		if req.Password != "secret1" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Invalid email or password"})
		}
		return c.JSON(fiber.Map{"success": true, "message": "Signed in successfully", "user_id": "u1", "name": "Ada", "email": req.Email, "token": "backend-token"})
	})
	client := newStubBackend(t, app)
	ctx := context.Background()

	res, err := client.SignIn(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, domain.User{ID: "u1", Name: "Ada", Email: "ada@example.com"}, res.User)
	assert.Equal(t, "backend-token", res.Token)

	_, err = client.SignIn(ctx, "ada@example.com", "wrong")
	assert.True(t, domain.IsCode(err, domain.CodeUnauthorized))
	assert.EqualError(t, err, "Invalid email or password")
}

func TestClient_AuthErrorStatuses(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode domain.ErrorCode
		wantMsg  string
	}{
		{"duplicate email", fiber.StatusBadRequest, `{"detail":"Email already registered"}`, domain.CodeValidation, "Email already registered"},
		{"bad payload", fiber.StatusUnprocessableEntity, `{"detail":[{"msg":"field required"}]}`, domain.CodeValidation, "field required"},
		{"forbidden", fiber.StatusForbidden, `{"detail":"Account disabled"}`, domain.CodeUnauthorized, "Account disabled"},
		{"server error", fiber.StatusInternalServerError, `{"detail":"Error creating account: disk full"}`, domain.CodeTransport, "disk full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp()
			app.Post(pathSignUp, func(c *fiber.Ctx) error {
				return c.Status(tt.status).SendString(tt.body)
			})
			client := newStubBackend(t, app)

			_, err := client.SignUp(context.Background(), "Ada", "ada@example.com", "secret1")
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, domain.CodeOf(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestClient_ExplainTopic(t *testing.T) {
	app := newApp()
	var got explainRequest
	app.Post(pathExplainTopic, func(c *fiber.Ctx) error {
		if err := json.Unmarshal(c.Body(), &got); err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"topic":              "Neural Networks",
			"explanation":        "Layers of weighted units.",
			"youtube_links":      []fiber.Map{{"title": "Intro", "url": "https://youtube.com/watch?v=1"}},
			"website_references": []fiber.Map{{"title": "Wiki", "url": "https://en.wikipedia.org/wiki/Neural_network"}},
			"completeness_score": 0.8,
			"confidence_score":   0.9,
		})
	})
	client := newStubBackend(t, app)

	exp, err := client.ExplainTopic(context.Background(), "Neural Networks")
	require.NoError(t, err)
	assert.Equal(t, "Neural Networks", got.TopicName)
	assert.Equal(t, "Layers of weighted units.", exp.Explanation)
	require.Len(t, exp.YouTubeLinks, 1)
	assert.Equal(t, "Intro", exp.YouTubeLinks[0]["title"])
	assert.Equal(t, 0.9, exp.ConfidenceScore)
}

func TestClient_ExplainTopic_ServerError(t *testing.T) {
	app := newApp()
	app.Post(pathExplainTopic, func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "LLM unavailable"})
	})
	client := newStubBackend(t, app)

	_, err := client.ExplainTopic(context.Background(), "CNN")
	assert.True(t, domain.IsCode(err, domain.CodeTransport))
	assert.Contains(t, err.Error(), "LLM unavailable")
}

func TestClient_Chat(t *testing.T) {
	app := newApp()
	var got chatRequest
	app.Post(pathChatMessage, func(c *fiber.Ctx) error {
		if err := json.Unmarshal(c.Body(), &got); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "Backprop computes gradients.", "action": "general_response", "timestamp": "2024-05-01T10:00:00"})
	})
	client := newStubBackend(t, app)
	ctx := context.Background()

	reply, err := client.Chat(ctx, "u1", "What is backprop?")
	require.NoError(t, err)
	assert.Equal(t, chatRequest{Message: "What is backprop?", UserID: "u1"}, got)
	assert.Equal(t, "Backprop computes gradients.", reply.Message)
	assert.Equal(t, "general_response", reply.Action)

	_, err = client.Chat(ctx, "", "hi")
	require.NoError(t, err)
	assert.Equal(t, "default", got.UserID)
}

func TestClient_StudentStats(t *testing.T) {
	app := newApp()
	app.Get("/api/students/:id/stats", func(c *fiber.Ctx) error {
		switch c.Params("id") {
		case "user_7":
			return c.JSON(fiber.Map{
				"student":         fiber.Map{"student_id": "user_7", "name": "Ada"},
				"quiz_stats":      fiber.Map{"total_quizzes": 2, "avg_score": 75.0, "best_score": 90.0, "worst_score": 60.0, "total_questions_attempted": 10, "total_correct": 7},
				"progress":        []fiber.Map{{"topic": "NLP", "score": 7}},
				"recent_attempts": []fiber.Map{{"quiz_id": "q1"}},
			})
		case "offline":
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"detail": "Student database not configured"})
		}
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Student not found"})
	})
	client := newStubBackend(t, app)
	ctx := context.Background()

	stats, err := client.StudentStats(ctx, "user_7")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.QuizStats.TotalQuizzes)
	require.NotNil(t, stats.QuizStats.AvgScore)
	assert.Equal(t, 75.0, *stats.QuizStats.AvgScore)
	assert.Equal(t, "Ada", stats.Student["name"])
	assert.Len(t, stats.Progress, 1)

	_, err = client.StudentStats(ctx, "ghost")
	assert.True(t, domain.IsCode(err, domain.CodeNotFound))

	_, err = client.StudentStats(ctx, "offline")
	assert.True(t, domain.IsCode(err, domain.CodeTransport))
}
