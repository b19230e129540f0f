// Package backend is the HTTP client for the remote AI Teacher service.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net"
	"net/url"
	"strconv"
	"time"

	"ai-teacher/internal/config"
	"ai-teacher/internal/domain"
	"ai-teacher/internal/logger"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const (
	pathGenerate        = "/api/quiz/generate"
	pathGenerateFromPDF = "/api/quiz/generate-from-pdf"
	pathEvaluate        = "/api/quiz/evaluate"
	pathSignUp          = "/api/auth/signup"
	pathSignIn          = "/api/auth/signin"
	pathExplainTopic    = "/api/topics/explain"
	pathChatMessage     = "/api/chat/message"
	pathStudentStats    = "/api/students/%s/stats"

	defaultPDFTopic = "PDF Document"
)

// Client talks JSON (and multipart for PDF uploads) to the backend.
// It implements the generation, evaluation, auth and learning ports of the domain package.
type Client struct {
	baseURL string
	timeout time.Duration
	userID  string
	http    *fasthttp.Client
}

// Option customises a Client.
type Option func(*Client)

// WithDial replaces the dialer, e.g. with an in-memory listener.
func WithDial(dial fasthttp.DialFunc) Option {
	return func(c *Client) { c.http.Dial = dial }
}

func NewClient(cfg config.BackendConfig, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	c := &Client{
		baseURL: cfg.BaseURL,
		timeout: timeout,
		userID:  cfg.UserID,
		http: &fasthttp.Client{
			Name:                "ai-teacher-gateway",
			MaxIdleConnDuration: 30 * time.Second,
			Dial: func(addr string) (net.Conn, error) {
				return fasthttp.DialTimeout(addr, timeout)
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var (
	_ domain.QuestionGenerator  = (*Client)(nil)
	_ domain.QuizEvaluator      = (*Client)(nil)
	_ domain.AuthBackend        = (*Client)(nil)
	_ domain.TopicExplainer     = (*Client)(nil)
	_ domain.ChatAgent          = (*Client)(nil)
	_ domain.StudentStatsReader = (*Client)(nil)
)

// GeneratePool requests cfg.PoolSize() questions by topic or from the uploaded PDF.
func (c *Client) GeneratePool(ctx context.Context, cfg domain.QuizConfig) (*domain.GeneratedPool, error) {
	var (
		body        []byte
		contentType string
		path        string
		err         error
	)
	if cfg.IsPDF() {
		path = pathGenerateFromPDF
		body, contentType, err = pdfForm(cfg)
		if err != nil {
			return nil, domain.NewInternalError("failed to build upload form", err)
		}
	} else {
		path = pathGenerate
		contentType = "application/json"
		body, err = json.Marshal(generateRequest{
			Topic:            cfg.Topic,
			Difficulty:       cfg.Difficulty.Label(),
			NumQuestions:     cfg.PoolSize(),
			TotalMarks:       cfg.TotalMarks,
			MarksPerQuestion: cfg.MarksPerQuestion,
		})
		if err != nil {
			return nil, domain.NewInternalError("failed to encode generate request", err)
		}
	}

	var out generateResponse
	if err := c.post(ctx, path, contentType, body, &out); err != nil {
		return nil, err
	}

	pool := &domain.GeneratedPool{Topic: out.Topic, Questions: make([]domain.Question, 0, len(out.Questions))}
	if pool.Topic == "" {
		if cfg.IsPDF() {
			pool.Topic = defaultPDFTopic
		} else {
			pool.Topic = cfg.Topic
		}
	}
	for _, q := range out.Questions {
		pool.Questions = append(pool.Questions, q.toDomain())
	}
	return pool, nil
}

func pdfForm(cfg domain.QuizConfig) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	name := cfg.PDF.Filename
	if name == "" {
		name = "document.pdf"
	}
	part, err := w.CreateFormFile("pdf_file", name)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(cfg.PDF.Content); err != nil {
		return nil, "", err
	}
	fields := [][2]string{
		{"difficulty", cfg.Difficulty.Label()},
		{"num_questions", strconv.Itoa(cfg.PoolSize())},
		{"total_marks", strconv.Itoa(cfg.TotalMarks)},
		{"marks_per_question", strconv.Itoa(cfg.MarksPerQuestion)},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// Evaluate submits every question with its answer. There is no retry.
func (c *Client) Evaluate(ctx context.Context, req domain.EvaluationRequest) (*domain.Evaluation, error) {
	quiz := req.Quiz
	userID := req.UserID
	if userID == "" {
		userID = c.userID
	}

	payload := evaluateRequest{
		QuizID:           quiz.ID,
		Answers:          make(map[string]string, len(quiz.Questions)),
		Questions:        make([]wireQuestion, 0, len(quiz.Questions)),
		Topic:            quiz.Topic,
		Difficulty:       quiz.Difficulty.Label(),
		MarksPerQuestion: quiz.MarksPerQuestion,
		UserID:           userID,
		TimeTakenSeconds: int(req.Elapsed.Seconds()),
	}
	for _, q := range quiz.Questions {
		payload.Answers[strconv.Itoa(q.ID)] = req.Answers[q.ID]
		payload.Questions = append(payload.Questions, fromDomain(q))
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, domain.NewInternalError("failed to encode evaluate request", err)
	}

	var out evaluateResponse
	if err := c.post(ctx, pathEvaluate, "application/json", body, &out); err != nil {
		return nil, err
	}
	eval := out.toDomain()
	if eval.QuizID == "" {
		eval.QuizID = quiz.ID
	}
	return eval, nil
}

func (c *Client) SignUp(ctx context.Context, name, email, password string) (*domain.AuthResult, error) {
	body, err := json.Marshal(signUpRequest{Name: name, Email: email, Password: password})
	if err != nil {
		return nil, domain.NewInternalError("failed to encode sign-up request", err)
	}
	return c.authenticate(ctx, pathSignUp, body, "Failed to create account")
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	body, err := json.Marshal(signInRequest{Email: email, Password: password})
	if err != nil {
		return nil, domain.NewInternalError("failed to encode sign-in request", err)
	}
	return c.authenticate(ctx, pathSignIn, body, "Failed to sign in")
}

func (c *Client) authenticate(ctx context.Context, path string, body []byte, fallbackMsg string) (*domain.AuthResult, error) {
	var out authResponse
	if err := c.post(ctx, path, "application/json", body, &out); err != nil {
		return nil, authError(err)
	}
	if !out.Success {
		msg := out.Error
		if msg == "" {
			msg = fallbackMsg
		}
		return nil, domain.NewUnauthorizedError(msg, nil)
	}
	return &domain.AuthResult{
		User:  domain.User{ID: out.UserID, Name: out.Name, Email: out.Email},
		Token: out.Token,
	}, nil
}

func (c *Client) ExplainTopic(ctx context.Context, topic string) (*domain.TopicExplanation, error) {
	body, err := json.Marshal(explainRequest{TopicName: topic})
	if err != nil {
		return nil, domain.NewInternalError("failed to encode explain request", err)
	}
	var out domain.TopicExplanation
	if err := c.post(ctx, pathExplainTopic, "application/json", body, &out); err != nil {
		return nil, err
	}
	if out.Topic == "" {
		out.Topic = topic
	}
	return &out, nil
}

// Chat sends message on behalf of userID; the backend keys its memory by that id.
func (c *Client) Chat(ctx context.Context, userID, message string) (*domain.ChatReply, error) {
	if userID == "" {
		userID = c.userID
	}
	body, err := json.Marshal(chatRequest{Message: message, UserID: userID})
	if err != nil {
		return nil, domain.NewInternalError("failed to encode chat request", err)
	}
	var out domain.ChatReply
	if err := c.post(ctx, pathChatMessage, "application/json", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StudentStats maps a 404 to NotFound. An unconfigured student database (503)
// stays a TransportError.
func (c *Client) StudentStats(ctx context.Context, studentID string) (*domain.StudentStats, error) {
	var out domain.StudentStats
	if err := c.get(ctx, fmt.Sprintf(pathStudentStats, url.PathEscape(studentID)), &out); err != nil {
		if statusOf(err) == fasthttp.StatusNotFound {
			return nil, domain.NewNotFoundError("Student not found").WithContext("student_id", studentID)
		}
		return nil, err
	}
	return &out, nil
}

// authError maps credential rejections to Unauthorized and bad input to
// Validation. 5xx and network failures stay TransportError.
func authError(err error) error {
	switch status := statusOf(err); status {
	case fasthttp.StatusUnauthorized, fasthttp.StatusForbidden:
		return domain.NewUnauthorizedError(err.Error(), nil).WithContext("status", status)
	case fasthttp.StatusBadRequest, fasthttp.StatusConflict, fasthttp.StatusUnprocessableEntity:
		return domain.NewValidationError(err.Error()).WithContext("status", status)
	}
	return err
}

// statusOf returns the backend HTTP status carried by err, or 0.
func statusOf(err error) int {
	var de *domain.DomainError
	if !errors.As(err, &de) {
		return 0
	}
	status, _ := de.Context["status"].(int)
	return status
}

// post sends body and decodes a 2xx JSON response into out.
func (c *Client) post(ctx context.Context, path, contentType string, body []byte, out interface{}) error {
	return c.do(ctx, fasthttp.MethodPost, path, contentType, body, out)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, fasthttp.MethodGet, path, "", nil, out)
}

// do performs one request. Transport failures and non-2xx statuses become
// TransportError; a non-2xx status is kept in the error context under "status".
func (c *Client) do(ctx context.Context, method, path, contentType string, body []byte, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return domain.NewTransportError("request cancelled", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	if contentType != "" {
		req.Header.SetContentType(contentType)
	}
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	if body != nil {
		req.SetBody(body)
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	l := logger.Get()
	start := time.Now()
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		l.Error("Backend request failed", zap.String("path", path), zap.Error(err))
		return domain.NewTransportError(fmt.Sprintf("backend unreachable: %s", path), err)
	}

	status := resp.StatusCode()
	l.Debug("Backend response",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.Duration("latency", time.Since(start)))

	if status < 200 || status >= 300 {
		msg := errorMessage(resp.Body())
		if msg == "" {
			msg = fmt.Sprintf("Backend error: %d %s", status, fasthttp.StatusMessage(status))
		}
		return domain.NewTransportError(msg, nil).WithContext("status", status)
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return domain.NewTransportError("malformed backend response", err)
	}
	return nil
}

// errorMessage picks detail, message or error from a JSON error body.
func errorMessage(body []byte) string {
	var e errorBody
	if err := json.Unmarshal(body, &e); err != nil {
		return ""
	}
	for _, s := range []string{e.Detail.String(), e.Message, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}
