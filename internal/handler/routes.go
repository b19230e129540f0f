package handler

import (
	"ai-teacher/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// Handlers groups everything SetupRoutes mounts.
type Handlers struct {
	Auth        *AuthHandler
	Quiz        *QuizHandler
	Performance *PerformanceHandler
	Learning    *LearningHandler
	Health      *HealthHandler
}

// SetupRoutes mounts the gateway API under /api.
func SetupRoutes(app *fiber.App, h Handlers, tokens middleware.TokenValidator) {
	validator := middleware.NewValidationMiddleware()
	protected := middleware.Protected(tokens)

	api := app.Group("/api")
	api.Get("/health", h.Health.Health)

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/signup", h.Auth.SignUp)
	authGroup.Post("/signin", h.Auth.SignIn)
	authGroup.Post("/signout", protected, h.Auth.SignOut)
	authGroup.Get("/me", protected, h.Auth.Me)

	// Quiz workflow routes (all protected)
	quizGroup := api.Group("/quiz", protected)
	quizGroup.Post("/pool", h.Quiz.GeneratePool)
	quizGroup.Post("/selection/:questionId", validator.ValidateQuestionID(), h.Quiz.ToggleSelect)
	quizGroup.Post("/finalize", h.Quiz.Finalize)
	quizGroup.Post("/submit", h.Quiz.Submit)
	quizGroup.Get("/session", h.Quiz.Session)
	quizGroup.Get("/export", h.Quiz.Export)

	// Performance routes (all protected)
	perfGroup := api.Group("/performance", protected)
	perfGroup.Get("/", h.Performance.GetPerformance)
	perfGroup.Get("/chart", validator.ValidateChartSize(), h.Performance.GetChart)
	perfGroup.Get("/difficulty", h.Performance.GetDistribution)

	// Learning routes (all protected)
	api.Post("/topics/explain", protected, h.Learning.ExplainTopic)
	api.Post("/chat/message", protected, h.Learning.Chat)
	api.Get("/students/me/stats", protected, h.Learning.Stats)
}
