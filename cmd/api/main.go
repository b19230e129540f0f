// @title AI Teacher Gateway API
// @version 1.0
// @description Quiz workflow, performance tracking, tutoring and authentication gateway for the AI Teacher backend.
// @host localhost:8090
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"ai-teacher/internal/adapter"
	"ai-teacher/internal/adapter/backend"
	"ai-teacher/internal/adapter/quizgen"
	"ai-teacher/internal/cache"
	"ai-teacher/internal/config"
	"ai-teacher/internal/database"
	"ai-teacher/internal/domain"
	"ai-teacher/internal/handler"
	"ai-teacher/internal/logger"
	"ai-teacher/internal/middleware"
	"ai-teacher/internal/repository"
	"ai-teacher/internal/service"

	_ "ai-teacher/cmd/api/docs"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/tmc/langchaingo/llms/ollama"
	"go.uber.org/zap"
)

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)),
			zap.String("ip", c.IP()),
			zap.String("user_agent", c.Get("User-Agent")),
		)
		return err
	}
}

// questionSources picks the primary generator and the degraded-mode fallback.
func questionSources(cfg *config.Config, client *backend.Client) (domain.QuestionGenerator, domain.QuestionGenerator) {
	appLogger := logger.Get()

	var primary domain.QuestionGenerator = client
	if cfg.Generator.Source == "llm" {
		llm, err := ollama.New(
			ollama.WithServerURL(cfg.LLM.ServerURL),
			ollama.WithModel(cfg.LLM.Model),
			ollama.WithHTTPClient(&http.Client{Timeout: cfg.LLM.Timeout}),
		)
		if err != nil {
			appLogger.Fatal("Failed to create LLM client", zap.Error(err))
		}
		// PDF extraction stays with the backend.
		primary = quizgen.Router{Topic: quizgen.NewLLMGenerator(llm, cfg.LLM.Timeout), PDF: client}
		appLogger.Info("Using LLM question generator", zap.String("server_url", cfg.LLM.ServerURL), zap.String("model", cfg.LLM.Model))
	}

	var fallback domain.QuestionGenerator
	if cfg.Generator.Fallback {
		fallback = quizgen.NewLocalGenerator(time.Now().UnixNano())
	}
	return primary, fallback
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	ctx := context.Background()

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	cacheAdapter := adapter.NewRedisCacheAdapter(redisClient)
	appLogger.Info("Successfully connected to Redis", zap.String("address", cfg.Redis.Address))

	// Durable history lives in Oracle when configured; otherwise Redis is the store
	// and the read-through cache is skipped.
	var (
		perfRepo  domain.PerformanceRepository
		histCache domain.Cache
	)
	if cfg.DB.Enabled {
		db, err := database.NewSQLXOracleDB(ctx, cfg)
		if err != nil {
			appLogger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()
		perfRepo = repository.NewSQLXPerformanceRepository(db)
		histCache = cacheAdapter
	} else {
		perfRepo = repository.NewCachePerformanceStore(cacheAdapter)
		appLogger.Info("Database disabled, storing performance history in Redis")
	}

	backendClient := backend.NewClient(cfg.Backend)
	generator, fallback := questionSources(cfg, backendClient)

	authService, err := service.NewAuthService(backendClient, cacheAdapter, cfg)
	if err != nil {
		appLogger.Fatal("Failed to create AuthService", zap.Error(err))
	}
	performanceService := service.NewPerformanceService(perfRepo, histCache, cfg.CacheTTLs.History)
	quizService := service.NewQuizService(generator, fallback, backendClient, authService, performanceService)
	learningService := service.NewLearningService(backendClient, backendClient, backendClient, authService, cacheAdapter, cfg.CacheTTLs.Explanation)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
		BodyLimit:    cfg.Server.BodyLimit,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept,Authorization", MaxAge: 300}))
	app.Use(recover.New())

	app.Get("/swagger/*", swagger.HandlerDefault)

	handler.SetupRoutes(app, handler.Handlers{
		Auth:        handler.NewAuthHandler(authService, quizService),
		Quiz:        handler.NewQuizHandler(quizService),
		Performance: handler.NewPerformanceHandler(performanceService),
		Learning:    handler.NewLearningHandler(learningService),
		Health:      handler.NewHealthHandler(cacheAdapter),
	}, authService)

	go func() {
		appLogger.Info("Starting server",
			zap.Int("port", cfg.Server.Port),
			zap.String("backend", cfg.Backend.BaseURL),
			zap.String("generator", cfg.Generator.Source))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
