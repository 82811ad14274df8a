// Command server starts the AI answer grader HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	ai "github.com/fairyhunter13/ai-answer-grader/internal/adapter/ai"
	"github.com/fairyhunter13/ai-answer-grader/internal/adapter/ai/real"
	httpserver "github.com/fairyhunter13/ai-answer-grader/internal/adapter/httpserver"
	"github.com/fairyhunter13/ai-answer-grader/internal/adapter/observability"
	tikaext "github.com/fairyhunter13/ai-answer-grader/internal/adapter/textextractor/tika"
	"github.com/fairyhunter13/ai-answer-grader/internal/app"
	"github.com/fairyhunter13/ai-answer-grader/internal/config"
	"github.com/fairyhunter13/ai-answer-grader/internal/domain"
	"github.com/fairyhunter13/ai-answer-grader/internal/usecase"
)

func main() {
	// Local development convenience; missing .env is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	// AI client: deterministic mock for local development, real providers
	// otherwise. The chat credential is mandatory; without it every request
	// would fail, so refuse to start.
	var aicl domain.AIClient
	if cfg.UseMockAI {
		slog.Warn("using mock AI client; responses are deterministic fakes")
		aicl = ai.NewMockClient()
	} else {
		if cfg.GroqAPIKey == "" {
			slog.Error("startup credential check failed",
				slog.Any("error", fmt.Errorf("%w: GROQ_API_KEY not set", domain.ErrMissingCredential)))
			os.Exit(1)
		}
		if cfg.OpenAIAPIKey == "" {
			slog.Warn("OPENAI_API_KEY not set; similarity scoring will be unavailable")
		}
		aicl = real.New(cfg)
	}
	// Embedding cache wrapper (safe for accuracy; caches embeddings only)
	aicl = ai.NewEmbedCache(aicl, cfg.EmbedCacheSize)

	// External text extractor (Apache Tika)
	ext := tikaext.New(cfg.TikaURL)

	// Usecases
	questionSvc := usecase.NewQuestionService(aicl)
	answerSvc := usecase.NewAnswerService(aicl, cfg.ExtractConcurrency)
	var simSvc *usecase.SimilarityService
	if cfg.UseMockAI || cfg.OpenAIAPIKey != "" {
		simSvc = usecase.NewSimilarityService(aicl)
	}
	gradeSvc := usecase.NewGradeService(aicl)
	evalSvc := usecase.NewEvaluateService(answerSvc, simSvc, gradeSvc, cfg.GradeConcurrency)

	// Readiness checks
	aiCheck, tikaCheck := app.BuildReadinessChecks(cfg)

	// HTTP server
	srv := httpserver.NewServer(cfg, questionSvc, evalSvc, ext, aiCheck, tikaCheck)
	handler := app.BuildRouter(cfg, srv)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}
