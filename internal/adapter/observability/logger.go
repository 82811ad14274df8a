package observability

import (
	"log/slog"
	"os"

	"github.com/fairyhunter13/ai-answer-grader/internal/config"
)

// SetupLogger builds the process-wide JSON logger. Dev runs at debug so
// prompt and parsing issues are visible while iterating; everything else
// stays at info. Service and environment fields ride on every record.
func SetupLogger(cfg config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.IsDev() {
		level = slog.LevelDebug
	}
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(h).With(
		slog.String("service", cfg.OTELServiceName),
		slog.String("env", cfg.AppEnv),
	)
}
