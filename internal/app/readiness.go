package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fairyhunter13/ai-answer-grader/internal/config"
	"github.com/fairyhunter13/ai-answer-grader/internal/domain"
)

// BuildReadinessChecks returns two readiness checks: ai and tika.
//
// The AI check is configuration-level only: it verifies the credentials the
// handlers will need, without spending tokens on a probe call.
func BuildReadinessChecks(cfg config.Config) (
	func(ctx context.Context) error,
	func(ctx context.Context) error,
) {
	aiCheck := func(_ context.Context) error {
		if cfg.UseMockAI {
			return nil
		}
		if cfg.GroqAPIKey == "" {
			return fmt.Errorf("%w: GROQ_API_KEY not set", domain.ErrMissingCredential)
		}
		if cfg.OpenAIAPIKey == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY not set", domain.ErrMissingCredential)
		}
		return nil
	}
	tikaCheck := func(ctx context.Context) error {
		if cfg.TikaURL == "" {
			return fmt.Errorf("tika url not configured")
		}
		client := &http.Client{Timeout: 2 * time.Second}
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, cfg.TikaURL+"/version", nil)
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		return fmt.Errorf("tika status %d", resp.StatusCode)
	}
	return aiCheck, tikaCheck
}
