package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-answer-grader/internal/config"
	"github.com/fairyhunter13/ai-answer-grader/internal/domain"
)

func TestAICheck(t *testing.T) {
	t.Parallel()

	aiCheck, _ := BuildReadinessChecks(config.Config{UseMockAI: true})
	assert.NoError(t, aiCheck(context.Background()))

	aiCheck, _ = BuildReadinessChecks(config.Config{GroqAPIKey: "g", OpenAIAPIKey: "o"})
	assert.NoError(t, aiCheck(context.Background()))

	aiCheck, _ = BuildReadinessChecks(config.Config{OpenAIAPIKey: "o"})
	assert.ErrorIs(t, aiCheck(context.Background()), domain.ErrMissingCredential)

	aiCheck, _ = BuildReadinessChecks(config.Config{GroqAPIKey: "g"})
	assert.ErrorIs(t, aiCheck(context.Background()), domain.ErrMissingCredential)
}

func TestTikaCheck(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/version", r.URL.Path)
		_, _ = w.Write([]byte("Apache Tika 2.9.0"))
	}))
	defer srv.Close()

	_, tikaCheck := BuildReadinessChecks(config.Config{TikaURL: srv.URL})
	assert.NoError(t, tikaCheck(context.Background()))

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	_, tikaCheck = BuildReadinessChecks(config.Config{TikaURL: bad.URL})
	assert.Error(t, tikaCheck(context.Background()))

	_, tikaCheck = BuildReadinessChecks(config.Config{})
	assert.Error(t, tikaCheck(context.Background()))
}
