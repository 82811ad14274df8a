package usecase

import (
	"fmt"
	"math"
	"strings"

	"github.com/fairyhunter13/ai-answer-grader/internal/domain"
)

// SimilarityService computes the cosine similarity between an answer key and
// a student answer from their embeddings. It is an advisory signal only:
// callers downgrade any failure to 0.0 instead of aborting.
//
// The service is an injected resource owned by process wiring, never a
// package-level singleton, so tests can substitute a fake scorer.
type SimilarityService struct {
	ai domain.AIClient
}

// NewSimilarityService constructs a SimilarityService, or nil when no
// embedding backend is configured.
func NewSimilarityService(ai domain.AIClient) *SimilarityService {
	if ai == nil {
		return nil
	}
	return &SimilarityService{ai: ai}
}

// Ready reports whether the embedding backend is usable. A nil receiver means
// the backend never became available; callers treat that as fatal for the
// whole evaluation.
func (s *SimilarityService) Ready() error {
	if s == nil || s.ai == nil {
		return domain.ErrScoringUnavailable
	}
	return nil
}

// Score embeds both texts in one call and returns their cosine similarity.
// Preconditions (non-empty key and answer) are the caller's job; degenerate
// input here returns an error the caller downgrades to 0.0.
func (s *SimilarityService) Score(ctx domain.Context, key, answer string) (float64, error) {
	if err := s.Ready(); err != nil {
		return 0, err
	}
	if strings.TrimSpace(key) == "" || strings.TrimSpace(answer) == "" {
		return 0, fmt.Errorf("%w: empty text for similarity", domain.ErrInvalidArgument)
	}
	vecs, err := s.ai.Embed(ctx, []string{key, answer})
	if err != nil {
		return 0, fmt.Errorf("embed: %w", err)
	}
	if len(vecs) != 2 {
		return 0, fmt.Errorf("embed: want 2 vectors, got %d", len(vecs))
	}
	return cosine(vecs[0], vecs[1]), nil
}

// cosine returns the cosine similarity of two vectors, 0 for degenerate input.
func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
