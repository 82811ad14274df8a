package ai

import (
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/fairyhunter13/ai-answer-grader/internal/domain"
)

// MockClient implements domain.AIClient deterministically for offline/mock mode.
// It recognizes the service's own prompt templates and fabricates plausible
// responses without any network access.
type MockClient struct{}

// NewMockClient constructs a deterministic mock AI client.
func NewMockClient() domain.AIClient { return &MockClient{} }

// Embed returns a deterministic vector of size 1536 for each input text.
func (m *MockClient) Embed(_ domain.Context, texts []string) ([][]float32, error) {
	const dims = 1536
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = embedDeterministic(t, dims)
	}
	return out, nil
}

// ChatJSON fabricates either a question set or a grading verdict depending on
// which prompt template produced the user prompt.
func (m *MockClient) ChatJSON(_ domain.Context, _ string, userPrompt string, _ int) (string, error) {
	if strings.Contains(userPrompt, "Answer Key:") {
		return m.mockGrade(userPrompt)
	}
	return m.mockQuestionSet(userPrompt)
}

// ChatText fabricates an extracted answer span from the submission segment of
// the prompt.
func (m *MockClient) ChatText(_ domain.Context, _ string, userPrompt string, _ int) (string, error) {
	sub := segment(userPrompt, "Student Submission:\n---", "---")
	if strings.TrimSpace(sub) == "" {
		return "Answer not found", nil
	}
	parts := strings.Fields(sub)
	if len(parts) > 40 {
		parts = parts[:40]
	}
	return strings.Join(parts, " "), nil
}

func (m *MockClient) mockQuestionSet(userPrompt string) (string, error) {
	paper := segment(userPrompt, "Question paper text:\n---", "---")
	if strings.TrimSpace(paper) == "" {
		paper = userPrompt
	}
	// Two fabricated questions seeded by the paper text keep parsing flows
	// exercisable end to end.
	qs := domain.QuestionSet{
		TotalMarks: 10,
		Questions: []domain.Question{
			{ID: 1, Text: "Summarize: " + topWords(paper, 5), AnswerKey: topWords(paper, 12), Marks: 5},
			{ID: 2, Text: "Explain: " + topWords(reverseWords(paper), 5), AnswerKey: topWords(reverseWords(paper), 12), Marks: 5},
		},
	}
	b, err := json.Marshal(qs)
	if err != nil {
		return "", fmt.Errorf("mock marshal: %w", err)
	}
	return string(b), nil
}

func (m *MockClient) mockGrade(userPrompt string) (string, error) {
	outOf := 10
	if i := strings.Index(userPrompt, "out of "); i >= 0 {
		rest := userPrompt[i+len("out of "):]
		if j := strings.IndexByte(rest, ' '); j > 0 {
			if n, err := strconv.Atoi(rest[:j]); err == nil && n >= 0 {
				outOf = n
			}
		}
	}
	sim := 0.0
	if v := segment(userPrompt, "Similarity Score (Cosine Similarity):", "\n"); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			sim = f
		}
	}
	score := int(math.Round(sim * float64(outOf)))
	if score < 0 {
		score = 0
	}
	if score > outOf {
		score = outOf
	}
	payload := map[string]any{
		"score":    score,
		"feedback": fmt.Sprintf("Mock grading: similarity %.2f of max %d marks.", sim, outOf),
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("mock marshal: %w", err)
	}
	return string(b), nil
}

func embedDeterministic(s string, dims int) []float32 {
	// Simple LCG seeded by sha1(s)
	h := sha1.Sum([]byte(strings.TrimSpace(s)))
	x := binary.BigEndian.Uint32(h[:4])
	const a = 1664525
	const c = 1013904223
	vec := make([]float32, dims)
	for i := 0; i < dims; i++ {
		x = uint32(uint64(a)*uint64(x) + uint64(c))
		v := float32(x) / float32(^uint32(0))
		vec[i] = 2*v - 1
	}
	return vec
}

func segment(s, startMarker, nextMarker string) string {
	i := strings.Index(s, startMarker)
	if i == -1 {
		return ""
	}
	s2 := s[i+len(startMarker):]
	j := strings.Index(s2, nextMarker)
	if j == -1 {
		return strings.TrimSpace(s2)
	}
	return strings.TrimSpace(s2[:j])
}

func topWords(s string, n int) string {
	parts := strings.Fields(s)
	if len(parts) > n {
		parts = parts[:n]
	}
	return strings.Join(parts, " ")
}

func reverseWords(s string) string {
	parts := strings.Fields(s)
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, " ")
}
