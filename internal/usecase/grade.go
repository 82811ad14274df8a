package usecase

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fairyhunter13/ai-answer-grader/internal/adapter/observability"
	"github.com/fairyhunter13/ai-answer-grader/internal/domain"
	"github.com/fairyhunter13/ai-answer-grader/pkg/textx"
)

const (
	gradeMaxTokens   = 600
	answerTextBudget = 4000
)

// GradeService asks the judge model to score one answer against its key.
// Grade never returns an error: every failure mode degrades to a zero score
// with diagnostic feedback so one bad question cannot abort a submission.
type GradeService struct {
	AI domain.AIClient
}

// NewGradeService constructs a GradeService.
func NewGradeService(ai domain.AIClient) GradeService { return GradeService{AI: ai} }

func buildGradeSystemPrompt() string {
	return strings.TrimSpace(`You are an AI assistant for grading student answers.
Carefully compare the 'Answer Key' with the 'Student Answer' for the given question.
Consider the 'Similarity Score' as a guide, but make your judgment primarily based on semantic understanding.
Assign a 'score' based on the correctness and completeness of the student's answer.
Provide concise 'feedback' explaining why the score was given, highlighting correct parts or missing information.
The response must be a perfectly valid JSON object with "score" (integer) and "feedback" (string) fields.
Do not include any additional text or explanations outside the JSON object.

Return JSON:
{
    "score": int,
    "feedback": string
}`)
}

func buildGradeUserPrompt(q domain.Question, studentAnswer string, similarity float64) string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "Assign a 'score' out of %d marks.\n\n", q.Marks)
	fmt.Fprintf(b, "Question: %s\n", q.Text)
	fmt.Fprintf(b, "Answer Key: %s\n", textx.Truncate(q.AnswerKey, answerTextBudget))
	fmt.Fprintf(b, "Student Answer: %s\n", textx.Truncate(studentAnswer, answerTextBudget))
	fmt.Fprintf(b, "Similarity Score (Cosine Similarity): %.2f\n", similarity)
	b.WriteString("\nReturn JSON only.")
	return b.String()
}

type gradeVerdict struct {
	Score    *int    `json:"score"`
	Feedback *string `json:"feedback"`
}

// Grade runs one judge call. API failures and malformed responses fall back
// immediately (no retry); out-of-range scores are clamped and counted.
func (s GradeService) Grade(ctx domain.Context, q domain.Question, studentAnswer string, similarity float64) (int, string) {
	content, err := s.AI.ChatJSON(ctx, buildGradeSystemPrompt(), buildGradeUserPrompt(q, studentAnswer, similarity), gradeMaxTokens)
	if err != nil {
		observability.GradingFallbackTotal.WithLabelValues("api_error").Inc()
		slog.Error("judge call failed", slog.Int("question_id", q.ID), slog.Any("error", err))
		return 0, fmt.Sprintf("Grading unavailable for this question: %v", err)
	}
	verdict, err := parseGradeVerdict(content)
	if err != nil {
		observability.GradingFallbackTotal.WithLabelValues("malformed_output").Inc()
		slog.Error("judge returned malformed output",
			slog.Int("question_id", q.ID),
			slog.String("content", textx.Truncate(content, 400)),
			slog.Any("error", err))
		return 0, "Grading failed: the judge returned a malformed response."
	}
	score := *verdict.Score
	if score < 0 || score > q.Marks {
		observability.GradingScoreOutOfRangeTotal.Inc()
		slog.Warn("judge score out of range, clamping",
			slog.Int("question_id", q.ID), slog.Int("score", score), slog.Int("marks", q.Marks))
		if score < 0 {
			score = 0
		} else {
			score = q.Marks
		}
	}
	return score, *verdict.Feedback
}

// parseGradeVerdict is strict by contract: the response must be JSON with an
// integer score and a string feedback. The first failure is terminal for this
// grading attempt.
func parseGradeVerdict(content string) (gradeVerdict, error) {
	var v gradeVerdict
	if err := json.Unmarshal([]byte(content), &v); err != nil {
		return gradeVerdict{}, fmt.Errorf("%w: %v", domain.ErrMalformedLLMOutput, err)
	}
	if v.Score == nil || v.Feedback == nil {
		return gradeVerdict{}, fmt.Errorf("%w: missing score or feedback", domain.ErrMalformedLLMOutput)
	}
	return v, nil
}
