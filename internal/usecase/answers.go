package usecase

import (
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/fairyhunter13/ai-answer-grader/internal/domain"
	"github.com/fairyhunter13/ai-answer-grader/pkg/textx"
)

const (
	// answerNotFoundMarker is the literal the extraction model is told to
	// return when no answer span is identifiable.
	answerNotFoundMarker = "Answer not found"
	// extractionErrorText surfaces in reports when the extraction call itself failed.
	extractionErrorText = "Answer extraction failed"

	answerMaxTokens      = 500
	submissionTextBudget = 12000
)

// AnswerService extracts per-question answer spans from a student submission.
type AnswerService struct {
	AI domain.AIClient
	// MaxConcurrency bounds the fan-out of per-question LLM calls.
	MaxConcurrency int
}

// NewAnswerService constructs an AnswerService.
func NewAnswerService(ai domain.AIClient, maxConcurrency int) AnswerService {
	return AnswerService{AI: ai, MaxConcurrency: maxConcurrency}
}

func buildExtractSystemPrompt() string {
	return strings.TrimSpace(`Given the following student's submission and a specific question, extract the student's answer corresponding to that question.
Only return the extracted answer text, without any additional comments or formatting.
If the answer is not clearly present or identifiable, state "Answer not found".`)
}

func buildExtractUserPrompt(q domain.Question, submissionText string) string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "Question ID: %d\n", q.ID)
	fmt.Fprintf(b, "Question Text: %s\n\n", q.Text)
	b.WriteString("Student Submission:\n---\n")
	b.WriteString(textx.Truncate(submissionText, submissionTextBudget))
	b.WriteString("\n---\n\nExtracted Student Answer:")
	return b.String()
}

// ExtractAnswers runs one extraction call per question with bounded
// concurrency. Failures are isolated per question: the returned map always
// has exactly one entry per input question, tagged with its outcome.
func (s AnswerService) ExtractAnswers(ctx domain.Context, submissionText string, questions []domain.Question) map[int]domain.AnswerEntry {
	entries := make([]domain.AnswerEntry, len(questions))
	g := new(errgroup.Group)
	limit := s.MaxConcurrency
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)
	for i, q := range questions {
		g.Go(func() error {
			entries[i] = s.extractOne(ctx, submissionText, q)
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[int]domain.AnswerEntry, len(questions))
	for i, q := range questions {
		out[q.ID] = entries[i]
	}
	return out
}

func (s AnswerService) extractOne(ctx domain.Context, submissionText string, q domain.Question) domain.AnswerEntry {
	text, err := s.AI.ChatText(ctx, buildExtractSystemPrompt(), buildExtractUserPrompt(q, submissionText), answerMaxTokens)
	if err != nil {
		slog.Error("answer extraction failed", slog.Int("question_id", q.ID), slog.Any("error", err))
		return domain.AnswerEntry{Text: extractionErrorText, Status: domain.AnswerExtractionError}
	}
	text = strings.TrimSpace(text)
	if text == "" || isNotFoundResponse(text) {
		return domain.AnswerEntry{Text: answerNotFoundMarker, Status: domain.AnswerNotFound}
	}
	return domain.AnswerEntry{Text: text, Status: domain.AnswerFound}
}

// isNotFoundResponse matches the "Answer not found" marker leniently: models
// occasionally quote or punctuate it.
func isNotFoundResponse(text string) bool {
	t := strings.ToLower(strings.Trim(text, ` "'.`))
	return t == strings.ToLower(answerNotFoundMarker)
}
