// Package usecase contains application business logic services: question
// parsing, answer extraction, similarity scoring, grading, and the
// evaluation orchestrator that sequences them.
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

// paperTextBudget caps how much extracted paper text goes into one prompt.
const paperTextBudget = 12000

// QuestionService turns raw question-paper text into a structured question set.
type QuestionService struct {
	AI domain.AIClient
}

// NewQuestionService constructs a QuestionService.
func NewQuestionService(ai domain.AIClient) QuestionService { return QuestionService{AI: ai} }

func buildParseSystemPrompt() string {
	return strings.TrimSpace(`You are an expert in parsing question papers.
Extract all questions from the provided question paper text, along with their answer keys and allocated marks.
Ensure that the output is a perfectly valid JSON object conforming to the specified schema.
Do not include any additional text, explanations, or formatting outside the JSON object.

JSON Schema:
{
  "total_marks": int,
  "questions": [
    {
      "question_id": int,
      "question_text": string,
      "answer_key": string,
      "marks": int
    }
  ]
}`)
}

func buildParseUserPrompt(paperText string) string {
	b := &strings.Builder{}
	b.WriteString("Question paper text:\n---\n")
	b.WriteString(textx.Truncate(paperText, paperTextBudget))
	b.WriteString("\n---\nReturn JSON only.")
	return b.String()
}

// ExtractQuestions makes a single JSON-mode LLM call and decodes the result
// with a bounded fallback. Empty input fails fast without touching the LLM.
func (s QuestionService) ExtractQuestions(ctx domain.Context, paperText string) (domain.QuestionSet, error) {
	if strings.TrimSpace(paperText) == "" {
		return domain.QuestionSet{}, fmt.Errorf("%w: question paper text", domain.ErrEmptyDocument)
	}
	content, err := s.AI.ChatJSON(ctx, buildParseSystemPrompt(), buildParseUserPrompt(paperText), 0)
	if err != nil {
		return domain.QuestionSet{}, fmt.Errorf("parse question paper: %w", err)
	}
	qs, err := parseQuestionSet(content)
	if err != nil {
		return domain.QuestionSet{}, err
	}
	if sum := qs.MarksSum(); sum != qs.TotalMarks {
		// Advisory only: total_marks comes from an untrusted generator and the
		// per-question marks stay authoritative downstream.
		observability.QuestionSetMarksMismatchTotal.Inc()
		slog.Warn("question set total_marks disagrees with per-question sum",
			slog.Int("total_marks", qs.TotalMarks), slog.Int("marks_sum", sum))
	}
	return qs, nil
}

// parseQuestionSet applies the ordered decode policy: strict decode of the
// whole content, then the first balanced JSON object, then failure carrying a
// bounded snippet of the raw content for diagnostics.
func parseQuestionSet(content string) (domain.QuestionSet, error) {
	if qs, ok := decodeQuestionSet(content); ok {
		return qs, nil
	}
	if js, ok := extractFirstJSONObject(content); ok {
		if qs, ok := decodeQuestionSet(js); ok {
			return qs, nil
		}
	}
	return domain.QuestionSet{}, fmt.Errorf("%w: %s", domain.ErrMalformedLLMOutput, textx.Truncate(content, 400))
}

// decodeQuestionSet requires total_marks to be present and questions to be a
// sequence. Per-question fields are deliberately not validated here; they are
// consumed leniently downstream.
func decodeQuestionSet(content string) (domain.QuestionSet, bool) {
	var probe struct {
		TotalMarks *int               `json:"total_marks"`
		Questions  *[]domain.Question `json:"questions"`
	}
	if err := json.Unmarshal([]byte(content), &probe); err != nil {
		return domain.QuestionSet{}, false
	}
	if probe.TotalMarks == nil || probe.Questions == nil {
		return domain.QuestionSet{}, false
	}
	return domain.QuestionSet{TotalMarks: *probe.TotalMarks, Questions: *probe.Questions}, true
}
