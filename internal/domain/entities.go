// Package domain holds the core entities, error sentinels, and ports of the
// answer-grading service. It stays dependency-free: adapters and usecases
// depend on it, never the other way around.
package domain

import (
	"context"
	"errors"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrEmptyDocument      = errors.New("empty document")
	ErrEmptySubmission    = errors.New("empty submission")
	ErrMalformedLLMOutput = errors.New("malformed llm output")
	ErrScoringUnavailable = errors.New("scoring unavailable")
	ErrMissingCredential  = errors.New("missing credential")
	ErrUpstreamTimeout    = errors.New("upstream timeout")
	ErrUpstreamRateLimit  = errors.New("upstream rate limit")
	ErrInternal           = errors.New("internal error")
)

// Question is a single question parsed out of a question paper.
// Immutable once produced; owned by the caller for one request.
type Question struct {
	ID        int    `json:"question_id"`
	Text      string `json:"question_text"`
	AnswerKey string `json:"answer_key"`
	Marks     int    `json:"marks"`
}

// QuestionSet is the structured form of a question paper.
// TotalMarks is advisory data from an untrusted LLM response; it is not
// reconciled against the per-question marks.
type QuestionSet struct {
	TotalMarks int        `json:"total_marks"`
	Questions  []Question `json:"questions"`
}

// MarksSum returns the sum of per-question marks, independent of TotalMarks.
func (qs QuestionSet) MarksSum() int {
	sum := 0
	for _, q := range qs.Questions {
		sum += q.Marks
	}
	return sum
}

// AnswerStatus tags the outcome of extracting one student answer.
type AnswerStatus string

const (
	AnswerFound           AnswerStatus = "found"
	AnswerNotFound        AnswerStatus = "not_found"
	AnswerExtractionError AnswerStatus = "extraction_error"
)

// AnswerEntry is one student's answer span for one question.
type AnswerEntry struct {
	Text   string
	Status AnswerStatus
}

// EvaluationResult is the graded outcome for one question.
type EvaluationResult struct {
	QuestionID    int     `json:"question_id"`
	StudentAnswer string  `json:"student_answer"`
	Score         int     `json:"score"`
	OutOf         int     `json:"out_of"`
	Similarity    float64 `json:"similarity"`
	Feedback      string  `json:"feedback"`
}

// SubmissionReport aggregates per-question results in the original question
// order. MarksObtained always equals the sum of Score across Results.
type SubmissionReport struct {
	TotalMarks    int                `json:"total_marks"`
	MarksObtained int                `json:"marks_obtained"`
	Results       []EvaluationResult `json:"results"`
}

// AIClient (port)
//
// ChatJSON asks the grading-class model for a JSON-constrained completion.
// ChatText asks the lighter extraction model for a plain-text completion.
// Embed returns one embedding vector per input text.
type AIClient interface {
	ChatJSON(ctx Context, systemPrompt, userPrompt string, maxTokens int) (string, error)
	ChatText(ctx Context, systemPrompt, userPrompt string, maxTokens int) (string, error)
	Embed(ctx Context, texts []string) ([][]float32, error)
}

// TextExtractor (port)
// ExtractPath extracts plain text from a file at path with the provided
// original filename. Implementations may call external services (e.g., Tika).
type TextExtractor interface {
	ExtractPath(ctx Context, fileName, path string) (string, error)
}

// Context aliases context.Context so the domain package stays import-light
// while adapters and usecases pass standard contexts through.
type Context = context.Context
