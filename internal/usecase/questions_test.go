package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-answer-grader/internal/domain"
)

const validQuestionSetJSON = `{
  "total_marks": 10,
  "questions": [
    {"question_id": 1, "question_text": "What is Go?", "answer_key": "A programming language.", "marks": 4},
    {"question_id": 2, "question_text": "What is a goroutine?", "answer_key": "A lightweight thread.", "marks": 6}
  ]
}`

func TestExtractQuestions_EmptyDocumentSkipsLLM(t *testing.T) {
	t.Parallel()
	ai := &fakeAI{}
	svc := NewQuestionService(ai)

	_, err := svc.ExtractQuestions(context.Background(), "   \n\t ")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmptyDocument)

	chatJSON, _, _ := ai.calls()
	assert.Equal(t, 0, chatJSON, "empty input must not reach the LLM")
}

func TestExtractQuestions_StrictJSON(t *testing.T) {
	t.Parallel()
	ai := &fakeAI{chatJSONFn: func(_, _ string, _ int) (string, error) {
		return validQuestionSetJSON, nil
	}}
	svc := NewQuestionService(ai)

	qs, err := svc.ExtractQuestions(context.Background(), "Q1. What is Go? (4 marks)")
	require.NoError(t, err)
	assert.Equal(t, 10, qs.TotalMarks)
	require.Len(t, qs.Questions, 2)
	assert.Equal(t, 1, qs.Questions[0].ID)
	assert.Equal(t, "A lightweight thread.", qs.Questions[1].AnswerKey)
}

func TestExtractQuestions_FencedJSONFallback(t *testing.T) {
	t.Parallel()
	ai := &fakeAI{chatJSONFn: func(_, _ string, _ int) (string, error) {
		return "Here is the parsed paper:\n```json\n" + validQuestionSetJSON + "\n```\nDone.", nil
	}}
	svc := NewQuestionService(ai)

	qs, err := svc.ExtractQuestions(context.Background(), "paper text")
	require.NoError(t, err)
	assert.Equal(t, 10, qs.TotalMarks)
	assert.Len(t, qs.Questions, 2)
}

func TestExtractQuestions_MalformedOutput(t *testing.T) {
	t.Parallel()
	for name, content := range map[string]string{
		"not json":           "I could not parse the paper, sorry.",
		"unbalanced":         `{"total_marks": 10, "questions": [`,
		"missing totalmarks": `{"questions": []}`,
		"missing questions":  `{"total_marks": 10}`,
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ai := &fakeAI{chatJSONFn: func(_, _ string, _ int) (string, error) {
				return content, nil
			}}
			svc := NewQuestionService(ai)
			_, err := svc.ExtractQuestions(context.Background(), "paper text")
			assert.ErrorIs(t, err, domain.ErrMalformedLLMOutput)
		})
	}
}

func TestExtractQuestions_UpstreamErrorPropagates(t *testing.T) {
	t.Parallel()
	ai := &fakeAI{chatJSONFn: func(_, _ string, _ int) (string, error) {
		return "", domain.ErrUpstreamRateLimit
	}}
	svc := NewQuestionService(ai)
	_, err := svc.ExtractQuestions(context.Background(), "paper text")
	assert.True(t, errors.Is(err, domain.ErrUpstreamRateLimit))
}

func TestExtractQuestions_MarksMismatchIsAdvisory(t *testing.T) {
	t.Parallel()
	ai := &fakeAI{chatJSONFn: func(_, _ string, _ int) (string, error) {
		return `{"total_marks": 100, "questions": [{"question_id": 1, "question_text": "q", "answer_key": "a", "marks": 5}]}`, nil
	}}
	svc := NewQuestionService(ai)

	qs, err := svc.ExtractQuestions(context.Background(), "paper text")
	require.NoError(t, err)
	assert.Equal(t, 100, qs.TotalMarks)
	assert.Equal(t, 5, qs.MarksSum())
}
