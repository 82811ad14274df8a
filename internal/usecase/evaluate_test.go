package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-answer-grader/internal/domain"
)

func threeQuestionSet() domain.QuestionSet {
	return domain.QuestionSet{
		TotalMarks: 12,
		Questions: []domain.Question{
			{ID: 3, Text: "third listed first", AnswerKey: "k3", Marks: 4},
			{ID: 1, Text: "first listed second", AnswerKey: "k1", Marks: 4},
			{ID: 2, Text: "second listed third", AnswerKey: "k2", Marks: 4},
		},
	}
}

// gradingFake scripts full pipeline behavior: extraction echoes the question
// id, embeddings are fixed, and the judge scores 3 with canned feedback.
func gradingFake() *fakeAI {
	return &fakeAI{
		chatTextFn: func(_, user string, _ int) (string, error) {
			for id := 1; id <= 3; id++ {
				if strings.Contains(user, fmt.Sprintf("Question ID: %d\n", id)) {
					return fmt.Sprintf("answer-%d", id), nil
				}
			}
			return "Answer not found", nil
		},
		embedFn: func(texts []string) ([][]float32, error) {
			vecs := make([][]float32, len(texts))
			for i := range texts {
				vecs[i] = []float32{1, 0, 0}
			}
			return vecs, nil
		},
		chatJSONFn: func(_, _ string, _ int) (string, error) {
			return `{"score": 3, "feedback": "solid"}`, nil
		},
	}
}

func newEvaluateService(ai domain.AIClient) EvaluateService {
	return NewEvaluateService(
		NewAnswerService(ai, 2),
		NewSimilarityService(ai),
		NewGradeService(ai),
		2,
	)
}

func TestEvaluate_EmptySubmission(t *testing.T) {
	t.Parallel()
	svc := newEvaluateService(gradingFake())
	_, err := svc.Evaluate(context.Background(), threeQuestionSet(), " \n ")
	assert.ErrorIs(t, err, domain.ErrEmptySubmission)
}

func TestEvaluate_ScoringUnavailable(t *testing.T) {
	t.Parallel()
	ai := gradingFake()
	svc := NewEvaluateService(NewAnswerService(ai, 2), nil, NewGradeService(ai), 2)
	_, err := svc.Evaluate(context.Background(), threeQuestionSet(), "submission")
	assert.ErrorIs(t, err, domain.ErrScoringUnavailable)
}

func TestEvaluate_ResultsInInputOrder(t *testing.T) {
	t.Parallel()
	svc := newEvaluateService(gradingFake())

	report, err := svc.Evaluate(context.Background(), threeQuestionSet(), "submission")
	require.NoError(t, err)
	require.Len(t, report.Results, 3)

	assert.Equal(t, []int{3, 1, 2}, []int{
		report.Results[0].QuestionID,
		report.Results[1].QuestionID,
		report.Results[2].QuestionID,
	})
	assert.Equal(t, 12, report.TotalMarks)
	assert.Equal(t, 9, report.MarksObtained, "marks obtained is the sum of per-question scores")
	for _, r := range report.Results {
		assert.Equal(t, fmt.Sprintf("answer-%d", r.QuestionID), r.StudentAnswer)
		assert.Equal(t, 3, r.Score)
		assert.Equal(t, 4, r.OutOf)
		assert.InDelta(t, 1.0, r.Similarity, 1e-9)
		assert.Equal(t, "solid", r.Feedback)
	}
}

func TestEvaluate_JudgeFailureDegradesOneQuestion(t *testing.T) {
	t.Parallel()
	ai := gradingFake()
	ai.chatJSONFn = func(_, user string, _ int) (string, error) {
		if strings.Contains(user, "Student Answer: answer-1") {
			return "", errors.New("judge down")
		}
		return `{"score": 3, "feedback": "solid"}`, nil
	}
	svc := newEvaluateService(ai)

	report, err := svc.Evaluate(context.Background(), threeQuestionSet(), "submission")
	require.NoError(t, err, "a single judge failure must not abort the batch")
	require.Len(t, report.Results, 3)

	byID := map[int]domain.EvaluationResult{}
	for _, r := range report.Results {
		byID[r.QuestionID] = r
	}
	assert.Equal(t, 0, byID[1].Score)
	assert.NotEmpty(t, byID[1].Feedback)
	assert.Equal(t, 3, byID[2].Score)
	assert.Equal(t, 3, byID[3].Score)
	assert.Equal(t, 6, report.MarksObtained)
}

func TestEvaluate_SimilarityFailureDowngradesToZero(t *testing.T) {
	t.Parallel()
	ai := gradingFake()
	ai.embedFn = func([]string) ([][]float32, error) {
		return nil, errors.New("embeddings down")
	}
	svc := newEvaluateService(ai)

	report, err := svc.Evaluate(context.Background(), threeQuestionSet(), "submission")
	require.NoError(t, err)
	for _, r := range report.Results {
		assert.Equal(t, 0.0, r.Similarity)
		assert.Equal(t, 3, r.Score, "grading proceeds with a zero similarity hint")
	}
}

func TestEvaluate_ShortEmbedResponseDegrades(t *testing.T) {
	t.Parallel()
	ai := gradingFake()
	ai.embedFn = func(texts []string) ([][]float32, error) {
		return [][]float32{{1, 0, 0}}, nil
	}
	svc := newEvaluateService(ai)

	report, err := svc.Evaluate(context.Background(), threeQuestionSet(), "submission")
	require.NoError(t, err, "a truncated embeddings response must degrade, not abort")
	require.Len(t, report.Results, 3)
	for _, r := range report.Results {
		assert.Equal(t, 0.0, r.Similarity)
		assert.Equal(t, 3, r.Score)
	}
}

func TestEvaluate_NotFoundAnswerSkipsSimilarity(t *testing.T) {
	t.Parallel()
	ai := gradingFake()
	ai.chatTextFn = func(_, _ string, _ int) (string, error) {
		return "Answer not found", nil
	}
	svc := newEvaluateService(ai)

	report, err := svc.Evaluate(context.Background(), threeQuestionSet(), "submission")
	require.NoError(t, err)
	_, _, embeds := ai.calls()
	assert.Equal(t, 0, embeds, "not-found answers must not be embedded")
	for _, r := range report.Results {
		assert.Equal(t, "Answer not found", r.StudentAnswer)
		assert.Equal(t, 0.0, r.Similarity)
	}
}

func TestEvaluate_EmptyAnswerKeySkipsSimilarity(t *testing.T) {
	t.Parallel()
	ai := gradingFake()
	svc := newEvaluateService(ai)

	qs := domain.QuestionSet{TotalMarks: 4, Questions: []domain.Question{
		{ID: 1, Text: "opinion question", AnswerKey: "  ", Marks: 4},
	}}
	report, err := svc.Evaluate(context.Background(), qs, "submission")
	require.NoError(t, err)
	_, _, embeds := ai.calls()
	assert.Equal(t, 0, embeds)
	require.Len(t, report.Results, 1)
	assert.Equal(t, 0.0, report.Results[0].Similarity)
}

func TestEvaluate_SimilarityRoundedToThreeDecimals(t *testing.T) {
	t.Parallel()
	ai := gradingFake()
	ai.embedFn = func(texts []string) ([][]float32, error) {
		vecs := make([][]float32, len(texts))
		for i := range texts {
			if i == 0 {
				vecs[i] = []float32{1, 0}
			} else {
				vecs[i] = []float32{1, 1}
			}
		}
		return vecs, nil
	}
	svc := newEvaluateService(ai)

	qs := domain.QuestionSet{TotalMarks: 4, Questions: []domain.Question{
		{ID: 1, Text: "q", AnswerKey: "k", Marks: 4},
	}}
	report, err := svc.Evaluate(context.Background(), qs, "submission")
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Equal(t, 0.707, report.Results[0].Similarity)
}

func TestRound3(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0.123, round3(0.12345))
	assert.Equal(t, 0.124, round3(0.1236))
	assert.Equal(t, 1.0, round3(0.9999))
	assert.Equal(t, 0.0, round3(0))
}
