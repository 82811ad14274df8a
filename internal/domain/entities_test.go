package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionSetMarksSum(t *testing.T) {
	t.Parallel()
	qs := QuestionSet{TotalMarks: 99, Questions: []Question{
		{ID: 1, Marks: 4},
		{ID: 2, Marks: 6},
	}}
	assert.Equal(t, 10, qs.MarksSum())
	assert.Equal(t, 0, QuestionSet{}.MarksSum())
}

func TestQuestionJSONShape(t *testing.T) {
	t.Parallel()
	raw := `{"question_id": 3, "question_text": "Why?", "answer_key": "Because.", "marks": 2}`
	var q Question
	require.NoError(t, json.Unmarshal([]byte(raw), &q))
	assert.Equal(t, Question{ID: 3, Text: "Why?", AnswerKey: "Because.", Marks: 2}, q)

	b, err := json.Marshal(q)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(b))
}
