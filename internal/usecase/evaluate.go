package usecase

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/fairyhunter13/ai-answer-grader/internal/adapter/observability"
	"github.com/fairyhunter13/ai-answer-grader/internal/domain"
)

// EvaluateService sequences answer extraction, similarity scoring, and
// grading across a full submission.
type EvaluateService struct {
	Answers    AnswerService
	Similarity *SimilarityService
	Judge      GradeService
	// GradeConcurrency bounds the per-question similarity+grading fan-out.
	GradeConcurrency int
}

// NewEvaluateService constructs an EvaluateService with its dependencies.
func NewEvaluateService(answers AnswerService, sim *SimilarityService, judge GradeService, gradeConcurrency int) EvaluateService {
	return EvaluateService{Answers: answers, Similarity: sim, Judge: judge, GradeConcurrency: gradeConcurrency}
}

// Evaluate grades one submission against a question set.
//
// Only global preconditions are fatal: empty submission text and an
// unavailable similarity backend. Per-question failures degrade locally to a
// zero score with diagnostic feedback, and results always come back in the
// input question order, one entry per question.
func (s EvaluateService) Evaluate(ctx domain.Context, qs domain.QuestionSet, submissionText string) (domain.SubmissionReport, error) {
	if strings.TrimSpace(submissionText) == "" {
		observability.EvaluationsTotal.WithLabelValues("rejected").Inc()
		return domain.SubmissionReport{}, fmt.Errorf("%w: submission text", domain.ErrEmptySubmission)
	}
	if err := s.Similarity.Ready(); err != nil {
		observability.EvaluationsTotal.WithLabelValues("rejected").Inc()
		return domain.SubmissionReport{}, err
	}

	answers := s.Answers.ExtractAnswers(ctx, submissionText, qs.Questions)

	results := make([]domain.EvaluationResult, len(qs.Questions))
	g := new(errgroup.Group)
	limit := s.GradeConcurrency
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)
	for i, q := range qs.Questions {
		g.Go(func() error {
			results[i] = s.evaluateOne(ctx, q, answers)
			return nil
		})
	}
	_ = g.Wait()

	total := 0
	for _, r := range results {
		total += r.Score
	}
	observability.EvaluationsTotal.WithLabelValues("completed").Inc()
	return domain.SubmissionReport{TotalMarks: qs.TotalMarks, MarksObtained: total, Results: results}, nil
}

func (s EvaluateService) evaluateOne(ctx domain.Context, q domain.Question, answers map[int]domain.AnswerEntry) domain.EvaluationResult {
	entry, ok := answers[q.ID]
	if !ok {
		entry = domain.AnswerEntry{Text: answerNotFoundMarker, Status: domain.AnswerNotFound}
	}

	// Similarity is advisory: only computed for found answers against a
	// non-empty key, and any failure downgrades to 0.0 rather than aborting.
	similarity := 0.0
	if entry.Status == domain.AnswerFound && strings.TrimSpace(q.AnswerKey) != "" {
		v, err := s.Similarity.Score(ctx, q.AnswerKey, entry.Text)
		if err != nil {
			slog.Warn("similarity scoring failed, using 0.0",
				slog.Int("question_id", q.ID), slog.Any("error", err))
		} else {
			similarity = v
			observability.ObserveSimilarity(v)
		}
	}

	score, feedback := s.Judge.Grade(ctx, q, entry.Text, similarity)
	kind := "scored"
	if score == 0 {
		kind = "zero"
	}
	observability.QuestionsGradedTotal.WithLabelValues(kind).Inc()

	return domain.EvaluationResult{
		QuestionID:    q.ID,
		StudentAnswer: entry.Text,
		Score:         score,
		OutOf:         q.Marks,
		Similarity:    round3(similarity),
		Feedback:      feedback,
	}
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
