package observability

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"route", "method"},
	)

	AIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_requests_total",
			Help: "Total number of AI requests by provider and operation",
		},
		[]string{"provider", "operation"},
	)
	AIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_request_duration_seconds",
			Help:    "AI request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"provider", "operation"},
	)

	EvaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evaluations_total",
			Help: "Total number of submission evaluations by outcome",
		},
		[]string{"outcome"},
	)
	QuestionsGradedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "questions_graded_total",
			Help: "Total number of questions graded by result kind",
		},
		[]string{"kind"},
	)
	GradingFallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grading_fallback_total",
			Help: "Grading attempts that degraded to the zero-score fallback",
		},
		[]string{"reason"},
	)
	// GradingScoreOutOfRangeTotal counts judge responses whose score fell
	// outside [0, marks] before clamping. A rising rate points at a
	// misbehaving model or prompt.
	GradingScoreOutOfRangeTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "grading_score_out_of_range_total",
			Help: "Judge scores outside [0, marks] that were clamped",
		},
	)
	QuestionSetMarksMismatchTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "question_set_marks_mismatch_total",
			Help: "Parsed question sets whose total_marks disagrees with the per-question sum",
		},
	)

	SimilarityHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "evaluation_similarity",
			Help:    "Distribution of answer-key cosine similarity",
			Buckets: []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
	)
)

func InitMetrics() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(AIRequestsTotal)
	prometheus.MustRegister(AIRequestDuration)
	prometheus.MustRegister(EvaluationsTotal)
	prometheus.MustRegister(QuestionsGradedTotal)
	prometheus.MustRegister(GradingFallbackTotal)
	prometheus.MustRegister(GradingScoreOutOfRangeTotal)
	prometheus.MustRegister(QuestionSetMarksMismatchTotal)
	prometheus.MustRegister(SimilarityHistogram)
}

// HTTPMetricsMiddleware records Prometheus metrics for each request.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		dur := time.Since(start).Seconds()
		// Route pattern may be unavailable outside chi router; guard nil
		var route string
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		if route == "" {
			route = r.URL.Path
		}
		method := r.Method
		status := ww.Status()
		HTTPRequestsTotal.WithLabelValues(route, method, http.StatusText(status)).Inc()
		HTTPRequestDuration.WithLabelValues(route, method).Observe(dur)
	})
}

// ObserveSimilarity records one similarity score when it is in the expected range.
func ObserveSimilarity(score float64) {
	if score >= 0 && score <= 1 {
		SimilarityHistogram.Observe(score)
	}
}
