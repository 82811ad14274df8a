package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fairyhunter13/ai-answer-grader/internal/domain"
)

type errorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, _ *http.Request, err error, details interface{}) {
	code := http.StatusInternalServerError
	codeStr := "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrEmptyDocument):
		code = http.StatusBadRequest
		codeStr = "EMPTY_DOCUMENT"
	case errors.Is(err, domain.ErrEmptySubmission):
		code = http.StatusBadRequest
		codeStr = "EMPTY_SUBMISSION"
	case errors.Is(err, domain.ErrInvalidArgument):
		code = http.StatusBadRequest
		codeStr = "INVALID_ARGUMENT"
	case errors.Is(err, domain.ErrMalformedLLMOutput):
		code = http.StatusBadGateway
		codeStr = "MALFORMED_LLM_OUTPUT"
	case errors.Is(err, domain.ErrScoringUnavailable):
		code = http.StatusServiceUnavailable
		codeStr = "SCORING_UNAVAILABLE"
	case errors.Is(err, domain.ErrMissingCredential):
		code = http.StatusServiceUnavailable
		codeStr = "MISSING_CREDENTIAL"
	case errors.Is(err, domain.ErrUpstreamTimeout):
		code = http.StatusServiceUnavailable
		codeStr = "UPSTREAM_TIMEOUT"
	case errors.Is(err, domain.ErrUpstreamRateLimit):
		code = http.StatusServiceUnavailable
		codeStr = "UPSTREAM_RATE_LIMIT"
	}
	writeJSON(w, code, errorEnvelope{Error: apiError{Code: codeStr, Message: err.Error(), Details: details}})
}
