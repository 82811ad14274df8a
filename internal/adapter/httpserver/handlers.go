package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/ai-answer-grader/internal/config"
	"github.com/fairyhunter13/ai-answer-grader/internal/domain"
	"github.com/fairyhunter13/ai-answer-grader/internal/usecase"
	"github.com/fairyhunter13/ai-answer-grader/pkg/textx"
)

// Server aggregates handler dependencies.
type Server struct {
	Cfg       config.Config
	Questions usecase.QuestionService
	Evaluate  usecase.EvaluateService
	Extractor domain.TextExtractor
	AICheck   func(ctx context.Context) error
	TikaCheck func(ctx context.Context) error
}

// NewServer constructs an HTTP server with all handlers and checks wired.
func NewServer(cfg config.Config, questions usecase.QuestionService, eval usecase.EvaluateService, extractor domain.TextExtractor, aiCheck, tikaCheck func(context.Context) error) *Server {
	return &Server{Cfg: cfg, Questions: questions, Evaluate: eval, Extractor: extractor, AICheck: aiCheck, TikaCheck: tikaCheck}
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

// allowedExt enforces an allowlist for uploads: .txt, .pdf, .docx
func allowedExt(name string) bool {
	n := strings.ToLower(name)
	return strings.HasSuffix(n, ".txt") || strings.HasSuffix(n, ".pdf") || strings.HasSuffix(n, ".docx")
}

func allowedMIMEFor(m string, filename string) bool {
	m = strings.ToLower(m)
	// Some detectors misclassify rich .txt content as text/html; accept any text/*.
	if strings.HasSuffix(strings.ToLower(filename), ".txt") && strings.HasPrefix(m, "text/") {
		return true
	}
	if strings.HasPrefix(m, "text/plain") { // allow parameters such as charset
		return true
	}
	return m == "application/pdf" || m == "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

// extractUploadedText turns an uploaded document into sanitized plain text.
// PDF and DOCX go through the external extractor (Apache Tika) via a temp
// file; plain text is sanitized in-process.
func extractUploadedText(ctx context.Context, extractor domain.TextExtractor, h *multipart.FileHeader, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(h.Filename))
	if ext == ".pdf" || ext == ".docx" {
		if extractor == nil {
			return "", fmt.Errorf("%w: %s requires extractor", domain.ErrInvalidArgument, strings.TrimPrefix(ext, "."))
		}
		tmp, err := os.CreateTemp("", "upload-*")
		if err != nil {
			return "", err
		}
		defer func() { _ = os.Remove(tmp.Name()); _ = tmp.Close() }()
		if _, err := tmp.Write(data); err != nil {
			return "", err
		}
		if err := tmp.Close(); err != nil {
			return "", err
		}
		return extractor.ExtractPath(ctx, h.Filename, tmp.Name())
	}
	return textx.SanitizeText(string(data)), nil
}

// acceptsJSON rejects requests whose Accept header excludes JSON.
func (s *Server) acceptsJSON(w http.ResponseWriter, r *http.Request) bool {
	a := r.Header.Get("Accept")
	if a == "" || a == "*/*" || strings.Contains(a, "application/json") {
		return true
	}
	writeJSON(w, http.StatusNotAcceptable, errorEnvelope{Error: apiError{
		Code: "INVALID_ARGUMENT", Message: "not acceptable", Details: map[string]any{"accept": a},
	}})
	return false
}

// readUploadedFile parses the multipart form and returns the named file's
// header and bytes. On failure it writes the error response and returns
// handled=true.
func (s *Server) readUploadedFile(w http.ResponseWriter, r *http.Request, field string) (*multipart.FileHeader, []byte, bool) {
	if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
		writeError(w, r, fmt.Errorf("%w: content-type must be multipart/form-data", domain.ErrInvalidArgument), nil)
		return nil, nil, true
	}
	maxBytes := s.Cfg.MaxUploadMB * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorEnvelope{Error: apiError{
				Code: "INVALID_ARGUMENT", Message: "payload too large", Details: map[string]any{"max_mb": s.Cfg.MaxUploadMB},
			}})
			return nil, nil, true
		}
		writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err), nil)
		return nil, nil, true
	}
	f, h, err := r.FormFile(field)
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: %s file required", domain.ErrInvalidArgument, field), map[string]string{"field": field})
		return nil, nil, true
	}
	defer func() { _ = f.Close() }()
	data, err := io.ReadAll(f)
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: %s read: %v", domain.ErrInvalidArgument, field, err), nil)
		return nil, nil, true
	}
	if !allowedExt(h.Filename) {
		writeJSON(w, http.StatusUnsupportedMediaType, errorEnvelope{Error: apiError{
			Code: "INVALID_ARGUMENT", Message: "unsupported media type (extension)", Details: map[string]any{"filename": h.Filename},
		}})
		return nil, nil, true
	}
	m := mimetype.Detect(data)
	if !allowedMIMEFor(m.String(), h.Filename) {
		writeJSON(w, http.StatusUnsupportedMediaType, errorEnvelope{Error: apiError{
			Code: "INVALID_ARGUMENT", Message: "unsupported media type (content)", Details: map[string]any{"mime": m.String(), "filename": h.Filename},
		}})
		return nil, nil, true
	}
	return h, data, false
}

// ParseQuestionPaperHandler handles multipart upload of a question paper and
// returns the structured question set.
func (s *Server) ParseQuestionPaperHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.acceptsJSON(w, r) {
			return
		}
		h, data, handled := s.readUploadedFile(w, r, "file")
		if handled {
			return
		}
		text, err := extractUploadedText(r.Context(), s.Extractor, h, data)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: extract: %v", domain.ErrInvalidArgument, err), nil)
			return
		}
		qs, err := s.Questions.ExtractQuestions(r.Context(), text)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, qs)
	}
}

// SubmitAnswerHandler grades an uploaded answer submission against the
// question set carried in the question_set form field.
func (s *Server) SubmitAnswerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.acceptsJSON(w, r) {
			return
		}
		h, data, handled := s.readUploadedFile(w, r, "file")
		if handled {
			return
		}
		qs, err := decodeQuestionSetField(r.FormValue("question_set"))
		if err != nil {
			writeError(w, r, err, map[string]string{"field": "question_set"})
			return
		}
		text, err := extractUploadedText(r.Context(), s.Extractor, h, data)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: extract: %v", domain.ErrInvalidArgument, err), nil)
			return
		}
		report, err := s.Evaluate.Evaluate(r.Context(), qs, text)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

func decodeQuestionSetField(raw string) (domain.QuestionSet, error) {
	if strings.TrimSpace(raw) == "" {
		return domain.QuestionSet{}, fmt.Errorf("%w: question_set form field required", domain.ErrInvalidArgument)
	}
	var req struct {
		TotalMarks int               `json:"total_marks" validate:"min=0"`
		Questions  []domain.Question `json:"questions" validate:"required,min=1"`
	}
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return domain.QuestionSet{}, fmt.Errorf("%w: question_set is not valid JSON", domain.ErrInvalidArgument)
	}
	if err := getValidator().Struct(req); err != nil {
		verrs := map[string]string{}
		if ve, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range ve {
				verrs[strings.ToLower(fe.Field())] = fe.Tag()
			}
		}
		return domain.QuestionSet{}, fmt.Errorf("%w: question_set validation failed: %v", domain.ErrInvalidArgument, verrs)
	}
	return domain.QuestionSet{TotalMarks: req.TotalMarks, Questions: req.Questions}, nil
}

// ReadyzHandler returns a readiness handler that probes the AI provider
// configuration and the Tika server.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		Details string `json:"details,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		checks := make([]check, 0, 2)
		if s.AICheck != nil {
			if err := s.AICheck(ctx); err != nil {
				checks = append(checks, check{Name: "ai", OK: false, Details: err.Error()})
			} else {
				checks = append(checks, check{Name: "ai", OK: true})
			}
		}
		if s.TikaCheck != nil {
			if err := s.TikaCheck(ctx); err != nil {
				checks = append(checks, check{Name: "tika", OK: false, Details: err.Error()})
			} else {
				checks = append(checks, check{Name: "tika", OK: true})
			}
		}
		st := http.StatusOK
		for _, c := range checks {
			if !c.OK {
				st = http.StatusServiceUnavailable
				break
			}
		}
		writeJSON(w, st, map[string]any{"checks": checks})
	}
}
