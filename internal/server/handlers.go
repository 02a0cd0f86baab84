package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jonathan/resume-matcher/internal/db"
	"github.com/jonathan/resume-matcher/internal/ingestion"
	"github.com/jonathan/resume-matcher/internal/logger"
	"github.com/jonathan/resume-matcher/internal/parsing"
	"github.com/jonathan/resume-matcher/internal/pipeline"
	"github.com/jonathan/resume-matcher/internal/resume"
	"github.com/jonathan/resume-matcher/internal/scoring"
	"github.com/jonathan/resume-matcher/internal/types"
)

// maxBodyBytes bounds request bodies; résumé and job texts are plain text
const maxBodyBytes = 1 << 20

// ParseRequest is the body of POST /parse
type ParseRequest struct {
	ResumeText string `json:"resume_text" validate:"required,max=100000"`
}

// AnalyzeRequest is the body of POST /analyze. Quick skips the model and uses
// the deterministic extractor.
type AnalyzeRequest struct {
	JobText string `json:"job_text" validate:"required,max=100000"`
	Quick   bool   `json:"quick"`
}

// MatchRequest is the body of POST /match
type MatchRequest struct {
	ResumeText string `json:"resume_text" validate:"required,max=100000"`
	JobText    string `json:"job_text" validate:"required,max=100000"`
	Quick      bool   `json:"quick"`
}

// TailorRequest is the body of the /tailor endpoints. Quick only applies to the stream.
type TailorRequest struct {
	ResumeText string `json:"resume_text" validate:"required,max=100000"`
	JobText    string `json:"job_text" validate:"required,max=100000"`
	Quick      bool   `json:"quick"`
}

// MatchResponse is the response of POST /match
type MatchResponse struct {
	Requirements      *types.RequirementSet `json:"requirements"`
	Matched           []types.MatchRecord   `json:"matched"`
	Missing           []types.MatchRecord   `json:"missing"`
	HasDomainMismatch bool                  `json:"has_domain_mismatch"`
	Score             int                   `json:"score"`
	Breakdown         scoring.Breakdown     `json:"breakdown"`
}

// OutcomeListResponse is the response of GET /outcomes
type OutcomeListResponse struct {
	Outcomes []db.OutcomeSummary `json:"outcomes"`
	Limit    int                 `json:"limit"`
	Offset   int                 `json:"offset"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode reads a JSON body into dst, trims its text fields and validates it
func decode[T any](r *http.Request, w http.ResponseWriter, dst *T) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	trimStrings(dst)
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &ErrValidation{Field: fe.Field(), Message: validationMessage(fe)}
		}
		return &ErrValidation{Field: "body", Message: err.Error()}
	}
	return nil
}

func trimStrings(v any) {
	rv := reflect.ValueOf(v).Elem()
	for i := 0; i < rv.NumField(); i++ {
		if f := rv.Field(i); f.Kind() == reflect.String && f.CanSet() {
			f.SetString(strings.TrimSpace(f.String()))
		}
	}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	}
	return fmt.Sprintf("failed '%s' validation", fe.Tag())
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"history": s.outcomes != nil,
		"auth":    s.jwtService != nil,
	})
}

// handleParse segments a résumé into its structured profile
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if err := decode(r, w, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resume.Parse(ingestion.CleanText(req.ResumeText)))
}

// handleAnalyze extracts the requirement set of a job description
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := decode(r, w, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	reqs, err := s.requirements(r, req.JobText, req.Quick)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, reqs)
}

// handleMatch runs extraction, matching and scoring without generation
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if err := decode(r, w, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	reqs, err := s.requirements(r, req.JobText, req.Quick)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	profile := resume.Parse(ingestion.CleanText(req.ResumeText))
	result := s.engine.MatchAll(profile, reqs)
	breakdown := s.aggregator.Explain(result.Matched, result.Missing, result.HasDomainMismatch)

	s.jsonResponse(w, http.StatusOK, MatchResponse{
		Requirements:      reqs,
		Matched:           result.Matched,
		Missing:           result.Missing,
		HasDomainMismatch: result.HasDomainMismatch,
		Score:             breakdown.Final,
		Breakdown:         breakdown,
	})
}

func (s *Server) requirements(r *http.Request, jobText string, quick bool) (*types.RequirementSet, error) {
	if quick {
		return parsing.FallbackExtract(ingestion.CleanText(jobText)), nil
	}
	reqs, err := s.analyzer.Analyze(r.Context(), jobText)
	if err != nil {
		var verr *parsing.ValidationError
		if errors.As(err, &verr) {
			return nil, &ErrValidation{Field: "job_text", Message: verr.Message}
		}
		return nil, &pipeline.TailoringError{Kind: pipeline.KindJDAnalysis, Message: "job description analysis failed", Cause: err}
	}
	return reqs, nil
}

// handleTailor runs a full tailoring request and returns the outcome
func (s *Server) handleTailor(w http.ResponseWriter, r *http.Request) {
	s.tailor(w, r, false)
}

// handleTailorQuick runs the template-only tailoring path
func (s *Server) handleTailorQuick(w http.ResponseWriter, r *http.Request) {
	s.tailor(w, r, true)
}

func (s *Server) tailor(w http.ResponseWriter, r *http.Request, quick bool) {
	var req TailorRequest
	if err := decode(r, w, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	run := s.orchestrator.Tailor
	if quick {
		run = s.orchestrator.TailorQuick
	}
	outcome, err := run(r.Context(), pipeline.TailorRequest{
		ResumeText: req.ResumeText,
		JobText:    req.JobText,
		RequestID:  requestIDFrom(r.Context()),
	})
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, outcome)
}

// handleTailorStream runs a tailoring request and streams progress via SSE.
// Validation errors are plain JSON responses; failures after the stream has
// started arrive as an error event.
func (s *Server) handleTailorStream(w http.ResponseWriter, r *http.Request) {
	var req TailorRequest
	if err := decode(r, w, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	ctx := r.Context()
	requestID := requestIDFrom(ctx)
	stream, err := openEventStream(w, requestID)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	log := s.logger.With(zap.String(logger.FieldRequestID, requestID))
	events, results := s.orchestrator.Stream(ctx, pipeline.TailorRequest{
		ResumeText: req.ResumeText,
		JobText:    req.JobText,
		RequestID:  requestID,
	}, req.Quick)

	for ev := range events {
		if err := stream.send(eventStep, ev); err != nil {
			log.Debug("failed to write SSE event", zap.Error(err))
		}
	}

	res := <-results
	if res.Err != nil {
		if err := stream.send(eventError, s.errorBodyFor(ctx, res.Err)); err != nil {
			log.Debug("failed to write SSE error", zap.Error(err))
		}
		return
	}
	if err := stream.send(eventComplete, res.Outcome); err != nil {
		log.Debug("failed to write SSE result", zap.Error(err))
	}
}

// handleListOutcomes lists stored outcomes, newest first
func (s *Server) handleListOutcomes(w http.ResponseWriter, r *http.Request) {
	if s.outcomes == nil {
		s.errorResponse(w, r, &ErrUnavailable{Feature: "outcome history"})
		return
	}

	limit, err := queryInt(r, "limit", db.DefaultListLimit)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	summaries, err := s.outcomes.ListOutcomes(r.Context(), limit, offset)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if summaries == nil {
		summaries = []db.OutcomeSummary{}
	}
	s.jsonResponse(w, http.StatusOK, OutcomeListResponse{Outcomes: summaries, Limit: limit, Offset: offset})
}

// handleGetOutcome returns one stored outcome
func (s *Server) handleGetOutcome(w http.ResponseWriter, r *http.Request) {
	if s.outcomes == nil {
		s.errorResponse(w, r, &ErrUnavailable{Feature: "outcome history"})
		return
	}

	id := r.PathValue("id")
	outcome, err := s.outcomes.GetOutcome(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		s.errorResponse(w, r, &ErrNotFound{Resource: "outcome", ID: id})
		return
	}
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, outcome)
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, &ErrValidation{Field: name, Message: "must be a non-negative integer"}
	}
	return v, nil
}
