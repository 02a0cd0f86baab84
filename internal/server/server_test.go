package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-matcher/internal/config"
	"github.com/jonathan/resume-matcher/internal/db"
	"github.com/jonathan/resume-matcher/internal/llm"
	"github.com/jonathan/resume-matcher/internal/pipeline"
	"github.com/jonathan/resume-matcher/internal/types"
)

const sampleResume = `Jane Doe
jane@example.com

SKILLS
Go, PostgreSQL, Kubernetes

EXPERIENCE
Backend Engineer
Acme | 2019 - Present
- Built payment services in Go handling 2M requests per day
- Reduced API latency by 40%

EDUCATION
BSc Computer Science, State University, 2016`

const sampleJD = `Senior Backend Engineer
- 3+ years of experience with Go
- Must have PostgreSQL
- Rust experience
- Kubernetes is a plus`

// stubLLM returns text for every prompt, or err when set
type stubLLM struct {
	err error
}

func (s *stubLLM) Generate(ctx context.Context, req llm.Request) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if req.JSONMode {
		return "not json", nil
	}
	return "Generated text for the candidate.", nil
}

func (s *stubLLM) Close() error { return nil }

type stubDetector struct{}

func (stubDetector) Detect(_ context.Context, _ string) types.DetectionInfo {
	return types.DetectionInfo{Score: 12, IsHumanPassing: true, Feedback: "reads naturally"}
}

type memOutcomes struct {
	items map[string]*types.TailoringOutcome
	err   error
}

func (m *memOutcomes) GetOutcome(_ context.Context, id string) (*types.TailoringOutcome, error) {
	if m.err != nil {
		return nil, m.err
	}
	o, ok := m.items[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return o, nil
}

func (m *memOutcomes) ListOutcomes(_ context.Context, limit, offset int) ([]db.OutcomeSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []db.OutcomeSummary
	for _, o := range m.items {
		out = append(out, db.SummaryOf(o))
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func testConfig() config.ServerConfig {
	return config.ServerConfig{
		Port:           0,
		AllowedOrigins: []string{"*"},
		RateLimit:      config.RateLimitConfig{Enabled: false},
		JWT:            config.JWTConfig{ExpirationHours: 1},
	}
}

func newTestServer(t *testing.T, cfg config.ServerConfig, client llm.Client, outcomes OutcomeStore) *Server {
	t.Helper()
	orch := pipeline.New(client, pipeline.WithDetector(stubDetector{}))
	deps := Deps{Orchestrator: orch}
	if outcomes != nil {
		deps.Outcomes = outcomes
	}
	s, err := New(cfg, deps)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func do(t *testing.T, s *Server, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestNew_RequiresOrchestrator(t *testing.T) {
	_, err := New(testConfig(), Deps{})
	assert.Error(t, err)
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, testConfig(), &stubLLM{}, nil)

	w := do(t, s, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[map[string]any](t, w)
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, false, resp["history"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newTestServer(t, testConfig(), &stubLLM{}, nil)
	w := do(t, s, http.MethodGet, "/health", nil, "X-Request-ID", "req-42")
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
}

func TestHandleParse(t *testing.T) {
	s := newTestServer(t, testConfig(), &stubLLM{}, nil)

	w := do(t, s, http.MethodPost, "/parse", ParseRequest{ResumeText: sampleResume})
	require.Equal(t, http.StatusOK, w.Code)

	profile := decodeBody[types.ResumeProfile](t, w)
	require.NotNil(t, profile.Contact)
	assert.Equal(t, "Jane Doe", profile.Contact.Name)
	assert.NotEmpty(t, profile.Skills)
	assert.Len(t, profile.Experiences, 1)
}

func TestValidationErrors(t *testing.T) {
	s := newTestServer(t, testConfig(), &stubLLM{}, nil)

	tests := []struct {
		name      string
		path      string
		body      any
		wantField string
	}{
		{name: "missing resume", path: "/parse", body: map[string]string{}, wantField: "resume_text"},
		{name: "blank resume", path: "/parse", body: ParseRequest{ResumeText: "   \n"}, wantField: "resume_text"},
		{name: "missing job text", path: "/analyze", body: AnalyzeRequest{}, wantField: "job_text"},
		{name: "match without job", path: "/match", body: MatchRequest{ResumeText: sampleResume}, wantField: "job_text"},
		{name: "tailor without resume", path: "/tailor", body: TailorRequest{JobText: sampleJD}, wantField: "resume_text"},
		{name: "malformed JSON", path: "/tailor/quick", body: "{not json", wantField: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			body := decodeBody[errorBody](t, w)
			assert.Equal(t, "validation_error", body.Error)
			if tt.wantField != "" {
				assert.Contains(t, body.Message, tt.wantField)
			}
		})
	}
}

func TestHandleAnalyze_Quick(t *testing.T) {
	s := newTestServer(t, testConfig(), &stubLLM{err: errors.New("must not be called")}, nil)

	w := do(t, s, http.MethodPost, "/analyze", AnalyzeRequest{JobText: sampleJD, Quick: true})
	require.Equal(t, http.StatusOK, w.Code)

	reqs := decodeBody[types.RequirementSet](t, w)
	assert.Equal(t, "Senior Backend Engineer", reqs.Title)
	assert.Equal(t, 4, len(reqs.Required)+len(reqs.Preferred))
}

func TestHandleAnalyze_ModelOutputFallsBack(t *testing.T) {
	s := newTestServer(t, testConfig(), &stubLLM{}, nil)

	w := do(t, s, http.MethodPost, "/analyze", AnalyzeRequest{JobText: sampleJD})
	require.Equal(t, http.StatusOK, w.Code)

	reqs := decodeBody[types.RequirementSet](t, w)
	assert.NotEmpty(t, reqs.Required)
}

func TestHandleMatch(t *testing.T) {
	s := newTestServer(t, testConfig(), &stubLLM{}, nil)

	w := do(t, s, http.MethodPost, "/match", MatchRequest{ResumeText: sampleResume, JobText: sampleJD, Quick: true})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[MatchResponse](t, w)
	require.NotNil(t, resp.Requirements)
	total := len(resp.Requirements.Required) + len(resp.Requirements.Preferred)
	assert.Equal(t, total, len(resp.Matched)+len(resp.Missing))
	assert.NotEmpty(t, resp.Matched)
	assert.Equal(t, resp.Breakdown.Final, resp.Score)
	assert.GreaterOrEqual(t, resp.Score, 15)
	assert.LessOrEqual(t, resp.Score, 95)
	assert.False(t, resp.HasDomainMismatch)
}

func TestHandleTailor(t *testing.T) {
	s := newTestServer(t, testConfig(), &stubLLM{}, nil)

	w := do(t, s, http.MethodPost, "/tailor", TailorRequest{ResumeText: sampleResume, JobText: sampleJD},
		"X-Request-ID", "tailor-1")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	outcome := decodeBody[types.TailoringOutcome](t, w)
	assert.NotEmpty(t, outcome.ID)
	assert.False(t, outcome.Quick)
	assert.Equal(t, "Generated text for the candidate.", outcome.CoverLetter)
	require.NotNil(t, outcome.Detection)
	assert.True(t, outcome.Detection.IsHumanPassing)
}

func TestHandleTailorQuick(t *testing.T) {
	s := newTestServer(t, testConfig(), &stubLLM{err: errors.New("must not be called")}, nil)

	w := do(t, s, http.MethodPost, "/tailor/quick", TailorRequest{ResumeText: sampleResume, JobText: sampleJD})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	outcome := decodeBody[types.TailoringOutcome](t, w)
	assert.True(t, outcome.Quick)
	assert.Contains(t, outcome.CoverLetter, "Dear Hiring Team,")
	assert.Contains(t, outcome.ReformattedResume, "Jane Doe")
	assert.Nil(t, outcome.Detection)
}

func TestHandleTailor_GenerationFailure(t *testing.T) {
	s := newTestServer(t, testConfig(), &stubLLM{err: errors.New("backend exploded")}, nil)

	w := do(t, s, http.MethodPost, "/tailor", TailorRequest{ResumeText: sampleResume, JobText: sampleJD})
	assert.Equal(t, http.StatusBadGateway, w.Code)

	body := decodeBody[errorBody](t, w)
	assert.Contains(t, []string{"formatting_error", "cover_letter_error"}, body.Error)
	assert.NotEmpty(t, body.RequestID)
}

// readSSE splits an event stream into (event, data) pairs
func readSSE(t *testing.T, body string) [][2]string {
	t.Helper()
	var events [][2]string
	var name string
	sc := bufio.NewScanner(strings.NewReader(body))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			events = append(events, [2]string{name, strings.TrimPrefix(line, "data: ")})
		}
	}
	require.NoError(t, sc.Err())
	return events
}

func TestHandleTailorStream(t *testing.T) {
	s := newTestServer(t, testConfig(), &stubLLM{}, nil)

	w := do(t, s, http.MethodPost, "/tailor/stream", TailorRequest{ResumeText: sampleResume, JobText: sampleJD, Quick: true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	requestID := w.Header().Get("X-Request-ID")
	assert.True(t, strings.HasPrefix(w.Body.String(), "id: "+requestID+"-1\n"))

	events := readSSE(t, w.Body.String())
	require.GreaterOrEqual(t, len(events), 2)
	assert.Contains(t, w.Body.String(), fmt.Sprintf("id: %s-%d\n", requestID, len(events)))

	last := -1
	var steps []string
	for _, ev := range events[:len(events)-1] {
		require.Equal(t, eventStep, ev[0])
		var pe pipeline.ProgressEvent
		require.NoError(t, json.Unmarshal([]byte(ev[1]), &pe))
		assert.GreaterOrEqual(t, pe.Progress, last)
		last = pe.Progress
		steps = append(steps, string(pe.Step))
	}
	assert.Equal(t, "parsing", steps[0])
	assert.Equal(t, "complete", steps[len(steps)-1])

	final := events[len(events)-1]
	require.Equal(t, eventComplete, final[0])
	var outcome types.TailoringOutcome
	require.NoError(t, json.Unmarshal([]byte(final[1]), &outcome))
	assert.True(t, outcome.Quick)
}

func TestHandleTailorStream_Error(t *testing.T) {
	s := newTestServer(t, testConfig(), &stubLLM{err: errors.New("backend exploded")}, nil)

	w := do(t, s, http.MethodPost, "/tailor/stream", TailorRequest{ResumeText: sampleResume, JobText: sampleJD})
	require.Equal(t, http.StatusOK, w.Code)

	events := readSSE(t, w.Body.String())
	require.NotEmpty(t, events)
	final := events[len(events)-1]
	assert.Equal(t, eventError, final[0])
	var body errorBody
	require.NoError(t, json.Unmarshal([]byte(final[1]), &body))
	assert.NotEmpty(t, body.Error)
}

func TestOutcomes(t *testing.T) {
	stored := &types.TailoringOutcome{
		ID:           "2f1c4a52-3c1e-4d7b-9a53-0f0a3b7e9d11",
		MatchScore:   72,
		Requirements: &types.RequirementSet{Title: "Backend Engineer", Company: "Globex"},
		CreatedAt:    time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
	}
	store := &memOutcomes{items: map[string]*types.TailoringOutcome{stored.ID: stored}}
	s := newTestServer(t, testConfig(), &stubLLM{}, store)

	t.Run("list", func(t *testing.T) {
		w := do(t, s, http.MethodGet, "/outcomes?limit=5", nil)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeBody[OutcomeListResponse](t, w)
		assert.Equal(t, 5, resp.Limit)
		require.Len(t, resp.Outcomes, 1)
		assert.Equal(t, "Globex", resp.Outcomes[0].Company)
	})

	t.Run("empty page", func(t *testing.T) {
		w := do(t, s, http.MethodGet, "/outcomes?offset=10", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"outcomes":[]`)
	})

	t.Run("invalid limit", func(t *testing.T) {
		w := do(t, s, http.MethodGet, "/outcomes?limit=-1", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("get", func(t *testing.T) {
		w := do(t, s, http.MethodGet, "/outcomes/"+stored.ID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 72, decodeBody[types.TailoringOutcome](t, w).MatchScore)
	})

	t.Run("not found", func(t *testing.T) {
		w := do(t, s, http.MethodGet, "/outcomes/8d0b7c0e-9a7f-4b59-8f8c-6d7f0f6e7a10", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "not_found", decodeBody[errorBody](t, w).Error)
	})
}

func TestOutcomes_StoreErrors(t *testing.T) {
	s := newTestServer(t, testConfig(), &stubLLM{}, &memOutcomes{err: db.ErrInvalidID})
	w := do(t, s, http.MethodGet, "/outcomes/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	s = newTestServer(t, testConfig(), &stubLLM{}, &memOutcomes{err: errors.New("connection reset")})
	w = do(t, s, http.MethodGet, "/outcomes", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decodeBody[errorBody](t, w).Message)
}

func TestOutcomes_Unavailable(t *testing.T) {
	s := newTestServer(t, testConfig(), &stubLLM{}, nil)
	for _, path := range []string{"/outcomes", "/outcomes/abc"} {
		w := do(t, s, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, path)
	}
}

func TestAuthRequired(t *testing.T) {
	cfg := testConfig()
	cfg.JWT = config.JWTConfig{Secret: testSecret, ExpirationHours: 1, Required: true}
	s := newTestServer(t, cfg, &stubLLM{}, nil)

	w := do(t, s, http.MethodPost, "/parse", ParseRequest{ResumeText: sampleResume})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code, "health is public")

	token, err := NewJWTService(cfg.JWT).GenerateToken("ci-runner")
	require.NoError(t, err)
	w = do(t, s, http.MethodPost, "/parse", ParseRequest{ResumeText: sampleResume}, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
		TailorLimit:   1,
		TailorWindow:  time.Hour,
		Burst:         1,
	}
	s := newTestServer(t, cfg, &stubLLM{}, nil)

	body := TailorRequest{ResumeText: sampleResume, JobText: sampleJD}
	w := do(t, s, http.MethodPost, "/tailor/quick", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))

	w = do(t, s, http.MethodPost, "/tailor/quick", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limit_exceeded", decodeBody[map[string]any](t, w)["error"])

	w = do(t, s, http.MethodPost, "/parse", ParseRequest{ResumeText: sampleResume})
	assert.Equal(t, http.StatusOK, w.Code, "cheap endpoints use the default limit")
}

func TestCORS(t *testing.T) {
	cfg := testConfig()
	cfg.AllowedOrigins = []string{"https://app.example.com"}
	s := newTestServer(t, cfg, &stubLLM{}, nil)

	w := do(t, s, http.MethodOptions, "/tailor", nil, "Origin", "https://app.example.com")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")

	w = do(t, s, http.MethodGet, "/health", nil, "Origin", "https://evil.example.com")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
