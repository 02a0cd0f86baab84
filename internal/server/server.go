package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/resume-matcher/internal/config"
	"github.com/jonathan/resume-matcher/internal/db"
	"github.com/jonathan/resume-matcher/internal/logger"
	"github.com/jonathan/resume-matcher/internal/matching"
	"github.com/jonathan/resume-matcher/internal/parsing"
	"github.com/jonathan/resume-matcher/internal/pipeline"
	"github.com/jonathan/resume-matcher/internal/scoring"
	"github.com/jonathan/resume-matcher/internal/server/middleware"
	"github.com/jonathan/resume-matcher/internal/server/ratelimit"
	"github.com/jonathan/resume-matcher/internal/types"
)

// OutcomeStore reads persisted tailoring outcomes
type OutcomeStore interface {
	GetOutcome(ctx context.Context, id string) (*types.TailoringOutcome, error)
	ListOutcomes(ctx context.Context, limit, offset int) ([]db.OutcomeSummary, error)
}

// Deps are the components the handlers call. Orchestrator is required; the
// others default to the stock implementations, and a nil Outcomes disables
// the history endpoints.
type Deps struct {
	Orchestrator *pipeline.Orchestrator
	Analyzer     *parsing.Analyzer
	Engine       *matching.Engine
	Aggregator   *scoring.Aggregator
	Outcomes     OutcomeStore
	Logger       *zap.Logger
}

// Server represents the HTTP server
type Server struct {
	httpServer   *http.Server
	orchestrator *pipeline.Orchestrator
	analyzer     *parsing.Analyzer
	engine       *matching.Engine
	aggregator   *scoring.Aggregator
	outcomes     OutcomeStore
	rateLimiter  *ratelimit.Limiter
	jwtService   *JWTService
	cfg          config.ServerConfig
	logger       *zap.Logger
}

type contextKey string

const requestIDKey contextKey = "request_id"

// New creates a new server instance
func New(cfg config.ServerConfig, deps Deps) (*Server, error) {
	if deps.Orchestrator == nil {
		return nil, fmt.Errorf("server requires an orchestrator")
	}

	s := &Server{
		orchestrator: deps.Orchestrator,
		analyzer:     deps.Analyzer,
		engine:       deps.Engine,
		aggregator:   deps.Aggregator,
		outcomes:     deps.Outcomes,
		rateLimiter:  ratelimit.NewLimiter(ratelimit.FromSettings(cfg.RateLimit)),
		cfg:          cfg,
		logger:       logger.OrNop(deps.Logger),
	}
	if s.analyzer == nil {
		s.analyzer = parsing.NewAnalyzer(nil, parsing.WithLogger(s.logger))
	}
	if s.engine == nil {
		s.engine = matching.NewEngine(matching.DefaultThresholds())
	}
	if s.aggregator == nil {
		s.aggregator = scoring.NewAggregator(scoring.DefaultWeights())
	}
	if cfg.JWT.Enabled() {
		s.jwtService = NewJWTService(cfg.JWT)
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Long timeout for streaming tailoring runs
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	api := http.NewServeMux()
	api.HandleFunc("POST /parse", s.handleParse)
	api.HandleFunc("POST /analyze", s.handleAnalyze)
	api.HandleFunc("POST /match", s.handleMatch)
	api.HandleFunc("POST /tailor", s.handleTailor)
	api.HandleFunc("POST /tailor/quick", s.handleTailorQuick)
	api.HandleFunc("POST /tailor/stream", s.handleTailorStream)
	api.HandleFunc("GET /outcomes", s.handleListOutcomes)
	api.HandleFunc("GET /outcomes/{id}", s.handleGetOutcome)

	var protected http.Handler = api
	if s.jwtService != nil {
		protected = middleware.Auth(s.jwtService.AsTokenValidator(), s.cfg.JWT.Required)(api)
	}
	mux.Handle("/", protected)

	return s.withLogging(s.withCORS(s.withRateLimit(mux)))
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening",
			zap.String("addr", s.httpServer.Addr),
			zap.Bool("auth", s.jwtService != nil),
			zap.Bool("history", s.outcomes != nil))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.rateLimiter.Stop()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.rateLimiter.Stop()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// Close releases background resources without serving
func (s *Server) Close() {
	s.rateLimiter.Stop()
}

// withCORS adds CORS headers for allowed origins and answers preflight requests
func (s *Server) withCORS(next http.Handler) http.Handler {
	allowAll := len(s.cfg.AllowedOrigins) == 0 || slices.Contains(s.cfg.AllowedOrigins, "*")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case allowAll:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(s.cfg.AllowedOrigins, origin):
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withRateLimit rejects clients that exhausted their token bucket
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(clientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code while keeping streaming support
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// FlushError lets http.ResponseController report writers that cannot stream
func (r *statusRecorder) FlushError() error {
	if err := http.NewResponseController(r.ResponseWriter).Flush(); err != nil {
		return err
	}
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return nil
}

func (r *statusRecorder) Flush() { _ = r.FlushError() }

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// withLogging assigns a request ID and logs every request with its status and duration
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), requestIDKey, requestID)))

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
			zap.String(logger.FieldRequestID, requestID))
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// clientID identifies the caller by the IP in RemoteAddr
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}
	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	s.logger.Warn("rate limit exceeded",
		zap.String("client", clientID(r)),
		zap.String("path", r.URL.Path),
		zap.Int("limit", info.Limit))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode JSON response", zap.Error(err))
	}
}

// errorBody is the JSON shape of every error response and SSE error event
type errorBody struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) errorBodyFor(ctx context.Context, err error) errorBody {
	body := errorBody{Error: errorCode(err), Message: err.Error(), RequestID: requestIDFrom(ctx)}
	var terr *pipeline.TailoringError
	if errors.As(err, &terr) {
		body.Message = terr.Message
	}
	if HTTPStatus(err) == http.StatusInternalServerError && terr == nil {
		body.Message = "internal server error"
	}
	return body
}

// errorResponse writes an error JSON response with the status HTTPStatus assigns
func (s *Server) errorResponse(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String(logger.FieldRequestID, requestIDFrom(r.Context())),
			zap.Error(err))
	}
	s.jsonResponse(w, status, s.errorBodyFor(r.Context(), err))
}
