// Package server exposes the loan calculator over HTTP.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/iwvelando/loan-calculator/internal/cache"
	"github.com/iwvelando/loan-calculator/internal/calculator"
	"github.com/iwvelando/loan-calculator/internal/config"
	"github.com/iwvelando/loan-calculator/pkg/amortization"
	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/output"
	"github.com/iwvelando/loan-calculator/pkg/validation"
	"go.uber.org/zap"
)

// RequestIDHeader carries the request ID on requests and responses.
const RequestIDHeader = "X-Request-ID"

// Server routes API requests to the calculator.
type Server struct {
	logger      *zap.Logger
	maxBodySize int64
	version     string
	cache       cache.Cache
	limiter     *RateLimiter
	router      chi.Router
}

// New constructs the HTTP handler. A nil cache disables response caching.
// Close releases the rate limiter.
func New(logger *zap.Logger, cfg *Config, c cache.Cache) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	maxBodySize := cfg.BodySizeBytes()
	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodySizeBytes
	}

	version := strings.TrimSpace(cfg.Version)
	if version == "" {
		version = "dev"
	}

	s := &Server{
		logger:      logger,
		maxBodySize: maxBodySize,
		version:     version,
		cache:       c,
	}
	if cfg.RateLimit.Requests > 0 {
		s.limiter = NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}

	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			s.logger.Error("failed to write health check response", zap.Error(err))
		}
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", s.handleVersion)

		r.Group(func(r chi.Router) {
			if s.limiter != nil {
				r.Use(s.rateLimit)
			}
			r.Post("/summary", s.handleSummary)
			r.Post("/schedule", s.handleSchedule)
			r.Post("/compare", s.handleCompare)
			r.Post("/report", s.handleReport)
		})
	})

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close stops background work started by New.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

type summaryResponse struct {
	Terms   amortization.LoanTerms   `json:"terms"`
	Summary amortization.LoanSummary `json:"summary"`
}

type scheduleResponse struct {
	Terms    amortization.LoanTerms      `json:"terms"`
	Summary  amortization.LoanSummary    `json:"summary"`
	Schedule []amortization.ScheduleRow `json:"schedule"`
	Totals   amortization.Totals         `json:"totals"`
}

type compareRequest struct {
	A validation.TermsInput `json:"a"`
	B validation.TermsInput `json:"b"`
}

type compareResponse struct {
	A          amortization.LoanSummary `json:"a"`
	B          amortization.LoanSummary `json:"b"`
	Difference amortization.LoanSummary `json:"difference"`
}

type reportResponse struct {
	Scenarios   []scenarioResult   `json:"scenarios"`
	Comparisons []comparisonResult `json:"comparisons"`
	CSV         string             `json:"csv"`
	Warnings    []string           `json:"warnings,omitempty"`
	Duration    string             `json:"duration"`
}

type scenarioResult struct {
	Name      string                     `json:"name"`
	Terms     amortization.LoanTerms     `json:"terms"`
	StartDate string                     `json:"startDate,omitempty"`
	Summary   *amortization.LoanSummary  `json:"summary,omitempty"`
	Schedule  []amortization.ScheduleRow `json:"schedule,omitempty"`
	Totals    *amortization.Totals       `json:"totals,omitempty"`
	Error     string                     `json:"error,omitempty"`
}

type comparisonResult struct {
	Name       string                    `json:"name"`
	A          string                    `json:"a"`
	B          string                    `json:"b"`
	Summaries  *amortization.Comparison  `json:"summaries,omitempty"`
	Difference *amortization.LoanSummary `json:"difference,omitempty"`
	Error      string                    `json:"error,omitempty"`
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"version": s.version,
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSummary"

	terms, ok := s.decodeTerms(w, r, op)
	if !ok {
		return
	}

	s.cached(w, r, cache.Key("summary", terms), op, func() (interface{}, error) {
		summary, err := amortization.ComputeSummary(terms)
		if err != nil {
			return nil, err
		}
		return summaryResponse{Terms: terms, Summary: summary}, nil
	})
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSchedule"

	terms, ok := s.decodeTerms(w, r, op)
	if !ok {
		return
	}

	s.cached(w, r, cache.Key("schedule", terms), op, func() (interface{}, error) {
		summary, err := amortization.ComputeSummary(terms)
		if err != nil {
			return nil, err
		}
		schedule, err := amortization.GenerateSchedule(terms)
		if err != nil {
			return nil, err
		}
		return scheduleResponse{
			Terms:    terms,
			Summary:  summary,
			Schedule: schedule,
			Totals:   amortization.ScheduleTotals(schedule),
		}, nil
	})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCompare"

	var req compareRequest
	if !s.decodeJSON(w, r, &req, op) {
		return
	}
	if err := validation.ValidateTerms(req.A); err != nil {
		s.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("scenario A: %v", err), op)
		return
	}
	if err := validation.ValidateTerms(req.B); err != nil {
		s.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("scenario B: %v", err), op)
		return
	}

	c, err := amortization.Compare(req.A.Terms(), req.B.Terms())
	if err != nil {
		s.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}

	s.writeJSON(w, http.StatusOK, compareResponse{A: c.A, B: c.B, Difference: c.Difference()})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleReport"
	start := time.Now()

	data, ok := s.readBody(w, r, op)
	if !ok {
		return
	}

	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(data))
	if err != nil {
		s.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}

	warnings := cfg.ValidateConfiguration()
	report := calculator.Calculate(s.logger, *cfg)
	elapsed := time.Since(start)

	response := reportResponse{
		Scenarios:   buildScenarios(report),
		Comparisons: buildComparisons(report),
		CSV:         output.CsvString(report),
		Warnings:    warnings,
		Duration:    elapsed.String(),
	}

	s.logger.Info("report computed",
		zap.String("op", op),
		zap.Int("scenarios", len(response.Scenarios)),
		zap.Int("comparisons", len(response.Comparisons)),
		zap.Int("warnings", len(warnings)),
		zap.Duration("duration", elapsed),
	)

	s.writeJSON(w, http.StatusOK, response)
}

func buildScenarios(report calculator.Report) []scenarioResult {
	scenarios := make([]scenarioResult, 0, len(report.Results))
	for _, result := range report.Results {
		sr := scenarioResult{
			Name:      result.Name,
			Terms:     result.Terms,
			StartDate: result.StartDate,
		}
		if result.Err != nil {
			sr.Error = result.Err.Error()
		} else {
			summary := result.Summary
			sr.Summary = &summary
			if len(result.Schedule) > 0 {
				totals := result.Totals
				sr.Schedule = result.Schedule
				sr.Totals = &totals
			}
		}
		scenarios = append(scenarios, sr)
	}
	return scenarios
}

func buildComparisons(report calculator.Report) []comparisonResult {
	comparisons := make([]comparisonResult, 0, len(report.Comparisons))
	for _, comparison := range report.Comparisons {
		cr := comparisonResult{
			Name: comparison.Name,
			A:    comparison.A,
			B:    comparison.B,
		}
		if comparison.Err != nil {
			cr.Error = comparison.Err.Error()
		} else {
			c := comparison.Comparison
			diff := c.Difference()
			cr.Summaries = &c
			cr.Difference = &diff
		}
		comparisons = append(comparisons, cr)
	}
	return comparisons
}

// decodeTerms reads and validates a loan terms body, answering the request
// itself when it is unusable.
func (s *Server) decodeTerms(w http.ResponseWriter, r *http.Request, op string) (amortization.LoanTerms, bool) {
	var in validation.TermsInput
	if !s.decodeJSON(w, r, &in, op) {
		return amortization.LoanTerms{}, false
	}
	if err := validation.ValidateTerms(in); err != nil {
		s.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return amortization.LoanTerms{}, false
	}
	return in.Terms(), true
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	data, ok := s.readBody(w, r, op)
	if !ok {
		return false
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		s.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request, op string) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodySize)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			s.respondErrorWithOp(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", s.maxBodySize), op)
			return nil, false
		}
		s.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to read request: %v", err), op)
		return nil, false
	}
	return data, true
}

// cached serves key from the cache when possible and otherwise stores the
// freshly computed payload.
func (s *Server) cached(w http.ResponseWriter, r *http.Request, key, op string, compute func() (interface{}, error)) {
	if s.cache != nil {
		if body, ok := s.cache.Get(r.Context(), key); ok {
			w.Header().Set("X-Cache", "HIT")
			s.writeRaw(w, http.StatusOK, body)
			return
		}
	}

	payload, err := compute()
	if err != nil {
		s.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		s.respondErrorWithOp(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to encode response: %v", err), op)
		return
	}

	if s.cache != nil {
		w.Header().Set("X-Cache", "MISS")
		if err := s.cache.Set(r.Context(), key, body); err != nil {
			s.logger.Warn("failed to cache response",
				zap.String("op", op),
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}
	s.writeRaw(w, http.StatusOK, body)
}

func (s *Server) respondErrorWithOp(w http.ResponseWriter, r *http.Request, status int, msg string, op string) {
	s.logger.Error("request failed",
		zap.String("op", op),
		zap.String("requestID", RequestIDFromRequest(r)),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func (s *Server) writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		s.logger.Error("failed to write JSON response", zap.Error(err))
		return
	}
	_, _ = w.Write([]byte("\n"))
}

// requestID tags every request with an ID, keeping one supplied by the client.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" {
			id = uuid.New().String()
		}
		r.Header.Set(RequestIDHeader, id)
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// RequestIDFromRequest returns the ID assigned to r, if any.
func RequestIDFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	return r.Header.Get(RequestIDHeader)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info("request served",
			zap.String("op", "server.requestLogger"),
			zap.String("requestID", RequestIDFromRequest(r)),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remoteAddr", r.RemoteAddr),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
