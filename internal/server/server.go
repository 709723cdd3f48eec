// Package server exposes generation, scoring and result collection over
// HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/abhisek/quizprep/internal/llm"
	"github.com/abhisek/quizprep/internal/quiz"
	"github.com/abhisek/quizprep/internal/quizgen"
	"github.com/abhisek/quizprep/internal/report"
	"github.com/abhisek/quizprep/internal/scoring"
	"github.com/abhisek/quizprep/internal/session"
	"github.com/abhisek/quizprep/internal/store"
)

// maxBody bounds request bodies. Source documents dominate.
const maxBody = 10 << 20

// Options configures a Server.
type Options struct {
	Pipeline *quizgen.Pipeline
	Results  store.ResultRepo

	// Forward, when set, also receives every collected result.
	Forward session.Notifier

	// Defaults fill generation requests that omit count or difficulty.
	DefaultCount      int
	DefaultDifficulty string
	PassThreshold     float64

	CORSOrigins []string
	Timeout     time.Duration
	Logger      *log.Logger
}

// Server is the HTTP API.
type Server struct {
	opts   Options
	logger *log.Logger
	router chi.Router
}

// New builds the router.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 3 * time.Minute
	}
	if opts.PassThreshold <= 0 {
		opts.PassThreshold = scoring.DefaultPassThreshold
	}
	s := &Server{opts: opts, logger: opts.Logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(opts.Timeout))
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/api", func(r chi.Router) {
		r.Post("/generate", s.handleGenerate)
		r.Post("/score", s.handleScore)
		r.Route("/results", func(r chi.Router) {
			r.Post("/", s.handleSubmitResult)
			r.Get("/", s.handleListResults)
		})
	})

	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type errResp struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, errResp{Error: err.Error()})
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if s.opts.Pipeline == nil {
		respondError(w, http.StatusServiceUnavailable, errors.New("generation is not configured"))
		return
	}

	var req quizgen.Request
	if err := decode(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.Count <= 0 {
		req.Count = s.opts.DefaultCount
	}
	if req.Difficulty == "" {
		req.Difficulty = s.opts.DefaultDifficulty
	}

	ctx := llm.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
	res, err := s.opts.Pipeline.Run(ctx, req)
	if err != nil {
		s.logger.Printf("generate: %v", err)
		respondError(w, generateStatus(err), err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// generateStatus maps pipeline failures to HTTP status codes.
func generateStatus(err error) int {
	var exhausted *quizgen.ExhaustedError
	switch {
	case errors.Is(err, quizgen.ErrUnknownProvider), errors.Is(err, llm.ErrMissingAPIKey):
		return http.StatusBadRequest
	case errors.As(err, &exhausted), errors.Is(err, quizgen.ErrNoQuestions):
		return http.StatusBadGateway
	case errors.Is(err, quizgen.ErrNoProviders):
		return http.StatusServiceUnavailable
	case llm.IsQuota(err):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	var unavailable *llm.ErrProviderUnavailable
	var invalid *llm.ErrInvalidResponse
	if errors.As(err, &unavailable) || errors.As(err, &invalid) {
		return http.StatusBadGateway
	}
	return http.StatusBadRequest
}

type scoreRequest struct {
	Questions []quiz.Question                 `json:"questions"`
	Answers   map[quiz.QuestionID]quiz.Answer `json:"answers"`
	Threshold float64                         `json:"threshold"`
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := decode(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if err := quiz.Validate(req.Questions); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	threshold := req.Threshold
	if threshold <= 0 {
		threshold = s.opts.PassThreshold
	}
	respondJSON(w, http.StatusOK, scoring.Score(req.Questions, req.Answers, threshold))
}

func (s *Server) handleSubmitResult(w http.ResponseWriter, r *http.Request) {
	if s.opts.Results == nil {
		respondError(w, http.StatusServiceUnavailable, errors.New("result storage is not configured"))
		return
	}

	var sub session.Submission
	if err := decode(w, r, &sub); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if sub.SessionID == "" || sub.Category == "" {
		respondError(w, http.StatusBadRequest, errors.New("sessionId and category are required"))
		return
	}

	id, err := report.Save(r.Context(), s.opts.Results, sub)
	if err != nil {
		s.logger.Printf("save result: %v", err)
		respondError(w, http.StatusInternalServerError, errors.New("could not store result"))
		return
	}

	if s.opts.Forward != nil {
		if err := s.opts.Forward.Notify(r.Context(), sub); err != nil {
			s.logger.Printf("warning: forward result %s: %v", id, err)
		}
	}
	respondJSON(w, http.StatusCreated, map[string]string{"id": id})
}

type resultView struct {
	ID             string          `json:"id"`
	Timestamp      time.Time       `json:"timestamp"`
	SessionID      string          `json:"sessionId"`
	Category       string          `json:"category"`
	Nickname       string          `json:"nickname,omitempty"`
	Score          float64         `json:"score"`
	TotalQuestions int             `json:"totalQuestions"`
	UserAnswers    json.RawMessage `json:"userAnswers"`
}

func (s *Server) handleListResults(w http.ResponseWriter, r *http.Request) {
	if s.opts.Results == nil {
		respondError(w, http.StatusServiceUnavailable, errors.New("result storage is not configured"))
		return
	}

	opts := store.QueryOpts{Category: r.URL.Query().Get("category"), Limit: 50}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", v))
			return
		}
		opts.Limit = n
	}

	recs, err := s.opts.Results.List(r.Context(), opts)
	if err != nil {
		s.logger.Printf("list results: %v", err)
		respondError(w, http.StatusInternalServerError, errors.New("could not list results"))
		return
	}

	out := make([]resultView, len(recs))
	for i, rec := range recs {
		out[i] = resultView{
			ID:             rec.ID,
			Timestamp:      rec.Timestamp,
			SessionID:      rec.SessionID,
			Category:       rec.Category,
			Nickname:       rec.Nickname,
			Score:          rec.Score,
			TotalQuestions: rec.TotalQuestions,
			UserAnswers:    rec.UserAnswers,
		}
	}
	respondJSON(w, http.StatusOK, out)
}
