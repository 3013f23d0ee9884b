// Package httpadapter serves the JSON API over chi.
package httpadapter

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"

	"marketpush/internal/domain"
	"marketpush/internal/ports"
)

const (
	serviceName   = "marketpush"
	healthTimeout = 3 * time.Second
)

type pinger interface {
	Ping(ctx context.Context) error
}

// Server holds the handlers. Every dependency is injected; the quota in
// particular is process state owned by the caller.
type Server struct {
	log      *slog.Logger
	verifier ports.Verifier
	messages ports.Messages
	profiles ports.Profiles
	quota    ports.Quota
	catalog  pinger
	clock    clockwork.Clock
}

func New(
	logger *slog.Logger,
	verifier ports.Verifier,
	messages ports.Messages,
	profiles ports.Profiles,
	quota ports.Quota,
	catalog pinger,
	clock clockwork.Clock,
) *Server {
	return &Server{
		log:      logger.With("adapter", "http"),
		verifier: verifier,
		messages: messages,
		profiles: profiles,
		quota:    quota,
		catalog:  catalog,
		clock:    clock,
	}
}

// Routes mounts every endpoint under /api.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(Chain(RequestID, Logger(s.log), Recovery(s.log)))
	r.Route("/api", func(r chi.Router) {
		r.Post("/verify", s.handleVerify)
		r.Post("/generate", s.handleCompose)
		r.Post("/push/generate", s.handlePush)
		r.Post("/email/generate", s.handleEmail)
		r.Get("/user/{userId}/profile", s.handleProfile)
		r.Get("/rate-limit/status", s.handleQuotaStatus)
		r.Get("/health", s.handleHealth)
	})
	return r
}

// ---------------------------------------------------------------------------
// Verify
// ---------------------------------------------------------------------------

type verifyRequest struct {
	UserID      string             `json:"userId"`
	Market      string             `json:"market"`
	Now         time.Time          `json:"now"`
	Channel     domain.Channel     `json:"channel"`
	Locale      string             `json:"locale"`
	Constraints domain.Constraints `json:"constraints"`
	Candidates  []domain.Candidate `json:"candidates"`
}

type verifyResponse struct {
	Results []domain.VerifyResult `json:"results"`
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	if !req.Channel.IsValid() {
		writeServiceError(w, domain.NewValidationError("channel", "must be PUSH or EMAIL"))
		return
	}
	results := s.verifier.Verify(r.Context(), req.Candidates, domain.VerifyContext{
		UserID:      req.UserID,
		Market:      req.Market,
		Now:         req.Now,
		Channel:     req.Channel,
		Locale:      req.Locale,
		Constraints: req.Constraints,
	})
	writeJSON(w, http.StatusOK, verifyResponse{Results: results})
}

// ---------------------------------------------------------------------------
// Generation
// ---------------------------------------------------------------------------

type quotaInfo struct {
	Remaining int64     `json:"remaining"`
	ResetAt   time.Time `json:"resetAt"`
}

type composeError struct {
	Success       bool       `json:"success"`
	Error         string     `json:"error"`
	RateLimitInfo *quotaInfo `json:"rateLimitInfo,omitempty"`
}

func (s *Server) handleCompose(w http.ResponseWriter, r *http.Request) {
	var req domain.ComposeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, err)
		return
	}

	res, err := s.messages.Compose(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, res)
	case errors.Is(err, domain.ErrQuotaExceeded):
		resp := composeError{Error: res.Error}
		if st, qerr := s.quota.Status(r.Context()); qerr == nil {
			resp.RateLimitInfo = &quotaInfo{Remaining: st.Remaining, ResetAt: st.ResetAt}
		}
		writeJSON(w, http.StatusTooManyRequests, resp)
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusBadRequest, composeError{Error: err.Error()})
	default:
		s.log.ErrorContext(r.Context(), "compose failed",
			slog.String("user_id", req.UserID),
			slog.String("error", err.Error()),
		)
		msg := res.Error
		if msg == "" {
			msg = "internal server error"
		}
		writeJSON(w, statusFor(err), composeError{Error: msg})
	}
}

type userRequest struct {
	UserID string `json:"userId"`
}

func (s *Server) handlePush(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	content, err := s.messages.GeneratePush(r.Context(), req.UserID)
	if err != nil {
		s.logFailure(r.Context(), "push generation failed", req.UserID, err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, content)
}

func (s *Server) handleEmail(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	content, err := s.messages.GenerateEmail(r.Context(), req.UserID)
	if err != nil {
		s.logFailure(r.Context(), "email generation failed", req.UserID, err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, content)
}

// ---------------------------------------------------------------------------
// Profile, quota, health
// ---------------------------------------------------------------------------

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	p, err := s.profiles.GetProfile(r.Context(), userID)
	if err != nil {
		s.logFailure(r.Context(), "profile failed", userID, err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleQuotaStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.quota.Status(r.Context())
	if err != nil {
		s.logFailure(r.Context(), "quota status failed", "", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	status, code := "ok", http.StatusOK
	if err := s.catalog.Ping(ctx); err != nil {
		s.log.WarnContext(ctx, "catalog ping failed", slog.String("error", err.Error()))
		status, code = "down", http.StatusServiceUnavailable
	}
	writeJSON(w, code, healthResponse{Status: status, Timestamp: s.clock.Now().UTC(), Service: serviceName})
}

func (s *Server) logFailure(ctx context.Context, msg, userID string, err error) {
	if errors.Is(err, domain.ErrValidation) {
		return
	}
	s.log.ErrorContext(ctx, msg, slog.String("user_id", userID), slog.String("error", err.Error()))
}
