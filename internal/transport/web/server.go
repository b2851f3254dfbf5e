// Package web serves the chat widget's JSON API over HTTP.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/sandevgo/folio/internal/core"
	"github.com/sandevgo/folio/internal/service/contact"
	"github.com/sandevgo/folio/internal/service/dialogue"
	"github.com/sandevgo/folio/internal/service/session"
	"github.com/sandevgo/folio/internal/service/state"
	"github.com/sandevgo/folio/pkg/log"
)

const (
	maxBodySize    = 16 << 10
	requestTimeout = 30 * time.Second
)

type contactSubmitter interface {
	Submit(ctx context.Context, sub core.ContactSubmission) (int64, error)
}

// Deps holds the collaborators of the API. Contact may be nil.
type Deps struct {
	Engine      *dialogue.Engine
	Contact     contactSubmitter
	SessionOpts []session.Option
}

// Server is a srv.Service running the HTTP API.
type Server struct {
	deps     Deps
	addr     string
	http     *http.Server
	sessions *state.Registry

	mu      sync.Mutex
	waiters map[string]*session.ReplyWaiter
}

func NewServer(ctx context.Context, cfg core.WebConfig, deps Deps) *Server {
	s := &Server{
		deps:    deps,
		addr:    cfg.GetWebAddr(),
		waiters: make(map[string]*session.ReplyWaiter),
	}
	s.sessions = state.NewRegistry(s.newSession,
		state.WithIdleTTL(cfg.GetSessionTTL()),
		state.WithMaxLive(cfg.GetMaxSessions()),
		state.WithOnDrop(s.forget),
	)
	s.http = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	return s
}

// Handler exposes the routes for tests and embedding.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/health", handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/links", s.handleLinks)
		r.Post("/sessions", s.handleCreateSession)
		r.Get("/sessions/{id}/messages", s.handleTranscript)
		r.Post("/sessions/{id}/messages", s.handleMessage)
		r.Delete("/sessions/{id}", s.handleDeleteSession)
		if s.deps.Contact != nil {
			r.Post("/contact", s.handleContact)
		}
	})
	return r
}

func (s *Server) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Str("addr", s.addr).Msg("starting web api")
	go func() { _ = s.sessions.Start(ctx) }()

	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web api: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	if serr := s.sessions.Shutdown(ctx); err == nil {
		err = serr
	}
	return err
}

func (s *Server) newSession(ctx context.Context, id string) *session.Session {
	waiter := session.NewReplyWaiter()

	s.mu.Lock()
	s.waiters[id] = waiter
	s.mu.Unlock()

	opts := append(slices.Clone(s.deps.SessionOpts), session.WithObserver(waiter))
	return session.New(ctx, id, s.deps.Engine, opts...)
}

func (s *Server) forget(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.waiters, id)
}

func (s *Server) waiter(id string) *session.ReplyWaiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waiters[id]
}

type messageRequest struct {
	Text string `json:"text"`
}

type messageResponse struct {
	Session string            `json:"session"`
	Intent  core.Intent       `json:"intent,omitempty"`
	Message core.Message      `json:"message"`
	Links   []core.LinkAction `json:"links,omitempty"`
}

type transcriptResponse struct {
	Session  string         `json:"session"`
	State    string         `json:"state"`
	Messages []core.Message `json:"messages"`
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": core.FolioVersion})
}

func (s *Server) handleLinks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Engine.LinkActions())
}

// handleCreateSession opens a new conversation and returns its greeting.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	sess, err := s.sessions.Get(r.Context(), id)
	if errors.Is(err, state.ErrFull) {
		httpError(w, http.StatusTooManyRequests, "busy", "too many open chats, try again later")
		return
	}
	if err != nil {
		httpError(w, http.StatusServiceUnavailable, "unavailable", "%v", err)
		return
	}
	if err := sess.Open(); err != nil {
		httpError(w, http.StatusServiceUnavailable, "unavailable", "%v", err)
		return
	}

	transcript := sess.Transcript()
	writeJSON(w, http.StatusCreated, messageResponse{
		Session: id,
		Message: transcript[0],
	})
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, ok := s.sessions.Lookup(id)
	if !ok {
		httpError(w, http.StatusNotFound, "not_found", "session %s not found", id)
		return
	}
	writeJSON(w, http.StatusOK, transcriptResponse{
		Session:  id,
		State:    sess.State().String(),
		Messages: sess.Transcript(),
	})
}

// handleMessage answers once the simulated typing delay has passed.
func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, ok := s.sessions.Lookup(id)
	waiter := s.waiter(id)
	if !ok || waiter == nil {
		httpError(w, http.StatusNotFound, "not_found", "session %s not found", id)
		return
	}

	var req messageRequest
	if !decode(w, r, &req) {
		return
	}

	reply, err := waiter.Ask(r.Context(), sess, req.Text)
	switch {
	case errors.Is(err, session.ErrEmptyInput):
		httpError(w, http.StatusBadRequest, "invalid_request_error", "text is required")
		return
	case errors.Is(err, session.ErrBusy):
		httpError(w, http.StatusTooManyRequests, "busy", "still answering, try again in a moment")
		return
	case errors.Is(err, session.ErrTornDown):
		httpError(w, http.StatusNotFound, "not_found", "session %s was closed", id)
		return
	case err != nil:
		log.FromCtx(r.Context()).Error().Err(err).Str("session", id).Msg("failed to answer message")
		httpError(w, http.StatusServiceUnavailable, "unavailable", "%v", err)
		return
	}

	resp := messageResponse{
		Session: id,
		Intent:  reply.Intent,
		Message: reply,
	}
	if reply.HasLinks {
		resp.Links = s.deps.Engine.LinkActions()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.sessions.Drop(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if !decode(w, r, &req) {
		return
	}

	id, err := s.deps.Contact.Submit(r.Context(), core.ContactSubmission{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	})
	if err != nil {
		var fe *contact.FieldError
		if errors.As(err, &fe) {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%s", fe.Error())
			return
		}
		httpError(w, http.StatusBadGateway, "api_error", "%s", contact.ErrTryAgainLater.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"id": id, "status": "sent"})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"message": fmt.Sprintf(format, args...),
			"type":    errType,
		},
	})
}
