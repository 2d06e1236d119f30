// internal/httpserver/server.go
//
// HTTP server wiring for the WikiWander backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health".
//   - Game endpoints: select/start/navigate/hint/restart/surrender/state,
//     all operating on the caller's own session (signed session cookie).
//   - Suggestion endpoints: input/dismiss/state per field.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Recoverable game failures ride inside the snapshot's errorMessage;
//     only malformed requests and setup validation get non-200 statuses.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/wikiwander/go-server/internal/game"
	"github.com/wikiwander/go-server/internal/store"
	"github.com/wikiwander/go-server/internal/suggest"
)

// Server bundles router, session registry, and the session factory.
type Server struct {
	r          *chi.Mux
	store      store.Store
	newSession func() *game.Session
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, newSession func() *game.Session) *Server {
	s := &Server{r: chi.NewRouter(), store: st, newSession: newSession}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(30 * time.Second)) // bound handler time (upstream fetches included)
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(corsFromEnv)                     // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"wikiwander-go","endpoints":["/health","POST /game/select","POST /game/start","POST /game/navigate","POST /game/hint","POST /game/restart","POST /game/surrender","GET /game/state","/suggest/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	// Game endpoints — each request is bound to the caller's session
	// through the signed session cookie.
	s.r.Route("/game", func(r chi.Router) {
		r.Post("/select", s.handleSelect)
		r.Post("/start", s.handleStart)
		r.Post("/navigate", s.handleNavigate)
		r.Post("/hint", s.handleHint)
		r.Post("/restart", s.handleRestart)
		r.Post("/surrender", s.handleSurrender)
		r.Get("/state", s.handleState)
	})

	// Suggestion endpoints (live search debouncer).
	s.r.Route("/suggest", func(r chi.Router) {
		r.Post("/input", s.handleSuggestInput)
		r.Post("/dismiss", s.handleSuggestDismiss)
		r.Get("/state", s.handleSuggestState)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromEnv enables credentialed CORS for a single origin.
// Uses CLIENT_ORIGIN env var; defaults to http://localhost:3000.
func corsFromEnv(next http.Handler) http.Handler {
	origin := os.Getenv("CLIENT_ORIGIN")
	if origin == "" {
		origin = "http://localhost:3000"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ GAME ---------------------------------------

// selectReq is the payload for POST /game/select. An empty title asks for
// a random article.
type selectReq struct {
	Role  string `json:"role"`            // "start" | "target"
	Title string `json:"title,omitempty"` // optional explicit title
}

// handleSelect resolves an article selection for one role.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	var req selectReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	role := game.Role(req.Role)
	if !role.Valid() {
		http.Error(w, `{"error":"role must be start or target"}`, http.StatusBadRequest)
		return
	}
	sess.SelectArticle(r.Context(), role, req.Title)
	writeSnapshot(w, sess)
}

// handleStart validates the setup and begins the game.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if err := sess.Start(r.Context()); err != nil {
		if errors.Is(err, game.ErrSetupIncomplete) || errors.Is(err, game.ErrDuplicateArticles) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Error().Err(err).Msg("start game")
		writeError(w, http.StatusInternalServerError, "failed to start game")
		return
	}
	writeSnapshot(w, sess)
}

// navigateReq is the payload for POST /game/navigate.
type navigateReq struct {
	Title string `json:"title"`
}

// handleNavigate follows an article link reported by the presentation layer.
func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	var req navigateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	sess.Navigate(r.Context(), req.Title)
	writeSnapshot(w, sess)
}

// handleHint requests an AI hint for the current/target pair.
func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	sess.RequestHint(r.Context())
	writeSnapshot(w, sess)
}

// handleRestart resets the session to its initial empty state.
func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	sess.Restart()
	writeSnapshot(w, sess)
}

// handleSurrender gives up an active game.
func (s *Server) handleSurrender(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	sess.Surrender()
	writeSnapshot(w, sess)
}

// handleState returns the current snapshot without mutating anything.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeSnapshot(w, s.session(w, r))
}

// ---------------------------- SUGGESTIONS ----------------------------------

// suggestReq is the payload for POST /suggest/input and /suggest/dismiss.
type suggestReq struct {
	Field string `json:"field"` // "start" | "target"
	Text  string `json:"text,omitempty"`
}

// handleSuggestInput records a keystroke for a field's debouncer.
func (s *Server) handleSuggestInput(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	var req suggestReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	field := suggest.Field(req.Field)
	if !field.Valid() {
		http.Error(w, `{"error":"field must be start or target"}`, http.StatusBadRequest)
		return
	}
	sess.SuggestInput(field, req.Text)
	writeJSON(w, sess.SuggestState(field))
}

// handleSuggestDismiss hides a field's suggestion panel.
func (s *Server) handleSuggestDismiss(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	var req suggestReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	field := suggest.Field(req.Field)
	if !field.Valid() {
		http.Error(w, `{"error":"field must be start or target"}`, http.StatusBadRequest)
		return
	}
	sess.DismissSuggestions(field)
	writeJSON(w, sess.SuggestState(field))
}

// handleSuggestState returns a field's suggestion state (?field=start|target).
func (s *Server) handleSuggestState(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	field := suggest.Field(r.URL.Query().Get("field"))
	if !field.Valid() {
		http.Error(w, `{"error":"field must be start or target"}`, http.StatusBadRequest)
		return
	}
	writeJSON(w, sess.SuggestState(field))
}

// ------------------------------ responses ----------------------------------

// writeSnapshot serializes the session's full game-state snapshot.
func writeSnapshot(w http.ResponseWriter, sess *game.Session) {
	writeJSON(w, sess.Snapshot())
}

func writeJSON(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// ------------------------------- small util --------------------------------

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
