// internal/httpserver/server.go
//
// HTTP server wiring for the memory-match backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health", "/debug/symbols".
//   - Game endpoints: create, inspect, restart, select, delete (routes_games.go).
//   - Board of the day: POST /daily/new (routes_daily.go).
//   - Event stream: GET /games/{id}/events websocket (ws.go).
//   - Periodic eviction of idle sessions.
//
// Notes:
//   - Sessions live only in memory; a restart drops every game.
//   - CORS is origin-aware (CLIENT_ORIGIN) so the browser client can call the API.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/memory/internal/clock"
	"github.com/robalobadob/memory/internal/config"
	"github.com/robalobadob/memory/internal/session"
	"github.com/robalobadob/memory/internal/store"
)

// Server bundles router, session store and game settings.
type Server struct {
	r        *chi.Mux
	store    store.Store
	symbols  []string
	cfg      config.Config
	clock    clock.Clock
	log      zerolog.Logger
	validate *validator.Validate
	upgrader websocket.Upgrader
	newID    func() string
}

// Option configures a Server.
type Option func(*Server)

// WithClock sets the clock used by every session. Defaults to the wall clock.
func WithClock(c clock.Clock) Option { return func(s *Server) { s.clock = c } }

// WithLogger sets the base logger. Defaults to the global zerolog logger.
func WithLogger(l zerolog.Logger) Option { return func(s *Server) { s.log = l } }

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, symbols []string, cfg config.Config, opts ...Option) *Server {
	s := &Server{
		r:        chi.NewRouter(),
		store:    st,
		symbols:  symbols,
		cfg:      cfg,
		clock:    clock.Real{},
		log:      log.Logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		newID:    uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)           // add X-Request-ID
	s.r.Use(chimw.RealIP)              // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(hlog.NewHandler(s.log))    // request-scoped logger
	s.r.Use(chimw.Recoverer)           // recover from panics
	s.r.Use(jsonContentType)           // default JSON responses
	s.r.Use(corsFor(cfg.ClientOrigin)) // CORS for the browser client

	// --- websocket (no timeout, no access-log writer wrapping) ---
	s.r.Get("/games/{id}/events", s.handleEvents)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(cfg.RequestTimeout)) // bound handler time
		r.Use(accessLog)

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"service":"memory-go","endpoints":["/health","POST /games","POST /games/{id}/select","POST /games/{id}/new","GET /games/{id}/events","POST /daily/new"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		r.Get("/debug/symbols", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]int{"symbols": len(s.symbols), "cards": 2 * len(s.symbols)})
		})

		s.mountGames(r)
		s.mountDaily(r)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", r.URL.Path)
	})

	return s
}

// Start serves HTTP on addr until ctx is cancelled, sweeping idle sessions meanwhile.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 5 * time.Second}

	go s.sweepLoop(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// newSession builds a session with the server's symbols, clock and timing.
func (s *Server) newSession(seed *uint64) *session.Session {
	return session.New(s.newID(), s.symbols, session.Options{
		Clock:  s.clock,
		Timing: s.cfg.Timing(),
		Seed:   seed,
		Logger: s.log,
	})
}

// sweepLoop evicts sessions idle for longer than SESSION_TTL.
func (s *Server) sweepLoop(ctx context.Context) {
	if s.cfg.SweepInterval <= 0 || s.cfg.SessionTTL <= 0 {
		return
	}
	t := time.NewTicker(s.cfg.SweepInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.store.Sweep(ctx, s.clock.Now().Add(-s.cfg.SessionTTL)); n > 0 {
				s.log.Info().Int("evicted", n).Int("live", s.store.Len()).Msg("swept idle sessions")
			}
		}
	}
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFor enables CORS for a single origin.
func corsFor(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// accessLog writes one line per request with the request ID.
var accessLog = hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("requestId", chimw.GetReqID(r.Context())).
		Int("status", status).
		Int("size", size).
		Dur("duration", d).
		Msg("request")
})

// checkOrigin accepts same-host requests and the configured client origin.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "" || origin == s.cfg.ClientOrigin || origin == "http://"+r.Host || origin == "https://"+r.Host
}

// ------------------------------- helpers -----------------------------------

// reqLog returns the request-scoped logger.
func reqLog(r *http.Request) *zerolog.Logger { return hlog.FromRequest(r) }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorRes struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, reason string) {
	writeJSON(w, status, errorRes{Error: code, Reason: reason})
}
