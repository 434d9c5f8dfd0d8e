// internal/httpserver/routes_games.go
//
// HTTP routes for playing a game:
//   - POST   /games              → start a session (optional fixed seed)
//   - GET    /games/{id}         → current board, hidden symbols redacted
//   - POST   /games/{id}/new     → restart with a fresh deal
//   - POST   /games/{id}/select  → flip one card
//   - DELETE /games/{id}         → end the session
//
// Match resolution happens on the engine's timers after the response is sent;
// clients follow it on the /events websocket or by polling GET /games/{id}.

package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/memory/internal/events"
	"github.com/robalobadob/memory/internal/game"
	"github.com/robalobadob/memory/internal/session"
	"github.com/robalobadob/memory/internal/store"
)

func (s *Server) mountGames(r chi.Router) {
	r.Post("/games", s.handleNewGame)
	r.Route("/games/{id}", func(r chi.Router) {
		r.Get("/", s.handleGetGame)
		r.Post("/new", s.handleRestart)
		r.Post("/select", s.handleSelect)
		r.Delete("/", s.handleDeleteGame)
	})
}

// newGameReq/Res payloads for POST /games.
type newGameReq struct {
	Seed *uint64 `json:"seed"` // optional fixed deal (testing, shared boards)
}
type newGameRes struct {
	GameID   string          `json:"gameId"`
	Date     string          `json:"date,omitempty"`
	Snapshot events.Snapshot `json:"snapshot"`
}

// handleNewGame creates a session and stores it.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	// empty body means "random deal"
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	sess, ok := s.createSession(w, r, req.Seed)
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, newGameRes{GameID: sess.ID, Snapshot: sess.Snapshot()})
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request, seed *uint64) (*session.Session, bool) {
	sess := s.newSession(seed)
	if err := s.store.Save(r.Context(), sess); err != nil {
		sess.Close()
		reqLog(r).Error().Err(err).Msg("save session")
		writeError(w, http.StatusInternalServerError, "save_failed", "")
		return nil, false
	}
	reqLog(r).Info().Str("gameId", sess.ID).Msg("session created")
	return sess, true
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	sess.Restart()
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// selectReq is the payload for POST /games/{id}/select.
type selectReq struct {
	Position *int `json:"position" validate:"required"`
}

// handleSelect flips a card. Rejected selections answer 409 and change nothing.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req selectReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid", "position is required")
		return
	}
	if err := sess.Select(*req.Position); err != nil {
		if errors.Is(err, game.ErrInvalidSelection) {
			writeError(w, http.StatusConflict, "invalid_selection", err.Error())
			return
		}
		reqLog(r).Error().Err(err).Msg("select")
		writeError(w, http.StatusInternalServerError, "select_failed", "")
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusNotFound, "not_found", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// lookup resolves {id} or writes a 404.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			reqLog(r).Error().Err(err).Msg("get session")
		}
		writeError(w, http.StatusNotFound, "not_found", "")
		return nil, false
	}
	return sess, true
}
