// internal/httpserver/ws.go
//
// GET /games/{id}/events: websocket stream of a session's events.

package httpserver

import (
	"net/http"
)

// handleEvents upgrades to a websocket that streams the session's events.
// The first message is a snapshot of the board; afterwards every engine
// notification is forwarded. Clients may send {"type":"select","payload":{"position":n}}
// or {"type":"new"}.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		reqLog(r).Debug().Err(err).Msg("ws upgrade")
		return
	}
	if _, err := sess.Attach(conn); err != nil {
		reqLog(r).Debug().Err(err).Str("gameId", sess.ID).Msg("ws attach")
		_ = conn.Close()
		return
	}
	reqLog(r).Info().Str("gameId", sess.ID).Int("subscribers", sess.Hub().Len()).Msg("ws attached")
}
