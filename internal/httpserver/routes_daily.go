// internal/httpserver/routes_daily.go
//
// HTTP route for the "board of the day".
//   - POST /daily/new → start a session dealt from today's seed
//
// Every daily session on the same UTC date gets the same layout, and restarting
// a daily session deals that layout again. Seeds come from HMAC(DAILY_SALT, date).

package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/memory/internal/daily"
)

// mountDaily registers /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Post("/daily/new", s.handleDailyNew)
}

// handleDailyNew creates a session seeded from the current date.
func (s *Server) handleDailyNew(w http.ResponseWriter, r *http.Request) {
	now := s.clock.Now()
	seed := daily.Seed(now, s.cfg.DailySalt)
	sess, ok := s.createSession(w, r, &seed)
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, newGameRes{
		GameID:   sess.ID,
		Date:     daily.DateKey(now),
		Snapshot: sess.Snapshot(),
	})
}
