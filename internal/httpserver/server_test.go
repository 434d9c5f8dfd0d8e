package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/memory/internal/clock"
	"github.com/robalobadob/memory/internal/config"
	"github.com/robalobadob/memory/internal/daily"
	"github.com/robalobadob/memory/internal/events"
	"github.com/robalobadob/memory/internal/game"
	"github.com/robalobadob/memory/internal/store"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Parse()
	require.NoError(t, err)
	return cfg
}

func newTestServer(t *testing.T, symbols ...string) (*Server, *clock.Fake, store.Store) {
	t.Helper()
	c := clock.NewFake(time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC))
	st := store.NewMemoryStore()
	srv := New(st, symbols, testConfig(t), WithClock(c), WithLogger(zerolog.Nop()))
	return srv, c, st
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func createGame(t *testing.T, srv *Server, body string) newGameRes {
	t.Helper()
	rec := do(t, srv, http.MethodPost, "/games", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var res newGameRes
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func decodeSnapshot(t *testing.T, rec *httptest.ResponseRecorder) events.Snapshot {
	t.Helper()
	var snap events.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	return snap
}

func TestHealth(t *testing.T) {
	srv, _, _ := newTestServer(t, "A", "B")
	rec := do(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}

func TestDebugSymbols(t *testing.T) {
	srv, _, _ := newTestServer(t, "A", "B", "C")
	rec := do(t, srv, http.MethodGet, "/debug/symbols", "")
	assert.JSONEq(t, `{"symbols":3,"cards":6}`, rec.Body.String())
}

func TestCreateGameRedactsBoard(t *testing.T) {
	srv, _, st := newTestServer(t, "A", "B", "C", "D")
	res := createGame(t, srv, "")

	assert.NotEmpty(t, res.GameID)
	assert.Equal(t, 1, st.Len())
	require.Len(t, res.Snapshot.Cards, 8)
	for _, c := range res.Snapshot.Cards {
		assert.Equal(t, game.CardHidden, c.State)
		assert.Empty(t, c.SymbolID)
	}
	assert.Equal(t, game.TurnIdle, res.Snapshot.Turn)
	assert.Equal(t, "00:00", res.Snapshot.Elapsed)
}

func TestSeededGamesShareLayout(t *testing.T) {
	srv, _, _ := newTestServer(t, "A", "B", "C", "D")
	reveal := func(id string) []string {
		var syms []string
		for p := 0; p < 8; p += 2 {
			rec := do(t, srv, http.MethodPost, "/games/"+id+"/new", "")
			require.Equal(t, http.StatusOK, rec.Code)
			require.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/games/"+id+"/select", `{"position":`+strconv.Itoa(p)+`}`).Code)
			rec = do(t, srv, http.MethodPost, "/games/"+id+"/select", `{"position":`+strconv.Itoa(p+1)+`}`)
			require.Equal(t, http.StatusOK, rec.Code)
			snap := decodeSnapshot(t, rec)
			syms = append(syms, snap.Cards[p].SymbolID, snap.Cards[p+1].SymbolID)
		}
		return syms
	}
	a := createGame(t, srv, `{"seed":7}`)
	b := createGame(t, srv, `{"seed":7}`)
	assert.Equal(t, reveal(a.GameID), reveal(b.GameID))
}

func TestSelectFlow(t *testing.T) {
	srv, c, _ := newTestServer(t, "A")
	id := createGame(t, srv, "").GameID

	rec := do(t, srv, http.MethodPost, "/games/"+id+"/select", `{"position":0}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	snap := decodeSnapshot(t, rec)
	assert.Equal(t, game.CardFlipped, snap.Cards[0].State)
	assert.Equal(t, "A", snap.Cards[0].SymbolID)
	assert.Equal(t, game.TurnOneFlipped, snap.Turn)

	rec = do(t, srv, http.MethodPost, "/games/"+id+"/select", `{"position":0}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"invalid_selection"`)

	rec = do(t, srv, http.MethodPost, "/games/"+id+"/select", `{"position":1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decodeSnapshot(t, rec).Stats.Moves)

	c.Advance(1400 * time.Millisecond)
	snap = decodeSnapshot(t, do(t, srv, http.MethodGet, "/games/"+id, ""))
	assert.True(t, snap.Finished)
	assert.Equal(t, 1, snap.Stats.MatchedPairs)
	assert.Equal(t, 1, snap.Stats.ElapsedSeconds)

	rec = do(t, srv, http.MethodPost, "/games/"+id+"/new", "")
	require.Equal(t, http.StatusOK, rec.Code)
	snap = decodeSnapshot(t, rec)
	assert.False(t, snap.Finished)
	assert.Equal(t, game.Stats{}, snap.Stats)
}

func TestSelectBadRequests(t *testing.T) {
	srv, _, _ := newTestServer(t, "A", "B")
	id := createGame(t, srv, "").GameID

	tests := []struct {
		name string
		body string
		code int
	}{
		{"not json", `{`, http.StatusBadRequest},
		{"missing position", `{}`, http.StatusBadRequest},
		{"out of range", `{"position":9}`, http.StatusConflict},
		{"negative", `{"position":-1}`, http.StatusConflict},
	}
	for _, tt := range tests {
		rec := do(t, srv, http.MethodPost, "/games/"+id+"/select", tt.body)
		assert.Equal(t, tt.code, rec.Code, tt.name)
	}
}

func TestUnknownGame(t *testing.T) {
	srv, _, _ := newTestServer(t, "A")
	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodGet, "/games/nope", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodPost, "/games/nope/select", `{"position":0}`).Code)
	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodDelete, "/games/nope", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodGet, "/nowhere", "").Code)
}

func TestDeleteGame(t *testing.T) {
	srv, _, st := newTestServer(t, "A")
	id := createGame(t, srv, "").GameID
	assert.Equal(t, http.StatusNoContent, do(t, srv, http.MethodDelete, "/games/"+id, "").Code)
	assert.Equal(t, 0, st.Len())
}

func TestDailyBoard(t *testing.T) {
	srv, c, st := newTestServer(t, "A", "B", "C")
	rec := do(t, srv, http.MethodPost, "/daily/new", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var res newGameRes
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "2026-10-17", res.Date)

	sess, err := st.Get(context.Background(), res.GameID)
	require.NoError(t, err)
	require.NoError(t, sess.Select(0))

	// same layout as an explicitly seeded game for today's seed
	seed := daily.Seed(c.Now(), testConfig(t).DailySalt)
	other := createGame(t, srv, `{"seed":`+strconv.FormatUint(seed, 10)+`}`)
	rec = do(t, srv, http.MethodPost, "/games/"+other.GameID+"/select", `{"position":0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, sess.Snapshot().Cards[0].SymbolID, decodeSnapshot(t, rec).Cards[0].SymbolID)
}

func TestCORSPreflight(t *testing.T) {
	srv, _, _ := newTestServer(t, "A")
	rec := do(t, srv, http.MethodOptions, "/games", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func readEnvelope(t *testing.T, conn *websocket.Conn) events.Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env events.Envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func readUntil(t *testing.T, conn *websocket.Conn, want events.Type) []events.Type {
	t.Helper()
	var seen []events.Type
	for {
		env := readEnvelope(t, conn)
		seen = append(seen, env.Type)
		if env.Type == want {
			return seen
		}
	}
}

func TestEventStream(t *testing.T) {
	srv, c, _ := newTestServer(t, "A")
	id := createGame(t, srv, "").GameID

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/games/" + id + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	first := readEnvelope(t, conn)
	assert.Equal(t, events.SnapshotSent, first.Type)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "select", "payload": map[string]int{"position": 5}}))
	rej := readEnvelope(t, conn)
	assert.Equal(t, events.CommandRejected, rej.Type)
	assert.Contains(t, string(rej.Payload), "out of range")

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "select", "payload": map[string]int{"position": 0}}))
	flip := readEnvelope(t, conn)
	assert.Equal(t, events.CardFlipped, flip.Type)
	assert.JSONEq(t, `{"position":0}`, string(flip.Payload))

	// HTTP and websocket drive the same engine
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/games/"+id+"/select", `{"position":1}`).Code)
	assert.Equal(t, []events.Type{events.CardFlipped, events.MoveCountChanged}, readUntil(t, conn, events.MoveCountChanged))

	c.Advance(600 * time.Millisecond)
	assert.Equal(t, []events.Type{events.CardsMatched}, readUntil(t, conn, events.CardsMatched))

	c.Advance(800 * time.Millisecond)
	seen := readUntil(t, conn, events.GameCompleted)
	assert.Equal(t, []events.Type{events.TimeChanged, events.GameCompleted}, seen)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "new"}))
	assert.Equal(t, events.DeckReady, readEnvelope(t, conn).Type)
}

func TestEventStreamUnknownGame(t *testing.T) {
	srv, _, _ := newTestServer(t, "A")
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/games/missing/events"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
