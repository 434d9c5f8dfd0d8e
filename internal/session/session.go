// internal/session/session.go
//
// A Session is one live game served over HTTP: the engine, the hub that fans
// its events out to websocket subscribers, and last-activity bookkeeping used
// to evict idle sessions.

package session

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/robalobadob/memory/internal/clock"
	"github.com/robalobadob/memory/internal/events"
	"github.com/robalobadob/memory/internal/game"
)

// Options configures a new Session.
type Options struct {
	Clock  clock.Clock
	Timing game.Timing
	Seed   *uint64 // deterministic deal when set
	Logger zerolog.Logger
}

// Session is safe for concurrent use.
type Session struct {
	ID        string
	CreatedAt time.Time

	engine *game.Engine
	hub    *Hub
	clock  clock.Clock

	mu         sync.Mutex
	lastActive time.Time
}

// New creates a session and deals its first game.
func New(id string, symbols []string, opts Options) *Session {
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Timing == (game.Timing{}) {
		opts.Timing = game.DefaultTiming()
	}
	logger := opts.Logger.With().Str("gameId", id).Logger()

	now := opts.Clock.Now()
	s := &Session{
		ID:         id,
		CreatedAt:  now,
		lastActive: now,
		clock:      opts.Clock,
		hub:        NewHub(logger),
	}
	engineOpts := []game.Option{
		game.WithClock(opts.Clock),
		game.WithTiming(opts.Timing),
		game.WithLogger(logger),
		game.WithListener(events.NewEmitter(s.hub.Broadcast)),
	}
	if opts.Seed != nil {
		engineOpts = append(engineOpts, game.WithSeed(*opts.Seed))
	}
	s.engine = game.New(symbols, engineOpts...)
	return s
}

// Select flips the card at position.
func (s *Session) Select(position int) error {
	s.touch()
	return s.engine.SelectCard(position)
}

// Restart deals a new game in the same session.
func (s *Session) Restart() {
	s.touch()
	s.engine.NewGame()
}

// Snapshot returns the redacted board.
func (s *Session) Snapshot() events.Snapshot {
	return events.NewSnapshot(s.engine.Snapshot())
}

// Hub returns the event fan-out.
func (s *Session) Hub() *Hub { return s.hub }

// LastActive reports the time of the last command.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Close stops the engine timers and disconnects subscribers.
func (s *Session) Close() {
	s.engine.Close()
	s.hub.Close()
}

func (s *Session) touch() {
	now := s.clock.Now()
	s.mu.Lock()
	s.lastActive = now
	s.mu.Unlock()
}
