// internal/game/engine.go
//
// Core engine for a single memory-match game.
// Responsibilities:
//   - Deal a fresh deck (every symbol twice, Fisher–Yates shuffled).
//   - Accept card selections and drive the turn state machine.
//   - Evaluate pairs after a settle delay; flip mismatches back, count matches.
//   - Keep move and elapsed-time counters; declare completion once.
//
// Notes:
//   - Every delayed callback is tagged with the game generation it was
//     scheduled in; NewGame bumps the generation so stale callbacks are no-ops.
//   - Time comes from an injected clock.Clock so tests run on virtual time.
//   - Listener notifications are delivered while e.mu is held.
package game

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/robalobadob/memory/internal/clock"
)

// Engine owns the deck, turn state and counters of one game.
type Engine struct {
	mu sync.Mutex

	symbols  []string
	clock    clock.Clock
	timing   Timing
	listener Listener
	log      zerolog.Logger
	intn     func(int) int
	seed     *uint64

	generation uint64
	deck       []Card
	turn       TurnState
	stats      Stats
	finished   bool
	closed     bool
	pending    []int // positions flipped this turn, in order

	tickStart time.Time   // first selection; ticks are due at tickStart + n*Tick
	tick      clock.Timer // elapsed-time tick; nil when not running
	resolve   clock.Timer // evaluation, flip-back or completion callback
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the scheduler. Defaults to the wall clock.
func WithClock(c clock.Clock) Option { return func(e *Engine) { e.clock = c } }

// WithListener sets the notification target.
func WithListener(l Listener) Option { return func(e *Engine) { e.listener = l } }

// WithTiming overrides the pacing delays.
func WithTiming(t Timing) Option { return func(e *Engine) { e.timing = t } }

// WithLogger sets the engine logger. Defaults to a no-op logger.
func WithLogger(l zerolog.Logger) Option { return func(e *Engine) { e.log = l } }

// WithShuffler sets the random source used by the shuffle.
// intn(n) must return a value in [0, n).
func WithShuffler(intn func(n int) int) Option { return func(e *Engine) { e.intn = intn } }

// WithSeed makes every deal of this engine deterministic: each NewGame
// reseeds, so restarting a seeded board deals the same layout.
func WithSeed(seed uint64) Option {
	return func(e *Engine) { e.seed = &seed }
}

// New builds an engine for the given distinct symbols and deals the first game.
func New(symbols []string, opts ...Option) *Engine {
	e := &Engine{
		symbols:  append([]string(nil), symbols...),
		clock:    clock.Real{},
		timing:   DefaultTiming(),
		listener: NopListener{},
		log:      zerolog.Nop(),
		intn:     rand.IntN,
	}
	for _, o := range opts {
		o(e)
	}
	e.NewGame()
	return e
}

// Pairs reports P, the number of distinct symbols.
func (e *Engine) Pairs() int { return len(e.symbols) }

// NewGame discards the current game and deals a new one.
// Any running tick or pending resolution is cancelled.
func (e *Engine) NewGame() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelTimers()
	e.generation++

	intn := e.intn
	if e.seed != nil {
		intn = seededIntn(*e.seed)
	}
	e.deck = NewDeck(e.symbols, intn)
	e.turn = TurnIdle
	e.stats = Stats{}
	e.finished = false
	e.closed = false
	e.pending = nil

	e.log.Debug().Uint64("generation", e.generation).Int("cards", len(e.deck)).Msg("new game dealt")

	e.listener.DeckReady(e.cardsCopy())
	e.listener.MoveCountChanged(0)
	e.listener.TimeChanged(0)
}

// SelectCard flips the hidden card at position. It returns an error wrapping
// ErrInvalidSelection, without changing anything, when the selection is not
// allowed right now.
func (e *Engine) SelectCard(position int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case e.closed:
		return fmt.Errorf("%w: game closed", ErrInvalidSelection)
	case e.finished:
		return fmt.Errorf("%w: game finished", ErrInvalidSelection)
	case e.turn == TurnEvaluating:
		return fmt.Errorf("%w: pair being evaluated", ErrInvalidSelection)
	case position < 0 || position >= len(e.deck):
		return fmt.Errorf("%w: position %d out of range", ErrInvalidSelection, position)
	case e.deck[position].State != CardHidden:
		return fmt.Errorf("%w: card %d is %s", ErrInvalidSelection, position, e.deck[position].State)
	}

	if !e.stats.Started {
		e.stats.Started = true
		e.startTick()
		e.log.Debug().Uint64("generation", e.generation).Msg("game started")
	}

	e.deck[position].State = CardFlipped
	e.pending = append(e.pending, position)
	e.listener.CardFlipped(position)

	if len(e.pending) == 1 {
		e.turn = TurnOneFlipped
		return nil
	}

	e.stats.Moves++
	e.turn = TurnEvaluating
	gen := e.generation
	e.resolve = e.clock.AfterFunc(e.timing.Settle, func() { e.evaluatePendingPair(gen) })
	e.listener.MoveCountChanged(e.stats.Moves)
	return nil
}

// evaluatePendingPair compares the two cards flipped this turn.
func (e *Engine) evaluatePendingPair(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.generation || e.turn != TurnEvaluating || len(e.pending) != 2 {
		return
	}
	a, b := e.pending[0], e.pending[1]

	if e.deck[a].SymbolID != e.deck[b].SymbolID {
		e.resolve = e.clock.AfterFunc(e.timing.Mismatch, func() { e.flipBack(gen) })
		return
	}

	e.deck[a].State = CardMatched
	e.deck[b].State = CardMatched
	e.stats.MatchedPairs++
	e.pending = nil
	e.turn = TurnIdle
	e.resolve = nil
	e.log.Debug().Str("symbol", e.deck[a].SymbolID).Int("pairs", e.stats.MatchedPairs).Msg("match found")
	e.listener.CardsMatched(a, b)

	if e.stats.MatchedPairs == len(e.symbols) {
		e.resolve = e.clock.AfterFunc(e.timing.Completion, func() { e.completeGame(gen) })
	}
}

// flipBack hides a mismatched pair and reopens the board for input.
func (e *Engine) flipBack(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.generation || e.turn != TurnEvaluating || len(e.pending) != 2 {
		return
	}
	a, b := e.pending[0], e.pending[1]
	e.deck[a].State = CardHidden
	e.deck[b].State = CardHidden
	e.pending = nil
	e.turn = TurnIdle
	e.resolve = nil
	e.listener.CardsMismatched(a, b)
}

// completeGame stops the clock and reports the final counters exactly once.
func (e *Engine) completeGame(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.generation || e.finished {
		return
	}
	e.stopTick()
	e.finished = true
	e.resolve = nil
	e.log.Info().
		Int("moves", e.stats.Moves).
		Str("time", FormatElapsed(e.stats.ElapsedSeconds)).
		Msg("game completed")
	e.listener.GameCompleted(e.stats.Moves, e.stats.ElapsedSeconds)
}

// startTick anchors the elapsed-time clock at now and schedules the first
// tick. Caller holds e.mu.
func (e *Engine) startTick() {
	e.tickStart = e.clock.Now()
	e.scheduleTick()
}

// scheduleTick arms tick n+1 at tickStart + (n+1)*Tick. Caller holds e.mu.
func (e *Engine) scheduleTick() {
	gen := e.generation
	due := e.tickStart.Add(time.Duration(e.stats.ElapsedSeconds+1) * e.timing.Tick)
	d := due.Sub(e.clock.Now())
	if d < 0 {
		d = 0
	}
	e.tick = e.clock.AfterFunc(d, func() { e.onTick(gen) })
}

func (e *Engine) onTick(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.generation || e.finished || e.tick == nil {
		return
	}
	e.stats.ElapsedSeconds++
	e.listener.TimeChanged(e.stats.ElapsedSeconds)
	e.scheduleTick()
}

// stopTick cancels the tick if it is running. Caller holds e.mu.
func (e *Engine) stopTick() {
	if e.tick != nil {
		e.tick.Stop()
		e.tick = nil
	}
}

// cancelTimers stops the tick and any pending resolution. Caller holds e.mu.
func (e *Engine) cancelTimers() {
	e.stopTick()
	if e.resolve != nil {
		e.resolve.Stop()
		e.resolve = nil
	}
}

// Close cancels all timers and invalidates in-flight callbacks. The engine
// keeps its last state and rejects selections; a later NewGame starts over.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelTimers()
	e.generation++
	e.closed = true
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Generation: e.generation,
		Pairs:      len(e.symbols),
		Turn:       e.turn,
		Finished:   e.finished,
		Stats:      e.stats,
		Cards:      e.cardsCopy(),
	}
}

// Stats returns the current counters.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

func (e *Engine) cardsCopy() []Card {
	return append([]Card(nil), e.deck...)
}
