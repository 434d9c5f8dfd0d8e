// internal/game/types.go
//
// Core type definitions for the memory-match engine.
// Defines:
//   - CardState / Card: one tile on the board.
//   - TurnState: whether the engine accepts new selections.
//   - Stats / Snapshot: counters and a read-only copy of the board.
//   - Listener: outbound notifications to the presentation layer.
//   - Timing: presentation pacing delays.

package game

import (
	"errors"
	"time"
)

// CardState is the visibility of a single card.
type CardState string

const (
	CardHidden  CardState = "hidden"
	CardFlipped CardState = "flipped"
	CardMatched CardState = "matched"
)

// Card is one tile. Exactly two cards in a deck share a SymbolID.
type Card struct {
	SymbolID string    `json:"symbolId"`
	Position int       `json:"position"`
	State    CardState `json:"state"`
}

// TurnState governs whether new flips are accepted.
//
//	Idle --select--> OneFlipped --select--> Evaluating --resolve--> Idle
type TurnState string

const (
	TurnIdle       TurnState = "idle"
	TurnOneFlipped TurnState = "one_flipped"
	TurnEvaluating TurnState = "evaluating"
)

// Stats are the per-game counters.
type Stats struct {
	Moves          int  `json:"moves"`
	ElapsedSeconds int  `json:"elapsedSeconds"`
	MatchedPairs   int  `json:"matchedPairs"`
	Started        bool `json:"started"`
}

// Snapshot is a copy of the engine state, safe to hand out.
type Snapshot struct {
	Generation uint64    `json:"generation"`
	Pairs      int       `json:"pairs"`
	Turn       TurnState `json:"turn"`
	Finished   bool      `json:"finished"`
	Stats      Stats     `json:"stats"`
	Cards      []Card    `json:"cards"`
}

// ErrInvalidSelection is returned by SelectCard for out-of-range positions,
// cards that are not hidden, selections while a pair is being evaluated and
// selections after the game finished. State is never mutated.
var ErrInvalidSelection = errors.New("invalid selection")

// Listener receives state-change notifications. Methods are called
// synchronously while the engine holds its lock, so they must not call back
// into the engine.
type Listener interface {
	DeckReady(cards []Card)
	CardFlipped(position int)
	CardsMatched(first, second int)
	CardsMismatched(first, second int)
	MoveCountChanged(moves int)
	TimeChanged(seconds int)
	GameCompleted(moves, seconds int)
}

// NopListener ignores every notification. Embed it to implement a subset.
type NopListener struct{}

func (NopListener) DeckReady([]Card) {}
func (NopListener) CardFlipped(int) {}
func (NopListener) CardsMatched(int, int) {}
func (NopListener) CardsMismatched(int, int) {}
func (NopListener) MoveCountChanged(int) {}
func (NopListener) TimeChanged(int) {}
func (NopListener) GameCompleted(int, int) {}

// Timing holds the pacing delays. None of them affect correctness.
type Timing struct {
	Settle     time.Duration // second flip -> match evaluation
	Mismatch   time.Duration // evaluation -> mismatched cards flip back
	Completion time.Duration // last match -> game completed
	Tick       time.Duration // elapsed-time resolution
}

// DefaultTiming mirrors the pacing of the browser game.
func DefaultTiming() Timing {
	return Timing{
		Settle:     600 * time.Millisecond,
		Mismatch:   1000 * time.Millisecond,
		Completion: 800 * time.Millisecond,
		Tick:       time.Second,
	}
}
