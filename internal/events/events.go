// internal/events/events.go
//
// Engine notifications as typed events.
// Defines:
//   - Envelope: the {"type","payload"} wire shape used in both directions on the websocket.
//   - Event: a notification with a typed payload (Deck, Position, Pair, ...).
//   - Emitter: a game.Listener that turns notifications into Events for a sink.
//   - CardView: the client-facing card; hidden cards never expose their symbol.

package events

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/robalobadob/memory/internal/game"
)

// Type names an event or inbound command.
type Type string

const (
	DeckReady        Type = "deck_ready"
	CardFlipped      Type = "card_flipped"
	CardsMatched     Type = "cards_matched"
	CardsMismatched  Type = "cards_mismatched"
	MoveCountChanged Type = "move_count_changed"
	TimeChanged      Type = "time_changed"
	GameCompleted    Type = "game_completed"
	SnapshotSent     Type = "snapshot"
	CommandRejected  Type = "rejected"

	// inbound
	CommandSelect  Type = "select"
	CommandNewGame Type = "new"
)

// Envelope is the JSON wrapper for every websocket message.
type Envelope struct {
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Payloads.
type (
	Deck struct {
		Cards []game.Card
	}
	Position struct {
		Position int `json:"position"`
	}
	Pair struct {
		First  int `json:"first"`
		Second int `json:"second"`
	}
	Moves struct {
		Moves int `json:"moves"`
	}
	Time struct {
		Seconds int    `json:"seconds"`
		Display string `json:"display"`
	}
	Completed struct {
		Moves   int    `json:"moves"`
		Seconds int    `json:"seconds"`
		Display string `json:"display"`
	}
	Rejected struct {
		Reason string `json:"reason"`
	}
)

// CardView is a card as shown to a client.
type CardView struct {
	Position int            `json:"position"`
	State    game.CardState `json:"state"`
	SymbolID string         `json:"symbolId,omitempty"`
}

// Views builds client-facing cards. Symbols of hidden cards are left out.
func Views(cards []game.Card) []CardView {
	out := make([]CardView, len(cards))
	for i, c := range cards {
		out[i] = CardView{Position: c.Position, State: c.State}
		if c.State != game.CardHidden {
			out[i].SymbolID = c.SymbolID
		}
	}
	return out
}

// MarshalJSON sends the deck in redacted form.
func (d Deck) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Cards []CardView `json:"cards"`
	}{Views(d.Cards)})
}

// Snapshot is the redacted form of game.Snapshot.
type Snapshot struct {
	Generation uint64         `json:"generation"`
	Pairs      int            `json:"pairs"`
	Turn       game.TurnState `json:"turn"`
	Finished   bool           `json:"finished"`
	Stats      game.Stats     `json:"stats"`
	Elapsed    string         `json:"elapsed"`
	Cards      []CardView     `json:"cards"`
}

// NewSnapshot redacts s.
func NewSnapshot(s game.Snapshot) Snapshot {
	return Snapshot{
		Generation: s.Generation,
		Pairs:      s.Pairs,
		Turn:       s.Turn,
		Finished:   s.Finished,
		Stats:      s.Stats,
		Elapsed:    game.FormatElapsed(s.Stats.ElapsedSeconds),
		Cards:      Views(s.Cards),
	}
}

// Event is one notification.
type Event struct {
	Type Type
	Data any
}

// Envelope encodes the event payload.
func (e Event) Envelope() (Envelope, error) {
	if e.Data == nil {
		return Envelope{Type: e.Type}, nil
	}
	data, err := json.Marshal(e.Data)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: e.Type, Payload: data}, nil
}

func (e Event) MarshalJSON() ([]byte, error) {
	env, err := e.Envelope()
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}

// String renders the event as one line of text. Symbols are shown in full.
func (e Event) String() string {
	switch d := e.Data.(type) {
	case Deck:
		syms := make([]string, len(d.Cards))
		for i, c := range d.Cards {
			syms[i] = c.SymbolID
		}
		return fmt.Sprintf("%s %s", e.Type, strings.Join(syms, " "))
	case Position:
		return fmt.Sprintf("%s %d", e.Type, d.Position)
	case Pair:
		return fmt.Sprintf("%s %d %d", e.Type, d.First, d.Second)
	case Moves:
		return fmt.Sprintf("%s %d", e.Type, d.Moves)
	case Time:
		return fmt.Sprintf("%s %s", e.Type, d.Display)
	case Completed:
		return fmt.Sprintf("%s moves=%d time=%s", e.Type, d.Moves, d.Display)
	case Snapshot:
		return fmt.Sprintf("%s turn=%s moves=%d pairs=%d/%d time=%s",
			e.Type, d.Turn, d.Stats.Moves, d.Stats.MatchedPairs, d.Pairs, d.Elapsed)
	case Rejected:
		return fmt.Sprintf("%s: %s", e.Type, d.Reason)
	}
	return string(e.Type)
}

// Emitter adapts engine notifications to Events.
type Emitter struct {
	sink func(Event)
}

var _ game.Listener = (*Emitter)(nil)

// NewEmitter sends every notification to sink. sink runs under the engine
// lock and must not call back into the engine.
func NewEmitter(sink func(Event)) *Emitter {
	return &Emitter{sink: sink}
}

func (m *Emitter) DeckReady(cards []game.Card) {
	m.sink(Event{Type: DeckReady, Data: Deck{Cards: cards}})
}

func (m *Emitter) CardFlipped(position int) {
	m.sink(Event{Type: CardFlipped, Data: Position{Position: position}})
}

func (m *Emitter) CardsMatched(first, second int) {
	m.sink(Event{Type: CardsMatched, Data: Pair{First: first, Second: second}})
}

func (m *Emitter) CardsMismatched(first, second int) {
	m.sink(Event{Type: CardsMismatched, Data: Pair{First: first, Second: second}})
}

func (m *Emitter) MoveCountChanged(moves int) {
	m.sink(Event{Type: MoveCountChanged, Data: Moves{Moves: moves}})
}

func (m *Emitter) TimeChanged(seconds int) {
	m.sink(Event{Type: TimeChanged, Data: Time{Seconds: seconds, Display: game.FormatElapsed(seconds)}})
}

func (m *Emitter) GameCompleted(moves, seconds int) {
	m.sink(Event{Type: GameCompleted, Data: Completed{Moves: moves, Seconds: seconds, Display: game.FormatElapsed(seconds)}})
}
