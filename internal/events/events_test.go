package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/memory/internal/clock"
	"github.com/robalobadob/memory/internal/game"
)

func TestEmitterFollowsEngine(t *testing.T) {
	var got []Event
	c := clock.NewFake(time.Unix(0, 0))
	e := game.New([]string{"A", "B"},
		game.WithClock(c),
		game.WithShuffler(func(n int) int { return n - 1 }),
		game.WithListener(NewEmitter(func(ev Event) { got = append(got, ev) })),
	)
	require.NoError(t, e.SelectCard(0))
	require.NoError(t, e.SelectCard(2))
	c.Advance(600 * time.Millisecond)

	lines := make([]string, len(got))
	for i, ev := range got {
		lines[i] = ev.String()
	}
	assert.Equal(t, []string{
		"deck_ready A B A B",
		"move_count_changed 0",
		"time_changed 00:00",
		"card_flipped 0",
		"card_flipped 2",
		"move_count_changed 1",
		"cards_matched 0 2",
	}, lines)
}

func TestDeckJSONIsRedacted(t *testing.T) {
	ev := Event{Type: DeckReady, Data: Deck{Cards: []game.Card{
		{SymbolID: "A", Position: 0, State: game.CardHidden},
		{SymbolID: "B", Position: 1, State: game.CardMatched},
	}}}
	b, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"deck_ready","payload":{"cards":[
		{"position":0,"state":"hidden"},
		{"position":1,"state":"matched","symbolId":"B"}]}}`, string(b))
}

func TestCompletedJSON(t *testing.T) {
	var got Event
	NewEmitter(func(ev Event) { got = ev }).GameCompleted(12, 65)

	b, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"game_completed","payload":{"moves":12,"seconds":65,"display":"01:05"}}`, string(b))
	assert.Equal(t, "game_completed moves=12 time=01:05", got.String())
}

func TestEnvelopeWithoutPayload(t *testing.T) {
	b, err := json.Marshal(Event{Type: CommandNewGame})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"new"}`, string(b))
}

func TestNewSnapshot(t *testing.T) {
	s := NewSnapshot(game.Snapshot{
		Generation: 3,
		Pairs:      2,
		Turn:       game.TurnOneFlipped,
		Stats:      game.Stats{Moves: 1, ElapsedSeconds: 61, Started: true},
		Cards: []game.Card{
			{SymbolID: "A", Position: 0, State: game.CardFlipped},
			{SymbolID: "B", Position: 1, State: game.CardHidden},
		},
	})
	assert.Equal(t, "01:01", s.Elapsed)
	assert.Equal(t, "A", s.Cards[0].SymbolID)
	assert.Empty(t, s.Cards[1].SymbolID)
	assert.Equal(t, "snapshot turn=one_flipped moves=1 pairs=0/2 time=01:01",
		Event{Type: SnapshotSent, Data: s}.String())
}
