// internal/game/deck.go
//
// Deck construction and the elapsed-time display format.
//   - NewDeck: every symbol twice, Fisher–Yates shuffled.
//   - FormatElapsed: seconds as MM:SS.

package game

import (
	"fmt"
	"math/rand/v2"
)

// Shuffle permutes s in place with Fisher–Yates: for i from the last index
// down to 1, swap s[i] with s[j], j uniform in [0, i]. intn(n) must return a
// uniform value in [0, n).
func Shuffle[T any](s []T, intn func(n int) int) {
	for i := len(s) - 1; i > 0; i-- {
		j := intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}

// NewDeck duplicates every symbol and shuffles the 2P cards. All cards start hidden.
func NewDeck(symbols []string, intn func(n int) int) []Card {
	ids := make([]string, 0, 2*len(symbols))
	ids = append(ids, symbols...)
	ids = append(ids, symbols...)
	Shuffle(ids, intn)

	deck := make([]Card, len(ids))
	for i, id := range ids {
		deck[i] = Card{SymbolID: id, Position: i, State: CardHidden}
	}
	return deck
}

// seededIntn returns a deterministic source for a seed.
func seededIntn(seed uint64) func(int) int {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)).IntN
}

// FormatElapsed renders seconds as zero-padded MM:SS. Minutes are not capped at 59.
func FormatElapsed(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
