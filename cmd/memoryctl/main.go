// cmd/memoryctl/main.go
//
// Terminal harness for the memory-match engine.
// Reads one command per line from stdin and prints every engine event.
//
// Commands:
//   new | r             deal a new game
//   select N | s N      flip the card at position N
//   state               print counters and the board
//   wait DURATION       advance the virtual clock (-virtual only)
//   help                list commands
//   quit | exit         leave
//
// Timing delays come from the same environment variables as the server.

package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/memory/internal/clock"
	"github.com/robalobadob/memory/internal/config"
	"github.com/robalobadob/memory/internal/events"
	"github.com/robalobadob/memory/internal/game"
	"github.com/robalobadob/memory/internal/symbols"
)

type options struct {
	Seed    uint64
	Symbols string
	Virtual bool
	Timing  game.Timing
	Logger  zerolog.Logger
}

func main() {
	var opts options
	flag.Uint64Var(&opts.Seed, "seed", 0, "deal seed for reproducible boards (0 = random)")
	flag.StringVar(&opts.Symbols, "symbols", "", "symbols file, one per line (default: MEMORY_SYMBOLS_FILE or the built-in set)")
	flag.BoolVar(&opts.Virtual, "virtual", false, "run on a virtual clock moved forward with 'wait'")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	opts.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl)
	opts.Timing = cfg.Timing()
	if opts.Symbols == "" {
		opts.Symbols = cfg.SymbolsFile
	}

	if err := run(os.Stdin, os.Stdout, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// printer serialises output from the command loop and from timer callbacks.
type printer struct {
	mu sync.Mutex
	w  io.Writer
}

func (p *printer) println(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, s)
}

func run(in io.Reader, out io.Writer, opts options) error {
	syms, err := symbols.Load(opts.Symbols)
	if err != nil {
		return fmt.Errorf("load symbols: %w", err)
	}

	p := &printer{w: out}
	var (
		clk  clock.Clock = clock.Real{}
		fake *clock.Fake
	)
	if opts.Virtual {
		fake = clock.NewFake(time.Now())
		clk = fake
	}

	engineOpts := []game.Option{
		game.WithClock(clk),
		game.WithListener(events.NewEmitter(func(ev events.Event) { p.println(ev.String()) })),
		game.WithLogger(opts.Logger),
	}
	if opts.Timing != (game.Timing{}) {
		engineOpts = append(engineOpts, game.WithTiming(opts.Timing))
	}
	if opts.Seed != 0 {
		engineOpts = append(engineOpts, game.WithSeed(opts.Seed))
	}
	eng := game.New(syms, engineOpts...)
	defer eng.Close()

	sc := bufio.NewScanner(in)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch cmd, args := fields[0], fields[1:]; cmd {
		case "new", "r":
			eng.NewGame()
		case "select", "s":
			if len(args) != 1 {
				p.println("usage: select <position>")
				continue
			}
			pos, err := strconv.Atoi(args[0])
			if err != nil {
				p.println("usage: select <position>")
				continue
			}
			if err := eng.SelectCard(pos); err != nil {
				p.println(events.Event{Type: events.CommandRejected, Data: events.Rejected{Reason: err.Error()}}.String())
			}
		case "state":
			snap := eng.Snapshot()
			p.println(events.Event{Type: events.SnapshotSent, Data: events.NewSnapshot(snap)}.String())
			p.println(board(snap.Cards))
		case "wait":
			if fake == nil {
				p.println("wait needs -virtual")
				continue
			}
			if len(args) != 1 {
				p.println("usage: wait <duration>")
				continue
			}
			d, err := time.ParseDuration(args[0])
			if err != nil || d < 0 {
				p.println("usage: wait <duration>")
				continue
			}
			fake.Advance(d)
		case "help":
			p.println(helpText)
		case "quit", "exit":
			return nil
		default:
			p.println(fmt.Sprintf("unknown command %q (try help)", cmd))
		}
	}
	return sc.Err()
}

const helpText = `commands:
  new | r           deal a new game
  select N | s N    flip the card at position N
  state             show counters and board
  wait DURATION     advance the virtual clock, e.g. wait 1s
  help              show this list
  quit | exit       leave`

// board renders cards as "pos:face" tokens; hidden cards show "?" and
// matched ones carry a trailing "*".
func board(cards []game.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		face := "?"
		switch c.State {
		case game.CardFlipped:
			face = c.SymbolID
		case game.CardMatched:
			face = c.SymbolID + "*"
		}
		parts[i] = fmt.Sprintf("%d:%s", c.Position, face)
	}
	return "board " + strings.Join(parts, " ")
}
