// internal/symbols/symbols.go
//
// Card face management for the game engine.
//
// Responsibilities:
//   - Load the distinct card symbols from a file, or fall back to the embedded defaults.
//   - Validate the set: at least one symbol, no duplicates.
//
// File format: one symbol per line; blank lines and lines starting with '#' are skipped.
//
// Environment variables (through config):
//   MEMORY_SYMBOLS_FILE=/path/to/symbols.txt

package symbols

import (
	"errors"
	"fmt"
	"os"

	"github.com/robalobadob/memory/assets"
)

// ErrEmpty is returned when a symbol source yields no symbols.
var ErrEmpty = errors.New("symbols: list is empty")

// Load returns the symbols in path, or the embedded defaults when path is empty.
func Load(path string) ([]string, error) {
	var (
		list []string
		err  error
	)
	if path == "" {
		list, err = assets.SymbolsList()
	} else {
		list, err = readFile(path)
	}
	if err != nil {
		return nil, err
	}
	if err := Validate(list); err != nil {
		return nil, err
	}
	return list, nil
}

// Default returns the embedded symbols. It panics if the embedded file is broken.
func Default() []string {
	list, err := Load("")
	if err != nil {
		panic(err)
	}
	return list
}

// Validate checks that list is non-empty and has no duplicate symbols.
func Validate(list []string) error {
	if len(list) == 0 {
		return ErrEmpty
	}
	seen := make(map[string]struct{}, len(list))
	for _, s := range list {
		if _, dup := seen[s]; dup {
			return fmt.Errorf("symbols: duplicate symbol %q", s)
		}
		seen[s] = struct{}{}
	}
	return nil
}

func readFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("symbols: %w", err)
	}
	defer f.Close()
	list, err := assets.ParseLines(f)
	if err != nil {
		return nil, fmt.Errorf("symbols: read %s: %w", path, err)
	}
	return list, nil
}
