// Package assets embeds the default card faces.
package assets

import (
	"bufio"
	"embed"
	"io"
	"strings"
)

//go:embed symbols.txt
var FS embed.FS

// ParseLines returns the trimmed, non-empty, non-comment lines of r.
func ParseLines(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}

// SymbolsList returns the embedded default symbols.
func SymbolsList() ([]string, error) {
	f, err := FS.Open("symbols.txt")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseLines(f)
}
