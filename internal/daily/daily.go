// internal/daily/daily.go
//
// "Board of the day": every player who asks for the daily board on a given
// UTC date gets the same deal. The shuffle seed is HMAC(salt, YYYY-MM-DD).

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seed returns a deterministic shuffle seed for the date of t.
func Seed(t time.Time, salt string) uint64 {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(t)))
	sum := h.Sum(nil)
	// first 8 bytes of the MAC
	return binary.BigEndian.Uint64(sum[:8])
}
