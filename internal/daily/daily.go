// internal/daily/daily.go
//
// Date keys and deterministic puzzle seeds for the daily challenge.
// Every server replica must derive the same puzzle for the same
// (date, mode, language), so the seed is HMAC(salt, date|mode|language).

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

// Seed returns the deterministic puzzle seed for one challenge.
func Seed(date time.Time, salt, gameMode, language string) int64 {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date) + "|" + gameMode + "|" + language))
	sum := h.Sum(nil)
	return int64(binary.BigEndian.Uint64(sum[:8]))
}

// EndsAt returns when the challenge for t's day ends: the next UTC midnight.
func EndsAt(t time.Time) time.Time {
	day := t.UTC().Truncate(24 * time.Hour)
	return day.Add(24 * time.Hour)
}

// NextStartsAt returns when the next challenge becomes available.
func NextStartsAt(now time.Time) time.Time {
	return EndsAt(now)
}
