package prompt

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// Record is a saved prompt in the library.
// Records are never mutated; refinements produce new records.
type Record struct {
	// ID is a ULID, so it sorts by creation time
	ID string `json:"id"`

	// Idea is the display label (see Label)
	Idea string `json:"idea"`

	// Text is the prompt itself
	Text string `json:"text"`

	// Timestamp is the creation time in Unix milliseconds
	Timestamp int64 `json:"timestamp"`
}

// NewRecord creates a record with a fresh ULID at the given time.
// label is stored as-is; callers pass it through Label or RefinedLabel.
func NewRecord(label, text string, now time.Time) Record {
	return Record{
		ID:        newID(now),
		Idea:      label,
		Text:      text,
		Timestamp: now.UnixMilli(),
	}
}

// newID generates a ULID for the given time.
func newID(now time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(now), entropy).String()
}
