package model

import (
	"time"

	"github.com/google/uuid"
)

// IDGenerator produces stable record identifiers.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 identifiers, so order ids
// sort in creation order.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock, truncated to whole seconds to match
// TimestampLayout.
type SystemClock struct{}

// Now returns time.Now() truncated to the second.
func (SystemClock) Now() time.Time {
	return time.Now().Truncate(time.Second)
}
