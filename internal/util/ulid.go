package util

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewULID returns a ULID for the current time. IDs minted in the same
// millisecond sort in creation order.
func NewULID() string {
	return NewULIDAt(time.Now())
}

// NewULIDAt returns a ULID with the given timestamp.
func NewULIDAt(t time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}
