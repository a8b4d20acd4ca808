// Package cache is the result cache for upstream data: a keyed store with
// per-category time-to-live, a TTL-checked read path and a force read path
// that ignores age. Entries are immutable once written, overwritten wholesale
// on refresh, and expired lazily at read time only; there is no background
// eviction.
package cache

import (
	"errors"
	"time"
)

// Category selects the TTL applied to an entry. Timetables can shift
// near-term, so plan results use a short TTL; reference data lives longer.
type Category string

const (
	CategorySchedule Category = "schedule"
	CategorySessions Category = "sessions"
	CategoryGrades   Category = "grades"
	CategoryNews     Category = "news"
)

var ttls = map[Category]time.Duration{
	CategorySchedule: 10 * time.Minute,
	CategorySessions: 12 * time.Hour,
	CategoryGrades:   30 * time.Minute,
	CategoryNews:     time.Hour,
}

// TTL returns the time-to-live for a category. Unknown categories get the
// schedule TTL, the shortest one.
func TTL(c Category) time.Duration {
	if d, ok := ttls[c]; ok {
		return d
	}
	return ttls[CategorySchedule]
}

// ErrMiss signals that a key is absent, stale (fresh reads only), or that
// the stored entry could not be decoded. It is the only way a read fails
// under normal operation.
var ErrMiss = errors.New("cache: miss")

// Store is the result cache contract. Keys are opaque strings composed by
// the caller; the store never inspects them. Save overwrites any previous
// entry under the same key.
type Store interface {
	Save(key string, category Category, payload []byte) error

	// LoadFresh returns the payload only while the entry is younger than
	// its category TTL; otherwise ErrMiss.
	LoadFresh(key string) ([]byte, error)

	// LoadForce returns the payload regardless of age, or ErrMiss if the
	// key was never stored.
	LoadForce(key string) ([]byte, error)

	Close() error
}
