// Package checks provides reusable filesystem and process predicates for
// the gate runner.
package checks

import (
	"time"

	"github.com/marcelocantos/donegate/internal/audit"
)

// DefaultHeartbeatTolerance absorbs scheduling jitter: a heartbeat is fresh
// while its age is at most this multiple of the expected interval.
const DefaultHeartbeatTolerance = 1.5

// Library builds predicates. Its clock is swappable so freshness checks can
// be tested against fixed file timestamps.
type Library struct {
	now       func() time.Time
	log       audit.Sink
	tolerance float64
}

// Option configures a Library.
type Option func(*Library)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(l *Library) { l.now = now }
}

// WithLogger sets the sink for per-check detail records (OK / ERROR).
func WithLogger(sink audit.Sink) Option {
	return func(l *Library) {
		if sink != nil {
			l.log = sink
		}
	}
}

// WithHeartbeatTolerance overrides DefaultHeartbeatTolerance. Values below
// 1 are ignored.
func WithHeartbeatTolerance(f float64) Option {
	return func(l *Library) {
		if f >= 1 {
			l.tolerance = f
		}
	}
}

// New returns a Library using the wall clock and discarding detail records.
func New(opts ...Option) *Library {
	l := &Library{
		now:       time.Now,
		log:       audit.Discard,
		tolerance: DefaultHeartbeatTolerance,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Now returns the library's current time.
func (l *Library) Now() time.Time {
	return l.now()
}

// HeartbeatTolerance returns the configured tolerance factor.
func (l *Library) HeartbeatTolerance() float64 {
	return l.tolerance
}
