package audit

import (
	"io"
	"sync"
	"time"
)

type tee []Sink

func (t tee) Log(level Level, msg string) {
	for _, s := range t {
		s.Log(level, msg)
	}
}

// Tee returns a Sink that forwards every record to each of sinks in order.
// Nil sinks are skipped.
func Tee(sinks ...Sink) Sink {
	var t tee
	for _, s := range sinks {
		if s != nil && s != Discard {
			t = append(t, s)
		}
	}
	switch len(t) {
	case 0:
		return Discard
	case 1:
		return t[0]
	}
	return t
}

// Echo writes records to a terminal or other stream in the log line format.
type Echo struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time
}

// NewEcho returns an Echo writing to w. A nil now uses the wall clock.
func NewEcho(w io.Writer, now func() time.Time) *Echo {
	if now == nil {
		now = time.Now
	}
	return &Echo{w: w, now: now}
}

// Log writes one line. Write errors are ignored.
func (e *Echo) Log(level Level, msg string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, _ = io.WriteString(e.w, Entry{Time: e.now(), Level: level, Message: msg}.String()+"\n")
}
