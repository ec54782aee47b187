package checks

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/marcelocantos/donegate/internal/gate"
)

// scheduleSamples is how many consecutive firings are inspected when
// deriving an interval from an irregular schedule.
const scheduleSamples = 16

// ScheduleInterval returns the longest gap between consecutive firings of a
// standard five-field cron expression, starting from now.
func ScheduleInterval(expr string, now time.Time) (time.Duration, error) {
	sched, err := cron.ParseStandard(expr)
	if err != nil {
		return 0, fmt.Errorf("parse schedule %q: %w", expr, err)
	}
	var longest time.Duration
	prev := sched.Next(now)
	if prev.IsZero() {
		return 0, fmt.Errorf("schedule %q never fires", expr)
	}
	for i := 0; i < scheduleSamples; i++ {
		next := sched.Next(prev)
		if next.IsZero() {
			break
		}
		if gap := next.Sub(prev); gap > longest {
			longest = gap
		}
		prev = next
	}
	return longest, nil
}

// HeartbeatSchedule is HeartbeatFresh with the expected interval derived
// from the cron schedule that touches the heartbeat file.
func (l *Library) HeartbeatSchedule(path, expr string) (gate.Predicate, error) {
	interval, err := ScheduleInterval(expr, l.now())
	if err != nil {
		return nil, err
	}
	return l.HeartbeatFresh(path, interval), nil
}
