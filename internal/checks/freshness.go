package checks

import (
	"fmt"
	"time"

	"github.com/marcelocantos/donegate/internal/audit"
	"github.com/marcelocantos/donegate/internal/gate"
)

// LogRecent passes iff path exists and was modified within maxAge.
// A missing file is a failure, not an error.
func (l *Library) LogRecent(path string, maxAge time.Duration) gate.Predicate {
	return func() (bool, error) {
		age, ok, err := l.Age(path)
		if err != nil {
			return false, err
		}
		if !ok {
			l.log.Log(audit.LevelError, "LOG NOT FOUND: "+path)
			return false, nil
		}
		if age > maxAge {
			l.log.Log(audit.LevelError, fmt.Sprintf("LOG STALE: %s is %.0f min old", path, age.Minutes()))
			return false, nil
		}
		l.log.Log(audit.LevelOK, "LOG FRESH: "+path)
		return true, nil
	}
}

// HeartbeatFresh passes iff path exists and its age is at most the
// tolerance factor times interval.
func (l *Library) HeartbeatFresh(path string, interval time.Duration) gate.Predicate {
	return func() (bool, error) {
		age, ok, err := l.Age(path)
		if err != nil {
			return false, err
		}
		if !ok {
			l.log.Log(audit.LevelError, "NO HEARTBEAT: "+path)
			return false, nil
		}
		limit := time.Duration(float64(interval) * l.tolerance)
		if age > limit {
			l.log.Log(audit.LevelError, fmt.Sprintf("HEARTBEAT STALE: %.0f min old (expected <%.0f)", age.Minutes(), interval.Minutes()))
			return false, nil
		}
		l.log.Log(audit.LevelOK, "HEARTBEAT FRESH: "+path)
		return true, nil
	}
}

// Age returns how long ago path was last modified. ok is false if the file
// does not exist. A modification time in the future yields a zero age.
func (l *Library) Age(path string) (age time.Duration, ok bool, err error) {
	fi, err := stat(path)
	if fi == nil {
		return 0, false, err
	}
	age = l.now().Sub(fi.ModTime())
	if age < 0 {
		age = 0
	}
	return age, true, nil
}
