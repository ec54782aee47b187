package checks

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/marcelocantos/donegate/internal/audit"
	"github.com/marcelocantos/donegate/internal/gate"
)

// ProcessAlive passes iff pidFile names a running process. A missing pid
// file, or one naming a dead process, is a failure.
func (l *Library) ProcessAlive(pidFile string) gate.Predicate {
	return func() (bool, error) {
		data, err := os.ReadFile(pidFile)
		if err != nil {
			if os.IsNotExist(err) {
				l.log.Log(audit.LevelError, "NO PIDFILE: "+pidFile)
				return false, nil
			}
			return false, err
		}
		pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
		if err != nil || pid <= 0 {
			return false, gate.WithCategory("pidfile", fmt.Errorf("bad pid in %s", pidFile))
		}
		if !pidAlive(pid) {
			l.log.Log(audit.LevelError, fmt.Sprintf("PROCESS DEAD: pid %d from %s", pid, pidFile))
			return false, nil
		}
		l.log.Log(audit.LevelOK, fmt.Sprintf("PROCESS ALIVE: pid %d", pid))
		return true, nil
	}
}

// pidAlive probes pid with signal 0. EPERM means the process exists but
// belongs to someone else.
func pidAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}
