package checks

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/marcelocantos/donegate/internal/audit"
	"github.com/marcelocantos/donegate/internal/gate"
)

// FilesExist passes iff every path exists. It stops at the first missing path.
func (l *Library) FilesExist(paths ...string) gate.Predicate {
	return func() (bool, error) {
		for _, p := range paths {
			ok, err := exists(p)
			if err != nil {
				return false, err
			}
			if !ok {
				l.log.Log(audit.LevelError, "MISSING: "+p)
				return false, nil
			}
		}
		l.log.Log(audit.LevelOK, fmt.Sprintf("All %d files exist", len(paths)))
		return true, nil
	}
}

// ScriptsExecutable passes iff every path is a regular file with at least
// one execute bit set.
func (l *Library) ScriptsExecutable(paths ...string) gate.Predicate {
	return func() (bool, error) {
		for _, p := range paths {
			ok, err := isExecutable(p)
			if err != nil {
				return false, err
			}
			if !ok {
				l.log.Log(audit.LevelError, "NOT EXECUTABLE: "+p)
				return false, nil
			}
		}
		l.log.Log(audit.LevelOK, fmt.Sprintf("All %d scripts executable", len(paths)))
		return true, nil
	}
}

// BuildArtifactPresent passes iff dir exists and is a directory. Its
// contents are not inspected.
func (l *Library) BuildArtifactPresent(dir string) gate.Predicate {
	return func() (bool, error) {
		ok, err := isDir(dir)
		if err != nil {
			return false, err
		}
		if !ok {
			l.log.Log(audit.LevelError, "BUILD NOT FOUND: "+dir)
			return false, nil
		}
		l.log.Log(audit.LevelOK, "BUILD EXISTS: "+dir)
		return true, nil
	}
}

// stat returns (nil, nil) when path does not exist.
func stat(path string) (fs.FileInfo, error) {
	fi, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return fi, err
}

func exists(path string) (bool, error) {
	fi, err := stat(path)
	return fi != nil, err
}

func isDir(path string) (bool, error) {
	fi, err := stat(path)
	return fi != nil && fi.IsDir(), err
}

func isExecutable(path string) (bool, error) {
	fi, err := stat(path)
	if fi == nil {
		return false, err
	}
	return fi.Mode().IsRegular() && fi.Mode().Perm()&0o111 != 0, nil
}

// Exists reports whether path exists.
func Exists(path string) (bool, error) { return exists(path) }

// IsDir reports whether path exists and is a directory.
func IsDir(path string) (bool, error) { return isDir(path) }

// IsExecutable reports whether path is a regular file with an execute bit.
func IsExecutable(path string) (bool, error) { return isExecutable(path) }
