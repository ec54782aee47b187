package audit

import (
	"fmt"
	"strings"
	"time"
)

// Level classifies an audit record.
type Level string

const (
	LevelEnforce Level = "ENFORCE" // a gate evaluation started
	LevelCheck   Level = "CHECK"   // a check returned a verdict
	LevelError   Level = "ERROR"   // a check errored, or a detail check failed
	LevelBlock   Level = "BLOCK"   // the gate refused the completion claim
	LevelPass    Level = "PASS"    // the gate allowed the completion claim
	LevelInfo    Level = "INFO"
	LevelOK      Level = "OK"
)

// Levels lists every level in display order.
var Levels = []Level{LevelEnforce, LevelCheck, LevelError, LevelBlock, LevelPass, LevelInfo, LevelOK}

// ParseLevel converts a string to a Level.
func ParseLevel(s string) (Level, error) {
	for _, l := range Levels {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown audit level: %q", s)
}

// TimeFormat is ISO-8601 with microseconds and a UTC offset.
const TimeFormat = "2006-01-02T15:04:05.000000Z07:00"

const sep = " - "

// Entry represents a single audit log record.
type Entry struct {
	Time    time.Time `json:"ts"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
}

// String renders the entry as one log line, without the trailing newline.
func (e Entry) String() string {
	return e.Time.Format(TimeFormat) + sep + string(e.Level) + sep + flatten(e.Message)
}

// ParseLine parses a line of the form "<timestamp> - <LEVEL> - <message>".
func ParseLine(line string) (Entry, error) {
	line = strings.TrimRight(line, "\r\n")
	ts, rest, ok := strings.Cut(line, sep)
	if !ok {
		return Entry{}, fmt.Errorf("malformed audit line: missing separator")
	}
	lvl, msg, ok := strings.Cut(rest, sep)
	if !ok {
		return Entry{}, fmt.Errorf("malformed audit line: missing level")
	}
	t, err := time.Parse(TimeFormat, ts)
	if err != nil {
		return Entry{}, fmt.Errorf("malformed audit timestamp: %w", err)
	}
	level, err := ParseLevel(lvl)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Time: t, Level: level, Message: msg}, nil
}

// flatten keeps one record on one physical line.
func flatten(msg string) string {
	if !strings.ContainsAny(msg, "\r\n") {
		return msg
	}
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(msg)
}
