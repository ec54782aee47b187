package audit

import (
	"fmt"
	"os"
)

// Tail returns the last n entries from the audit log. Lines that do not
// parse are skipped.
func Tail(path string, n int) ([]Entry, error) {
	entries, err := ReadAll(path)
	if err != nil {
		return nil, err
	}
	if n < 0 || n > len(entries) {
		n = len(entries)
	}
	return entries[len(entries)-n:], nil
}

// ReadAll returns every parseable entry in the audit log.
func ReadAll(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}

	lines := splitLines(data)
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		e, err := ParseLine(string(line))
		if err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Summary counts records per level.
type Summary struct {
	Entries int
	Skipped int
	Counts  map[Level]int
}

// Summarize reads the audit log and counts records by level.
// A missing log yields an empty summary.
func Summarize(path string) (*Summary, error) {
	s := &Summary{Counts: make(map[Level]int)}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read audit log: %w", err)
	}

	for _, line := range splitLines(data) {
		e, err := ParseLine(string(line))
		if err != nil {
			s.Skipped++
			continue
		}
		s.Entries++
		s.Counts[e.Level]++
	}
	return s, nil
}

func splitLines(data []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i, b := range data {
		if b == '\n' {
			if i > start {
				lines = append(lines, data[start:i])
			}
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, data[start:])
	}
	return lines
}
