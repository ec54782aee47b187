package audit

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Sink receives audit records. Implementations must not fail the caller.
type Sink interface {
	Log(level Level, msg string)
}

type discard struct{}

func (discard) Log(Level, string) {}

// Discard is a Sink that drops every record.
var Discard Sink = discard{}

// Logger is an append-only, line-oriented audit log writer.
// It is safe for concurrent use, and safe across processes as long as each
// line is small enough for an atomic O_APPEND write.
type Logger struct {
	mu       sync.Mutex
	path     string
	now      func() time.Time
	fallback io.Writer
	log      *slog.Logger
}

// Option configures a Logger.
type Option func(*Logger)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Logger) { l.now = now }
}

// WithFallback sets where lines go when the log file cannot be written.
func WithFallback(w io.Writer) Option {
	return func(l *Logger) { l.fallback = w }
}

// WithSlog sets the logger used to report write failures.
func WithSlog(log *slog.Logger) Option {
	return func(l *Logger) { l.log = log }
}

// NewLogger returns a logger appending to path. Nothing touches the
// filesystem until the first record is written.
func NewLogger(path string, opts ...Option) *Logger {
	l := &Logger{
		path:     path,
		now:      time.Now,
		fallback: os.Stderr,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Log appends one record. A failed write is redirected to the fallback writer.
func (l *Logger) Log(level Level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	line := Entry{Time: l.now(), Level: level, Message: msg}.String() + "\n"
	if err := l.append([]byte(line)); err != nil {
		l.log.Warn("audit log write failed, using fallback", "path", l.path, "err", err)
		_, _ = io.WriteString(l.fallback, line)
	}
}

func (l *Logger) append(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0700); err != nil {
		return fmt.Errorf("create audit dir: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write audit entry: %w", err)
	}
	return nil
}

// Path returns the audit log file path.
func (l *Logger) Path() string {
	return l.path
}
