// Package logger provides the levelled console logger shared by every stage of a search.
package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Logger defines the logging interface used throughout the application
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// Nop is a logger implementation that does nothing
type Nop struct{}

func (Nop) Debug(format string, args ...interface{}) {}
func (Nop) Info(format string, args ...interface{})  {}
func (Nop) Warn(format string, args ...interface{})  {}
func (Nop) Error(format string, args ...interface{}) {}

// Level defines log severity levels
type Level int

const (
	// Log levels from least to most restrictive
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelNone
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "none"
	}
}

// ParseLevel converts a level name to a Level. Unknown names report ok=false
// and fall back to LevelWarn.
func ParseLevel(level string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "trace":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	case "none", "off":
		return LevelNone, true
	default:
		return LevelWarn, false
	}
}

// FromVerbosity maps a repeated -V count to a level: warnings by default,
// info at -V and debug from -VV on.
func FromVerbosity(n int) Level {
	switch {
	case n < 0:
		return LevelNone
	case n == 0:
		return LevelWarn
	case n == 1:
		return LevelInfo
	default:
		return LevelDebug
	}
}

// sink is the destination shared by a logger and its named children.
type sink struct {
	mu        sync.Mutex
	out       io.Writer
	useColors bool
}

// Console writes levelled, timestamped lines. Workers log concurrently,
// so every line is written under a lock.
type Console struct {
	sink  *sink
	level Level
	name  string
}

// New creates a new Console with the given settings
func New(out io.Writer, level Level, useColors bool) *Console {
	return &Console{
		sink:  &sink{out: out, useColors: useColors},
		level: level,
	}
}

// Named returns a child logger that prefixes every message with name.
func (l *Console) Named(name string) *Console {
	child := *l
	if l.name != "" {
		child.name = l.name + "." + name
	} else {
		child.name = name
	}
	return &child
}

// Level reports the minimum level that is written.
func (l *Console) Level() Level {
	return l.level
}

// Enabled reports whether messages at level would be written.
func (l *Console) Enabled(level Level) bool {
	return l.level <= level
}

// Debug logs a debug message
func (l *Console) Debug(format string, args ...interface{}) {
	l.write(LevelDebug, "DEBUG", color.CyanString, format, args)
}

// Info logs an informational message
func (l *Console) Info(format string, args ...interface{}) {
	l.write(LevelInfo, "INFO", color.BlueString, format, args)
}

// Warn logs a warning message
func (l *Console) Warn(format string, args ...interface{}) {
	l.write(LevelWarn, "WARN", color.YellowString, format, args)
}

// Error logs an error message
func (l *Console) Error(format string, args ...interface{}) {
	l.write(LevelError, "ERROR", color.RedString, format, args)
}

func (l *Console) write(level Level, prefix string, paint func(string, ...interface{}) string, format string, args []interface{}) {
	if l.level > level {
		return
	}
	if l.sink.useColors {
		prefix = paint(prefix)
	}
	msg := fmt.Sprintf(format, args...)
	if l.name != "" {
		msg = l.name + ": " + msg
	}

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	fmt.Fprintf(l.sink.out, "[%s %s] %s\n", timeString(), prefix, msg)
}

// timeString returns a formatted time string for the log prefix
func timeString() string {
	return time.Now().Format("15:04:05.000")
}
