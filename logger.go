package orchid

import (
	"fmt"
	"strings"
)

// Fields is a minimal structured field map for logs.
type Fields map[string]any

// Logger is a tiny leveled logger. Provide an adapter around your logging stack
// (see the log/ subpackages). A nil Logger in any Options disables logging.
type Logger interface {
	Debug(msg string, f Fields)
	Info(msg string, f Fields)
	Warn(msg string, f Fields)
	Error(msg string, f Fields)
}

type NopLogger struct{}

func (NopLogger) Debug(string, Fields) {}
func (NopLogger) Info(string, Fields)  {}
func (NopLogger) Warn(string, Fields)  {}
func (NopLogger) Error(string, Fields) {}

// Level selects which Logger method a wrapper reports through.
type Level int

const (
	LevelInfo Level = iota // zero value => Info
	LevelDebug
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// ParseLevel accepts the usual names, case-insensitive ("warning" too).
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("orchid: unknown log level %q", s)
}

// Log dispatches msg to the method of l matching lvl.
func Log(l Logger, lvl Level, msg string, f Fields) {
	if l == nil {
		return
	}
	switch lvl {
	case LevelDebug:
		l.Debug(msg, f)
	case LevelWarn:
		l.Warn(msg, f)
	case LevelError:
		l.Error(msg, f)
	default:
		l.Info(msg, f)
	}
}
