package log

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Level is the severity of a log entry.
type Level int

const (
	LevelError Level = iota + 1
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

// String returns the uppercase name of the level as printed by lazymc.
func (l Level) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	case LevelTrace:
		return "TRACE"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps an exact uppercase level token to a Level.
// Tokens in any other case are rejected.
func ParseLevel(token string) (Level, bool) {
	switch token {
	case "ERROR":
		return LevelError, true
	case "WARN":
		return LevelWarn, true
	case "INFO":
		return LevelInfo, true
	case "DEBUG":
		return LevelDebug, true
	case "TRACE":
		return LevelTrace, true
	}
	return 0, false
}

// ParseConfigLevel parses a user supplied level name, case-insensitively.
// Used for the --log-level flag and its env/file equivalents.
func ParseConfigLevel(s string) (Level, error) {
	if lvl, ok := ParseLevel(strings.ToUpper(strings.TrimSpace(s))); ok {
		return lvl, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// Zerolog converts the level to its zerolog counterpart.
func (l Level) Zerolog() zerolog.Level {
	switch l {
	case LevelError:
		return zerolog.ErrorLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelTrace:
		return zerolog.TraceLevel
	default:
		return zerolog.NoLevel
	}
}
