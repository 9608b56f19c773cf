package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// RootTarget is the target used by a fresh adapter.
const RootTarget = "lazymc-docker-proxy"

// ZerologAdapter implements Logger using zerolog.
type ZerologAdapter struct {
	logger zerolog.Logger
	target string
}

// NewZerologAdapter creates a new zerolog adapter with console output on stderr.
// The target is printed between the level and the message.
func NewZerologAdapter() *ZerologAdapter {
	return NewZerologAdapterWithLogger(zerolog.New(NewConsoleWriter(os.Stderr)).With().Timestamp().Logger())
}

// NewConsoleWriter returns the console writer used by NewZerologAdapter.
func NewConsoleWriter(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		PartsOrder: []string{
			zerolog.TimestampFieldName,
			zerolog.LevelFieldName,
			TargetKey,
			zerolog.MessageFieldName,
		},
		FieldsExclude: []string{TargetKey},
	}
}

// NewZerologAdapterWithLogger creates an adapter wrapping an existing zerolog.Logger.
func NewZerologAdapterWithLogger(logger zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: logger, target: RootTarget}
}

// SetLevel sets the process-wide minimum level.
func SetLevel(level Level) {
	zerolog.SetGlobalLevel(level.Zerolog())
}

// Trace logs a trace-level message.
func (z *ZerologAdapter) Trace(msg string, fields ...Field) {
	z.emit(z.logger.Trace(), msg, fields)
}

// Debug logs a debug-level message.
func (z *ZerologAdapter) Debug(msg string, fields ...Field) {
	z.emit(z.logger.Debug(), msg, fields)
}

// Info logs an info-level message.
func (z *ZerologAdapter) Info(msg string, fields ...Field) {
	z.emit(z.logger.Info(), msg, fields)
}

// Warn logs a warning-level message.
func (z *ZerologAdapter) Warn(msg string, fields ...Field) {
	z.emit(z.logger.Warn(), msg, fields)
}

// Error logs an error-level message.
func (z *ZerologAdapter) Error(msg string, fields ...Field) {
	z.emit(z.logger.Error(), msg, fields)
}

// Log logs a message at the given level.
func (z *ZerologAdapter) Log(level Level, msg string, fields ...Field) {
	z.emit(z.logger.WithLevel(level.Zerolog()), msg, fields)
}

// WithTarget returns an adapter sharing the same output with a different target.
func (z *ZerologAdapter) WithTarget(target string) Logger {
	return &ZerologAdapter{logger: z.logger, target: target}
}

// Logger returns the underlying zerolog.Logger.
func (z *ZerologAdapter) Logger() zerolog.Logger {
	return z.logger
}

func (z *ZerologAdapter) emit(event *zerolog.Event, msg string, fields []Field) {
	// nil when the level is disabled
	if event == nil {
		return
	}
	event = event.Str(TargetKey, z.target)
	for _, f := range fields {
		event = addField(event, f)
	}
	event.Msg(msg)
}

// addField adds a Field to a zerolog.Event.
func addField(event *zerolog.Event, f Field) *zerolog.Event {
	switch v := f.Value.(type) {
	case string:
		return event.Str(f.Key, v)
	case int:
		return event.Int(f.Key, v)
	case int64:
		return event.Int64(f.Key, v)
	case bool:
		return event.Bool(f.Key, v)
	case time.Duration:
		return event.Dur(f.Key, v)
	case error:
		return event.Err(v)
	default:
		return event.Interface(f.Key, v)
	}
}
