package log

// NoopLogger implements Logger by discarding all log messages.
type NoopLogger struct{}

// NewNoopLogger creates a new no-op logger.
func NewNoopLogger() *NoopLogger {
	return &NoopLogger{}
}

func (NoopLogger) Trace(msg string, fields ...Field)            {}
func (NoopLogger) Debug(msg string, fields ...Field)            {}
func (NoopLogger) Info(msg string, fields ...Field)             {}
func (NoopLogger) Warn(msg string, fields ...Field)             {}
func (NoopLogger) Error(msg string, fields ...Field)            {}
func (NoopLogger) Log(level Level, msg string, fields ...Field) {}

// WithTarget returns the receiver; there is nothing to scope.
func (n NoopLogger) WithTarget(target string) Logger { return n }
