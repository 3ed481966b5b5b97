// Package log provides the logging facade for the news agent. Components log
// through the Logger interface; the default implementation is backed by golog.
package log

// Logger is the minimal logging surface used across the agent.
type Logger interface {
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Warnf(format string, v ...any)
	Errorf(format string, v ...any)
}

// NoOpLogger discards everything. Useful in tests.
type NoOpLogger struct{}

func (NoOpLogger) Debugf(string, ...any) {}
func (NoOpLogger) Infof(string, ...any)  {}
func (NoOpLogger) Warnf(string, ...any)  {}
func (NoOpLogger) Errorf(string, ...any) {}

var defaultLogger Logger = NewGologLogger("info")

// SetDefault replaces the package-level logger.
func SetDefault(l Logger) {
	defaultLogger = l
}

// Default returns the package-level logger.
func Default() Logger {
	return defaultLogger
}

// Debugf logs a debug message via the package-level logger.
func Debugf(format string, v ...any) { defaultLogger.Debugf(format, v...) }

// Infof logs an informational message via the package-level logger.
func Infof(format string, v ...any) { defaultLogger.Infof(format, v...) }

// Warnf logs a warning via the package-level logger.
func Warnf(format string, v ...any) { defaultLogger.Warnf(format, v...) }

// Errorf logs an error via the package-level logger.
func Errorf(format string, v ...any) { defaultLogger.Errorf(format, v...) }
