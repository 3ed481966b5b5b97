package log

import "github.com/kataras/golog"

// GologLogger implements Logger using kataras/golog.
type GologLogger struct {
	logger *golog.Logger
}

var _ Logger = (*GologLogger)(nil)

// NewGologLogger creates a golog-backed logger at the given level
// ("debug", "info", "warn", "error" or "disable").
func NewGologLogger(level string) *GologLogger {
	l := golog.New()
	l.SetLevel(level)
	return &GologLogger{logger: l}
}

// WrapGolog wraps an existing golog.Logger.
func WrapGolog(l *golog.Logger) *GologLogger {
	return &GologLogger{logger: l}
}

func (l *GologLogger) Debugf(format string, v ...any) { l.logger.Debugf(format, v...) }
func (l *GologLogger) Infof(format string, v ...any)  { l.logger.Infof(format, v...) }
func (l *GologLogger) Warnf(format string, v ...any)  { l.logger.Warnf(format, v...) }
func (l *GologLogger) Errorf(format string, v ...any) { l.logger.Errorf(format, v...) }
