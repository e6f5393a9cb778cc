package framemsg

import (
	"fmt"
	"log/slog"
)

// Logger is the logging interface used by the router, device and bootstrap.
type Logger interface {
	ErrorPrintf(format string, args ...any)
	WarnPrintf(format string, args ...any)
	InfoPrintf(format string, args ...any)
	DebugPrintf(format string, args ...any)
	Errorf(format string, args ...any) error
}

// DefaultLogger returns a Logger writing to slog.Default().
func DefaultLogger() Logger {
	return SlogLogger(nil)
}

// SlogLogger creates a Logger from a slog.Logger. A nil logger resolves to
// slog.Default() at each call.
func SlogLogger(l *slog.Logger) Logger {
	return &slogLogger{l}
}

type slogLogger struct {
	l *slog.Logger
}

func (s *slogLogger) logger() *slog.Logger {
	if s.l == nil {
		return slog.Default()
	}
	return s.l
}

func (s *slogLogger) ErrorPrintf(format string, args ...any) {
	s.logger().Error("framemsg: " + fmt.Sprintf(format, args...))
}

func (s *slogLogger) WarnPrintf(format string, args ...any) {
	s.logger().Warn("framemsg: " + fmt.Sprintf(format, args...))
}

func (s *slogLogger) InfoPrintf(format string, args ...any) {
	s.logger().Info("framemsg: " + fmt.Sprintf(format, args...))
}

func (s *slogLogger) DebugPrintf(format string, args ...any) {
	s.logger().Debug("framemsg: " + fmt.Sprintf(format, args...))
}

func (s *slogLogger) Errorf(format string, args ...any) error {
	return fmt.Errorf("framemsg: "+format, args...)
}
