package logger

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/user/framestep/pkg/ports"
)

// SlogLogger writes structured records through a tint handler. It is used
// while the terminal UI owns stdout, with w pointing at a log file.
type SlogLogger struct {
	level  ports.LogLevel
	logger *slog.Logger
}

// NewSlog creates a logger writing to w. Color is enabled only when w is a
// terminal.
func NewSlog(level ports.LogLevel, w io.Writer) *SlogLogger {
	noColor := true
	if f, ok := w.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd())
	}
	h := tint.NewHandler(w, &tint.Options{
		Level:      toSlogLevel(level),
		TimeFormat: time.TimeOnly,
		NoColor:    noColor,
	})
	return &SlogLogger{level: level, logger: slog.New(h)}
}

func toSlogLevel(level ports.LogLevel) slog.Level {
	switch level {
	case ports.LevelDebug:
		return slog.LevelDebug
	case ports.LevelWarn:
		return slog.LevelWarn
	case ports.LevelError:
		return slog.LevelError
	case ports.LevelQuiet:
		return slog.LevelError + 4
	default:
		return slog.LevelInfo
	}
}

// Debug logs a debug message.
func (l *SlogLogger) Debug(msg string, args ...interface{}) {
	if l.level > ports.LevelDebug {
		return
	}
	l.logger.Debug(l10n.F(msg, args...))
}

// Info logs an informational message.
func (l *SlogLogger) Info(msg string, args ...interface{}) {
	if l.level > ports.LevelInfo {
		return
	}
	l.logger.Info(l10n.F(msg, args...))
}

// Warn logs a warning message.
func (l *SlogLogger) Warn(msg string, args ...interface{}) {
	if l.level > ports.LevelWarn {
		return
	}
	l.logger.Warn(l10n.F(msg, args...))
}

// Error logs an error message.
func (l *SlogLogger) Error(msg string, args ...interface{}) {
	if l.level > ports.LevelError {
		return
	}
	l.logger.Error(l10n.F(msg, args...))
}

// WithComponent returns a logger that tags every record with component.
func (l *SlogLogger) WithComponent(component string) ports.Logger {
	return &SlogLogger{
		level:  l.level,
		logger: l.logger.With(slog.String("component", component)),
	}
}

var _ ports.Logger = (*SlogLogger)(nil)
