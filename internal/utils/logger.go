package utils

import (
	"fmt"
	"io"
	"log"
	"os"
)

type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Logger writes leveled, optionally colored lines. A nil *Logger discards
// everything, so packages can take one without requiring it.
type Logger struct {
	Level LogLevel
	Color bool
	out   *log.Logger
}

func NewLogger(w io.Writer, level LogLevel) *Logger {
	return &Logger{Level: level, out: log.New(w, "", 0)}
}

// NewConsoleLogger logs to w, with colors when w is a terminal. Verbose
// lowers the level from Warn to Debug.
func NewConsoleLogger(w io.Writer, verbose bool) *Logger {
	level := LevelWarn
	if verbose {
		level = LevelDebug
	}
	l := NewLogger(w, level)
	if f, ok := w.(*os.File); ok {
		l.Color = IsTerminal(f)
	}
	return l
}

// Enabled reports whether a message at level would be written.
func (l *Logger) Enabled(level LogLevel) bool {
	return l != nil && level >= l.Level
}

func (l *Logger) logMessage(level LogLevel, format string, v ...interface{}) {
	if !l.Enabled(level) {
		return
	}

	const (
		colorReset  = "\033[0m"
		colorCyan   = "\033[36m"
		colorBlue   = "\033[34m"
		colorYellow = "\033[33m"
		colorRed    = "\033[31m"
	)

	prefix := fmt.Sprintf("[%s] ", level.String())
	if l.Color {
		var colorCode string
		switch level {
		case LevelDebug:
			colorCode = colorCyan
		case LevelInfo:
			colorCode = colorBlue
		case LevelWarn:
			colorCode = colorYellow
		case LevelError:
			colorCode = colorRed
		}
		prefix = fmt.Sprintf("%s[%s]%s ", colorCode, level.String(), colorReset)
	}
	l.out.Printf(prefix+format, v...)
}

func (l *Logger) Info(format string, v ...interface{})  { l.logMessage(LevelInfo, format, v...) }
func (l *Logger) Debug(format string, v ...interface{}) { l.logMessage(LevelDebug, format, v...) }
func (l *Logger) Warn(format string, v ...interface{})  { l.logMessage(LevelWarn, format, v...) }
func (l *Logger) Error(format string, v ...interface{}) { l.logMessage(LevelError, format, v...) }

// IsTerminal reports whether f is attached to a character device.
func IsTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
