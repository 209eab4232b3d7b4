// Package logger is a small leveled console logger. Every line goes through
// a standard log.Logger; levels are colored when writing to a terminal.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	OffLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	case OffLevel:
		return "off"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "", "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	case "off":
		return OffLevel, nil
	default:
		return InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
}

type Logger struct {
	logger *log.Logger
	level  Level

	debug *color.Color
	info  *color.Color
	warn  *color.Color
	err   *color.Color
}

// New writes to w with the given prefix, e.g. "[nvfans] ".
func New(w io.Writer, prefix string, level Level) *Logger {
	l := &Logger{
		logger: log.New(w, prefix, log.LstdFlags),
		level:  level,
		debug:  color.New(color.FgCyan),
		info:   color.New(color.FgGreen),
		warn:   color.New(color.FgYellow),
		err:    color.New(color.FgRed),
	}
	if !isTerminal(w) {
		for _, c := range []*color.Color{l.debug, l.info, l.warn, l.err} {
			c.DisableColor()
		}
	}
	return l
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (l *Logger) Level() Level {
	return l.level
}

// Writer is where the lines end up.
func (l *Logger) Writer() io.Writer {
	return l.logger.Writer()
}

func (l *Logger) output(level Level, c *color.Color, tag string, format string, args ...any) {
	if l.level > level {
		return
	}
	l.logger.Print(c.Sprintf(tag+" "+format, args...))
}

func (l *Logger) Debugf(format string, args ...any) {
	l.output(DebugLevel, l.debug, "[DEBUG]", format, args...)
}

func (l *Logger) Infof(format string, args ...any) {
	l.output(InfoLevel, l.info, "[INFO]", format, args...)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.output(WarnLevel, l.warn, "[WARN]", format, args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.output(ErrorLevel, l.err, "[ERROR]", format, args...)
}

// Printf logs at info level so a *Logger can be handed to anything that
// expects a *log.Logger-shaped Printf.
func (l *Logger) Printf(format string, args ...any) {
	l.Infof(format, args...)
}

// Fatalf logs regardless of level and exits with status 1.
func (l *Logger) Fatalf(format string, args ...any) {
	l.logger.Print(l.err.Sprintf("[FATAL] "+format, args...))
	os.Exit(1)
}
