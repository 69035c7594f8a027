// Package logging provides the minimal printf-style logging contract shared
// by every component, plus a file/console implementation used by the CLI.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"time"
)

// Logger defines a minimal, printf-style logging contract.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Nop returns a logger that discards all output.
func Nop() Logger {
	return nopLogger{}
}

// IsNil reports whether logger is nil or wraps a nil pointer receiver.
func IsNil(logger Logger) bool {
	if logger == nil {
		return true
	}
	val := reflect.ValueOf(logger)
	switch val.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func:
		return val.IsNil()
	default:
		return false
	}
}

// OrNop returns logger when non-nil, otherwise a no-op logger.
func OrNop(logger Logger) Logger {
	if IsNil(logger) {
		return Nop()
	}
	return logger
}

type multiLogger struct {
	loggers []Logger
}

// Multi returns a logger fan-out that calls every non-nil logger in order.
func Multi(loggers ...Logger) Logger {
	flattened := make([]Logger, 0, len(loggers))
	for _, logger := range loggers {
		if IsNil(logger) {
			continue
		}
		if ml, ok := logger.(*multiLogger); ok {
			flattened = append(flattened, ml.loggers...)
			continue
		}
		flattened = append(flattened, logger)
	}
	if len(flattened) == 0 {
		return Nop()
	}
	if len(flattened) == 1 {
		return flattened[0]
	}
	return &multiLogger{loggers: flattened}
}

func (l *multiLogger) Debug(format string, args ...any) {
	for _, logger := range l.loggers {
		logger.Debug(format, args...)
	}
}

func (l *multiLogger) Info(format string, args ...any) {
	for _, logger := range l.loggers {
		logger.Info(format, args...)
	}
}

func (l *multiLogger) Warn(format string, args ...any) {
	for _, logger := range l.loggers {
		logger.Warn(format, args...)
	}
}

func (l *multiLogger) Error(format string, args ...any) {
	for _, logger := range l.loggers {
		logger.Error(format, args...)
	}
}

// Level represents the severity of a log message.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a config string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// FileLogger writes timestamped lines to a file and, optionally, a console
// writer. It is safe for concurrent use.
type FileLogger struct {
	mu        sync.Mutex
	level     Level
	component string
	file      *os.File
	out       *log.Logger
	console   io.Writer
}

// NewFileLogger opens (appending) the log file at path. When console is
// non-nil every line is mirrored there. The parent directory is created if
// needed.
func NewFileLogger(path string, level Level, console io.Writer) (*FileLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return &FileLogger{
		level:   level,
		file:    file,
		out:     log.New(file, "", 0),
		console: console,
	}, nil
}

// NewConsoleLogger returns a logger writing to w only, with no backing file.
func NewConsoleLogger(level Level, w io.Writer) *FileLogger {
	return &FileLogger{level: level, out: log.New(w, "", 0)}
}

// WithComponent returns a logger that prefixes every line with the component
// name, sharing the underlying file.
func (l *FileLogger) WithComponent(component string) *FileLogger {
	return &FileLogger{
		level:     l.level,
		component: component,
		file:      l.file,
		out:       l.out,
		console:   l.console,
	}
}

// Close closes the underlying log file.
func (l *FileLogger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

func (l *FileLogger) log(level Level, tag string, format string, args ...any) {
	if level < l.level || l.out == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	var line string
	if l.component != "" {
		line = fmt.Sprintf("[%s] %s [%s] %s", time.Now().Format("2006-01-02 15:04:05"), tag, l.component, msg)
	} else {
		line = fmt.Sprintf("[%s] %s %s", time.Now().Format("2006-01-02 15:04:05"), tag, msg)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.Print(line)
	if l.console != nil {
		fmt.Fprintln(l.console, line)
	}
}

func (l *FileLogger) Debug(format string, args ...any) { l.log(LevelDebug, "DEBUG", format, args...) }
func (l *FileLogger) Info(format string, args ...any)  { l.log(LevelInfo, "INFO", format, args...) }
func (l *FileLogger) Warn(format string, args ...any)  { l.log(LevelWarn, "WARN", format, args...) }
func (l *FileLogger) Error(format string, args ...any) { l.log(LevelError, "ERROR", format, args...) }
