package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where and how log lines are written.
type Options struct {
	Level  string
	Format string
	// File enables an additional rotating log file when non-empty.
	File string
}

// Logger provides leveled logging for the scraping pipeline.
type Logger struct {
	l    *log.Logger
	file io.Closer
}

// New creates a logger writing to stderr and, optionally, a rotating file.
func New(opts Options) (*Logger, error) {
	level := log.InfoLevel
	if strings.TrimSpace(opts.Level) != "" {
		parsed, err := log.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("parse log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	var formatter log.Formatter
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "text":
		formatter = log.TextFormatter
	case "json":
		formatter = log.JSONFormatter
	case "logfmt":
		formatter = log.LogfmtFormatter
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}

	var w io.Writer = os.Stderr
	var file io.Closer
	if opts.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		}
		w = io.MultiWriter(os.Stderr, rotating)
		file = rotating
	}

	l := log.NewWithOptions(w, log.Options{
		Level:           level,
		Formatter:       formatter,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})
	return &Logger{l: l, file: file}, nil
}

// NewWithWriter creates a text logger on an arbitrary writer.
func NewWithWriter(w io.Writer, level log.Level) *Logger {
	return &Logger{l: log.NewWithOptions(w, log.Options{Level: level})}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return NewWithWriter(io.Discard, log.FatalLevel)
}

// Debugf writes a debug message.
func (lg *Logger) Debugf(format string, args ...any) {
	lg.l.Debugf(format, args...)
}

// Infof writes an informational message.
func (lg *Logger) Infof(format string, args ...any) {
	lg.l.Infof(format, args...)
}

// Warnf writes a warning message.
func (lg *Logger) Warnf(format string, args ...any) {
	lg.l.Warnf(format, args...)
}

// Errorf writes an error message.
func (lg *Logger) Errorf(format string, args ...any) {
	lg.l.Errorf(format, args...)
}

// With returns a child logger carrying extra key/value fields.
func (lg *Logger) With(keyvals ...any) *Logger {
	return &Logger{l: lg.l.With(keyvals...)}
}

// Close flushes and closes the rotating log file, if any.
func (lg *Logger) Close() error {
	if lg.file == nil {
		return nil
	}
	return lg.file.Close()
}
