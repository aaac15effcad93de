package logger

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
)

// Logger wraps charm/log for structured logging
type Logger struct {
	*log.Logger
}

// New creates a new logger with the given output
func New(w io.Writer) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})
	return &Logger{Logger: l}
}

// NewWithLevel creates a logger with a specific level
func NewWithLevel(w io.Writer, level log.Level) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           level,
	})
	return &Logger{Logger: l}
}

// Discard returns a logger that discards all output
func Discard() *Logger {
	return New(io.Discard)
}

// ParseLevel maps a config level name to a log level. Unknown names fall
// back to info.
func ParseLevel(name string) log.Level {
	level, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// ConversionCompleted logs a finished markdown to wiki markup conversion
func (l *Logger) ConversionCompleted(source string, inBytes, outBytes int, duration time.Duration) {
	l.Info("conversion completed",
		"source", source,
		"in", humanize.Bytes(uint64(inBytes)),
		"out", humanize.Bytes(uint64(outBytes)),
		"duration", duration.Round(time.Microsecond))
}

// ConversionFailed logs a conversion error
func (l *Logger) ConversionFailed(source string, err error) {
	l.Error("conversion failed",
		"source", source,
		"error", err)
}

// UnsupportedNode logs a node kind that was rendered through its children only
func (l *Logger) UnsupportedNode(kind string) {
	l.Debug("unsupported node, rendering children",
		"kind", kind)
}

// TemplatesLoaded logs the size of the template set
func (l *Logger) TemplatesLoaded(count int, dir string) {
	l.Debug("templates loaded",
		"count", count,
		"dir", dir)
}

// TemplateMissing logs a lookup of an unknown template id
func (l *Logger) TemplateMissing(id string) {
	l.Warn("template not found",
		"id", id)
}

// ToolCalled logs an incoming tool invocation
func (l *Logger) ToolCalled(name string, keyvals ...interface{}) {
	l.Debug("tool called", append([]interface{}{"tool", name}, keyvals...)...)
}

// ConfigLoaded logs successful config loading
func (l *Logger) ConfigLoaded(path string, level string) {
	l.Debug("config loaded",
		"path", path,
		"level", level)
}
