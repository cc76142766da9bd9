// Package logging provides structured logging for hopbench.
package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity level of a log entry.
type LogLevel string

const (
	// DebugLevel logs are voluminous: per-run optimizer progress.
	DebugLevel LogLevel = "DEBUG"
	// InfoLevel is the default logging priority.
	InfoLevel LogLevel = "INFO"
	// WarnLevel logs are more important than Info, but don't need individual
	// human review.
	WarnLevel LogLevel = "WARN"
	// ErrorLevel logs are high-priority: failed jobs, failed reports.
	ErrorLevel LogLevel = "ERROR"
	// FatalLevel logs a message, then calls os.Exit(1).
	FatalLevel LogLevel = "FATAL"
)

var levelRank = map[LogLevel]int{
	DebugLevel: 0,
	InfoLevel:  1,
	WarnLevel:  2,
	ErrorLevel: 3,
	FatalLevel: 4,
}

// Format selects how entries are encoded.
type Format string

const (
	JSONFormat Format = "json"
	TextFormat Format = "text"
)

// sink is the writer shared by a logger and every logger derived from it.
type sink struct {
	mu  sync.Mutex
	out io.Writer
}

// Logger represents an active logging object. Loggers derived through
// WithFields share their parent's output and are safe for concurrent use.
type Logger struct {
	level  LogLevel
	format Format
	sink   *sink
	fields map[string]interface{}
}

// New returns a JSON logger writing entries at level or above to output.
func New(level LogLevel, output io.Writer) *Logger {
	return &Logger{
		level:  level,
		format: JSONFormat,
		sink:   &sink{out: output},
		fields: make(map[string]interface{}),
	}
}

// WithFormat returns a copy of the logger encoding entries as f.
func (l *Logger) WithFormat(f Format) *Logger {
	c := *l
	c.format = f
	return &c
}

// WithFields returns a child logger carrying fields on every entry. The
// child shares the parent's sink.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	maps.Copy(merged, l.fields)
	maps.Copy(merged, fields)

	c := *l
	c.fields = merged
	return &c
}

// WithField is WithFields with a single pair.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithError returns a new Logger with the error field set.
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return l.WithField("error", err.Error())
}

// log writes a log entry with the given level and message.
func (l *Logger) log(level LogLevel, msg string, fields map[string]interface{}) {
	if !l.shouldLog(level) {
		return
	}

	_, file, line, ok := runtime.Caller(2)
	if !ok {
		file = "???"
		line = 0
	} else {
		parts := strings.Split(file, "/")
		if len(parts) > 2 {
			file = strings.Join(parts[len(parts)-2:], "/")
		}
	}
	l.write(level, msg, fmt.Sprintf("%s:%d", file, line), fields)
}

func (l *Logger) write(level LogLevel, msg, caller string, fields map[string]interface{}) {
	entry := make(map[string]interface{}, len(l.fields)+len(fields)+4)
	maps.Copy(entry, l.fields)
	maps.Copy(entry, fields)
	ts := time.Now().UTC().Format(time.RFC3339Nano)

	var data []byte
	if l.format == TextFormat {
		data = encodeText(ts, level, msg, caller, entry)
	} else {
		entry["timestamp"] = ts
		entry["level"] = level
		entry["message"] = msg
		if _, set := entry["caller"]; !set {
			entry["caller"] = caller
		}
		var err error
		data, err = json.Marshal(entry)
		if err != nil {
			data = []byte(fmt.Sprintf("%s [%s] %s: %+v", ts, level, msg, fields))
		}
	}
	data = append(data, '\n')

	l.sink.mu.Lock()
	_, _ = l.sink.out.Write(data)
	l.sink.mu.Unlock()

	if level == FatalLevel {
		os.Exit(1)
	}
}

// encodeText renders "ts LEVEL msg key=value ..." with keys sorted.
func encodeText(ts string, level LogLevel, msg, caller string, fields map[string]interface{}) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %-5s %s", ts, level, msg)
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}
	if _, set := fields["caller"]; !set {
		fmt.Fprintf(&b, " caller=%s", caller)
	}
	return []byte(b.String())
}

// shouldLog returns true if the given level should be logged.
func (l *Logger) shouldLog(level LogLevel) bool {
	rank, exists := levelRank[level]
	if !exists {
		return false
	}
	current, exists := levelRank[l.level]
	if !exists {
		return false
	}
	return rank >= current
}

// Debug logs a message at DebugLevel.
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	l.log(DebugLevel, msg, first(fields))
}

// Info logs a message at InfoLevel.
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	l.log(InfoLevel, msg, first(fields))
}

// Warn logs a message at WarnLevel.
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	l.log(WarnLevel, msg, first(fields))
}

// Error logs a message at ErrorLevel.
func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	l.log(ErrorLevel, msg, first(fields))
}

// Fatal logs a message at FatalLevel then calls os.Exit(1).
func (l *Logger) Fatal(msg string, fields ...map[string]interface{}) {
	l.log(FatalLevel, msg, first(fields))
}

func first(fields []map[string]interface{}) map[string]interface{} {
	if len(fields) > 0 {
		return fields[0]
	}
	return nil
}

// CtxLogger is a logger that can be used with context.
type CtxLogger struct {
	*Logger
}

// FromContext returns a logger from the context or a new one if none exists.
func FromContext(ctx context.Context) *CtxLogger {
	if logger, ok := ctx.Value(ctxLoggerKey{}).(*CtxLogger); ok {
		return logger
	}
	return &CtxLogger{New(InfoLevel, os.Stderr)}
}

// WithContext returns a new context with the logger.
func (l *CtxLogger) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxLoggerKey{}, l)
}

type ctxLoggerKey struct{}
