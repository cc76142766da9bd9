package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Config selects the level, encoding and destination of the process
// logger. It mirrors the LOG_* environment variables.
type Config struct {
	Level  string // debug, info, warn, error or fatal; unknown means info
	Format string // json or text
	Output string // stderr, stdout or a file path opened for append
}

// DefaultConfig logs JSON at info level to stderr.
func DefaultConfig() *Config {
	return &Config{Level: "info", Format: string(JSONFormat), Output: "stderr"}
}

// NewLogger builds a Logger from cfg. A nil cfg means DefaultConfig.
func NewLogger(cfg *Config) (*Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	out, err := openOutput(cfg.Output)
	if err != nil {
		return nil, fmt.Errorf("logging: open output %q: %w", cfg.Output, err)
	}
	return New(parseLevel(cfg.Level), out).WithFormat(parseFormat(cfg.Format)), nil
}

var levelNames = map[string]LogLevel{
	"DEBUG":   DebugLevel,
	"INFO":    InfoLevel,
	"WARN":    WarnLevel,
	"WARNING": WarnLevel,
	"ERROR":   ErrorLevel,
	"FATAL":   FatalLevel,
}

func parseLevel(level string) LogLevel {
	if l, ok := levelNames[strings.ToUpper(strings.TrimSpace(level))]; ok {
		return l
	}
	return InfoLevel
}

func parseFormat(format string) Format {
	if strings.EqualFold(format, string(TextFormat)) {
		return TextFormat
	}
	return JSONFormat
}

// openOutput resolves the stream names and otherwise appends to a file,
// which must be in an existing directory.
func openOutput(output string) (io.Writer, error) {
	switch strings.ToLower(output) {
	case "", "stderr":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	}
	return os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}
