package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds logger configuration
type Config struct {
	Level      string
	Format     string // "pretty" or "json"
	WithCaller bool
	NoColor    bool
	Output     io.Writer
	TimeFormat string
}

// DefaultConfig returns the logger defaults used by the CLI
func DefaultConfig() *Config {
	return &Config{
		Level:      "warn",
		Format:     "pretty",
		WithCaller: false,
		Output:     os.Stderr,
		TimeFormat: time.RFC3339,
	}
}

// InitLogger creates and configures a new zerolog logger.
// The global logger in zerolog/log is replaced as well so that
// errors.PresentError reports through the same sink.
func InitLogger(config *Config) zerolog.Logger {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Output == nil {
		config.Output = os.Stderr
	}

	zerolog.SetGlobalLevel(ParseLevel(config.Level))

	if config.TimeFormat != "" {
		zerolog.TimeFieldFormat = config.TimeFormat
	}

	var output io.Writer = config.Output
	if config.Format == "pretty" {
		output = &zerolog.ConsoleWriter{
			Out:        config.Output,
			TimeFormat: "15:04:05",
			NoColor:    config.NoColor,
		}
	}

	logger := zerolog.New(output).With().
		Timestamp().
		Str("app", "rdmctl").
		Logger()

	if config.WithCaller {
		logger = logger.With().Caller().Logger()
	}

	log.Logger = logger

	return logger
}

// ParseLevel converts string level to zerolog.Level, defaulting to info
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// SetupFromFlags configures logger based on command flags.
// An explicit level wins over the verbose/debug switches.
func SetupFromFlags(level, format string, verbose, debug bool) zerolog.Logger {
	config := DefaultConfig()

	switch {
	case level != "":
		config.Level = level
	case debug:
		config.Level = "debug"
		config.WithCaller = true
	case verbose:
		config.Level = "info"
	}

	if format != "" {
		config.Format = format
	}

	return InitLogger(config)
}

// ForComponent creates a logger with component context
func ForComponent(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}

// ForRequest creates a logger with request context
func ForRequest(logger zerolog.Logger, method, url string) zerolog.Logger {
	return logger.With().
		Str("method", method).
		Str("url", url).
		Logger()
}

// ForItem creates a logger scoped to one input item of a run
func ForItem(logger zerolog.Logger, index int) zerolog.Logger {
	return logger.With().Int("item_index", index).Logger()
}

// ForMCP creates a logger with MCP context
func ForMCP(logger zerolog.Logger, tool string) zerolog.Logger {
	return logger.With().
		Str("mcp_tool", tool).
		Str("component", "mcp").
		Logger()
}
