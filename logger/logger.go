package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger represents a structured logger
type Logger struct {
	logger zerolog.Logger
}

// Fields represents log fields
type Fields map[string]interface{}

var (
	// Default is the default logger instance
	Default *Logger
)

// Init initializes the logger. Production writes plain JSON at info level,
// everything else a console writer at debug level; LOG_LEVEL overrides the
// level in both.
func Init(production bool) {
	level := getLogLevel(production)

	// Configure zerolog
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(level)

	var output io.Writer = zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	if production {
		output = os.Stdout
	}

	Default = New(output)

	Default.Info().
		Str("level", level.String()).
		Bool("production", production).
		Msg("Logger initialized")
}

// New creates a logger writing to the given output
func New(output io.Writer) *Logger {
	return &Logger{logger: zerolog.New(output).With().Timestamp().Logger()}
}

// getLogLevel returns the log level from environment variable
func getLogLevel(production bool) zerolog.Level {
	levelStr := os.Getenv("LOG_LEVEL")
	if levelStr == "" {
		if production {
			return zerolog.InfoLevel
		}
		return zerolog.DebugLevel
	}

	level, err := zerolog.ParseLevel(levelStr)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// WithFields creates a new logger with fields
func (l *Logger) WithFields(fields Fields) *Logger {
	newLogger := l.logger.With()
	for k, v := range fields {
		newLogger = newLogger.Interface(k, v)
	}
	return &Logger{logger: newLogger.Logger()}
}

// WithField creates a new logger with a single field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{logger: l.logger.With().Interface(key, value).Logger()}
}

// Debug returns a debug event
func (l *Logger) Debug() *zerolog.Event {
	return l.logger.Debug()
}

// Info returns an info event
func (l *Logger) Info() *zerolog.Event {
	return l.logger.Info()
}

// Warn returns a warn event
func (l *Logger) Warn() *zerolog.Event {
	return l.logger.Warn()
}

// Error returns an error event
func (l *Logger) Error() *zerolog.Event {
	return l.logger.Error()
}

func forComponent(name string) *Logger {
	if Default == nil {
		Init(false)
	}
	return Default.WithField("component", name)
}

// ForFetcher creates a logger for the upstream fetcher
func ForFetcher() *Logger { return forComponent("fetcher") }

// ForExtractor creates a logger for the extractor
func ForExtractor() *Logger { return forComponent("extractor") }

// ForStore creates a logger for the snapshot store
func ForStore() *Logger { return forComponent("store") }

// ForServer creates a logger for the HTTP server
func ForServer() *Logger { return forComponent("server") }

// ForWorker creates a logger for the refresh worker
func ForWorker() *Logger { return forComponent("worker") }

// ForPublisher creates a logger for the publisher
func ForPublisher() *Logger { return forComponent("publisher") }

// ForCache creates a logger for the cache
func ForCache() *Logger { return forComponent("cache") }
