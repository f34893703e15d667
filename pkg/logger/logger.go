// Package logger wraps zerolog for structured service logging. It is
// deliberately separate from the simulation engine's own log: per-combat
// narration lines live on internal/engine.Simulation.Log, an explicit,
// per-run collaborator (see Simulation.Logf there); this package is
// for request/job/cache lifecycle logging at the service layer only.
package logger

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ContextKey for storing request ID in context
type contextKey string

const (
	RequestIDKey     contextKey = "request_id"
	CorrelationIDKey contextKey = "correlation_id"
	UserIDKey        contextKey = "user_id"
)

// Logger wraps zerolog logger with additional functionality
type Logger struct {
	*zerolog.Logger
}

// Config holds logger configuration
type Config struct {
	Level      string
	Pretty     bool
	TimeFormat string
}

// New creates a new logger instance
func New(cfg Config) *Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.TimeFormat != "" {
		zerolog.TimeFieldFormat = cfg.TimeFormat
	} else {
		zerolog.TimeFieldFormat = time.RFC3339
	}

	var zl zerolog.Logger
	if cfg.Pretty {
		output := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
		zl = zerolog.New(output).With().Timestamp().Logger()
	} else {
		zl = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	return &Logger{&zl}
}

// WithContext returns a logger with context values
func (l *Logger) WithContext(ctx context.Context) *Logger {
	zl := l.Logger.With()

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		zl = zl.Str("request_id", requestID)
	}
	if corrID, ok := ctx.Value(CorrelationIDKey).(string); ok && corrID != "" {
		zl = zl.Str("correlation_id", corrID)
	}
	if userID, ok := ctx.Value(UserIDKey).(string); ok && userID != "" {
		zl = zl.Str("user_id", userID)
	}

	logger := zl.Logger()
	return &Logger{&logger}
}

// WithRequestID adds request ID to logger
func (l *Logger) WithRequestID(requestID string) *Logger {
	logger := l.Logger.With().Str("request_id", requestID).Logger()
	return &Logger{&logger}
}

// WithError adds error to logger
func (l *Logger) WithError(err error) *Logger {
	logger := l.Logger.With().Err(err).Logger()
	return &Logger{&logger}
}

// WithField adds a field to logger
func (l *Logger) WithField(key string, value interface{}) *Logger {
	logger := l.Logger.With().Interface(key, value).Logger()
	return &Logger{&logger}
}

// WithFields adds multiple fields to logger
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	logContext := l.Logger.With()
	for k, v := range fields {
		logContext = logContext.Interface(k, v)
	}
	logger := logContext.Logger()
	return &Logger{&logger}
}

var (
	defaultLogger *Logger
	loggerMutex   sync.Mutex
)

// Init initializes the global logger
func Init(cfg Config) {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()

	defaultLogger = New(cfg)
	log.Logger = *defaultLogger.Logger
}

// GetLogger returns the global logger instance
func GetLogger() *Logger {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()

	if defaultLogger == nil {
		defaultLogger = New(Config{Level: "info", Pretty: false})
		log.Logger = *defaultLogger.Logger
	}
	return defaultLogger
}

// Debug logs a debug message
func Debug() *zerolog.Event { return GetLogger().Logger.Debug() }

// Info logs an info message
func Info() *zerolog.Event { return GetLogger().Logger.Info() }

// Warn logs a warning message
func Warn() *zerolog.Event { return GetLogger().Logger.Warn() }

// Error logs an error message
func Error() *zerolog.Event { return GetLogger().Logger.Error() }

// Fatal logs a fatal message and exits
func Fatal() *zerolog.Event { return GetLogger().Logger.Fatal() }

// WithContext returns a logger with context
func WithContext(ctx context.Context) *Logger { return GetLogger().WithContext(ctx) }

// ContextWithRequestID adds request ID to context
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// ContextWithCorrelationID adds correlation ID to context
func ContextWithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, correlationID)
}

// GetCorrelationIDFromContext retrieves correlation ID from context
func GetCorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(CorrelationIDKey).(string); ok {
		return id
	}
	return ""
}
