package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Enhanced context keys
const (
	SessionIDKey contextKey = "session_id"
	ServiceKey   contextKey = "service"
	MethodKey    contextKey = "method"
)

// LoggerV2 is an enhanced logger used by internal/api, internal/jobs, and
// internal/cache to log request, job, and cache lifecycles.
type LoggerV2 struct {
	*zerolog.Logger
	config ConfigV2
}

// ConfigV2 holds enhanced logger configuration
type ConfigV2 struct {
	Level        string
	Pretty       bool
	TimeFormat   string
	CallerInfo   bool
	StackTrace   bool
	Output       string
	SamplingRate float32
	ServiceName  string
	Environment  string
	Fields       Fields
}

// Fields represents default fields
type Fields map[string]interface{}

// DefaultConfig returns a default configuration
func DefaultConfig() ConfigV2 {
	return ConfigV2{
		Level:        "info",
		Pretty:       false,
		TimeFormat:   time.RFC3339Nano,
		CallerInfo:   true,
		StackTrace:   true,
		Output:       "stdout",
		SamplingRate: 1.0,
		ServiceName:  "combat-engine",
		Environment:  "development",
	}
}

// NewV2 creates a new enhanced logger
func NewV2(cfg ConfigV2) (*LoggerV2, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.TimeFormat != "" {
		zerolog.TimeFieldFormat = cfg.TimeFormat
	}
	if cfg.StackTrace {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	}

	var output io.Writer
	switch cfg.Output {
	case "stderr":
		output = os.Stderr
	default:
		output = os.Stdout
	}

	var zl zerolog.Logger
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: cfg.TimeFormat,
			FormatLevel: func(i interface{}) string {
				return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
			},
			FormatFieldName: func(i interface{}) string {
				return fmt.Sprintf("%s:", i)
			},
		}
	}

	zl = zerolog.New(output).With().Timestamp().Logger()

	if cfg.ServiceName != "" {
		zl = zl.With().Str("service", cfg.ServiceName).Logger()
	}
	if cfg.Environment != "" {
		zl = zl.With().Str("env", cfg.Environment).Logger()
	}
	if hostname, err := os.Hostname(); err == nil {
		zl = zl.With().Str("hostname", hostname).Logger()
	}
	for k, v := range cfg.Fields {
		zl = zl.With().Interface(k, v).Logger()
	}
	if cfg.CallerInfo {
		zl = zl.With().CallerWithSkipFrameCount(3).Logger()
	}
	if cfg.SamplingRate < 1.0 && level == zerolog.DebugLevel {
		sampled := zl.Sample(&zerolog.BasicSampler{N: uint32(1.0 / cfg.SamplingRate)})
		zl = sampled
	}

	return &LoggerV2{Logger: &zl, config: cfg}, nil
}

// WithContext enriches the logger with context values
func (l *LoggerV2) WithContext(ctx context.Context) *LoggerV2 {
	zl := l.With()

	contextKeys := []struct {
		key  contextKey
		name string
	}{
		{RequestIDKey, "request_id"},
		{CorrelationIDKey, "correlation_id"},
		{UserIDKey, "user_id"},
		{SessionIDKey, "session_id"},
		{ServiceKey, "service"},
		{MethodKey, "method"},
	}

	for _, ck := range contextKeys {
		if value, ok := ctx.Value(ck.key).(string); ok && value != "" {
			zl = zl.Str(ck.name, value)
		}
	}

	logger := zl.Logger()
	return &LoggerV2{Logger: &logger, config: l.config}
}

// WithOperation adds operation context
func (l *LoggerV2) WithOperation(service, method string) *LoggerV2 {
	logger := l.With().Str("service", service).Str("method", method).Logger()
	return &LoggerV2{Logger: &logger, config: l.config}
}

// LogHTTPRequest logs HTTP request details for internal/api
func (l *LoggerV2) LogHTTPRequest(method, path string, statusCode int, duration time.Duration, fields ...map[string]interface{}) {
	event := l.Info().
		Str("method", method).
		Str("path", path).
		Int("status", statusCode).
		Dur("duration", duration)

	if len(fields) > 0 {
		for k, v := range fields[0] {
			event = event.Interface(k, v)
		}
	}

	switch {
	case statusCode >= 500:
		event.Msg("HTTP request failed")
	case statusCode >= 400:
		event.Msg("HTTP request client error")
	default:
		event.Msg("HTTP request completed")
	}
}

// LogSimulationBatch logs the completion of a Driver run (internal/api,
// internal/jobs): total sims, wins, and how long the batch took.
func (l *LoggerV2) LogSimulationBatch(requestID string, totalSims, wins int, duration time.Duration, err error) {
	event := l.Info().
		Str("request_id", requestID).
		Int("total_sims", totalSims).
		Int("wins", wins).
		Dur("duration", duration)

	if err != nil {
		event.Err(err).Msg("Simulation batch failed")
	} else {
		event.Msg("Simulation batch completed")
	}
}

// LogCacheOperation logs a cache hit/miss for Driver result memoization
// (internal/cache).
func (l *LoggerV2) LogCacheOperation(operation, key string, hit bool, duration time.Duration) {
	l.Debug().
		Str("operation", operation).
		Str("key", key).
		Bool("hit", hit).
		Dur("duration", duration).
		Msg("Cache operation")
}

// GetCaller returns the caller information
func GetCaller(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}

// ContextWithUserID adds user ID to context
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// ContextWithSessionID adds session ID to context
func ContextWithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, SessionIDKey, sessionID)
}

// GetRequestIDFromContext retrieves request ID from context
func GetRequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
