package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/RuvinSL/token-estimator/pkg/interfaces"
)

type contextKey string

// RequestIDKey is the context key carrying the inbound request ID.
const RequestIDKey contextKey = "request_id"

// New creates a new structured logger that implements interfaces.Logger
func New(service string, level slog.Level) interfaces.Logger {
	return NewWithWriter(os.Stdout, service, level)
}

// NewWithWriter is New with an explicit destination. The CLI logs to stderr so
// stdout stays reserved for the report.
func NewWithWriter(w io.Writer, service string, level slog.Level) interfaces.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   a.Key,
					Value: slog.StringValue(a.Value.Time().Format(time.RFC3339)),
				}
			}
			return a
		},
	}

	handler := slog.NewJSONHandler(w, opts)

	baseLogger := slog.New(handler).With(
		slog.String("service", service),
		slog.Int("pid", os.Getpid()),
		slog.String("go_version", runtime.Version()),
	)

	return NewAdapter(baseLogger)
}

// Nop returns a logger that discards everything.
func Nop() interfaces.Logger {
	return NewAdapter(slog.New(slog.NewJSONHandler(io.Discard, nil)))
}

// ParseLevel maps LOG_LEVEL values onto slog levels, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ContextWithRequestID stores the request ID for WithContext and outbound calls.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// RequestIDFromContext returns the request ID, or "" when there is none.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	requestID, _ := ctx.Value(RequestIDKey).(string)
	return requestID
}

// WithContext creates a logger with context values
func WithContext(ctx context.Context, logger interfaces.Logger) interfaces.Logger {
	if requestID := RequestIDFromContext(ctx); requestID != "" {
		return logger.With(slog.String("request_id", requestID))
	}
	return logger
}

// WithError adds an error to the logger
func WithError(logger interfaces.Logger, err error) interfaces.Logger {
	if err != nil {
		return logger.With(slog.String("error", err.Error()))
	}
	return logger
}

// LoggerAdapter implements interfaces.Logger using slog
type LoggerAdapter struct {
	logger *slog.Logger
}

// NewAdapter creates a new logger adapter
func NewAdapter(logger *slog.Logger) interfaces.Logger {
	return &LoggerAdapter{logger: logger}
}

func (l *LoggerAdapter) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

func (l *LoggerAdapter) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

func (l *LoggerAdapter) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

func (l *LoggerAdapter) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}

func (l *LoggerAdapter) With(args ...any) interfaces.Logger {
	return &LoggerAdapter{
		logger: l.logger.With(args...),
	}
}
