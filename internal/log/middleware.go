package log

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

type ctxKey struct{}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the request logger, or one over slog.Default when
// none was attached.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return logger
	}
	return &Logger{Logger: slog.Default()}
}

// Middleware attaches logger to each request context, tagged with the
// request id that requestID reports.
func Middleware(logger *Logger, requestID func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := logger
			if id := requestID(r); id != "" {
				l = logger.With(FieldRequestID, id)
			}
			next.ServeHTTP(w, r.WithContext(WithLogger(r.Context(), l)))
		})
	}
}

// RequestLog writes the access and failure lines of HTTP requests.
type RequestLog struct {
	logger *Logger
}

func NewRequestLog(logger *Logger) *RequestLog {
	return &RequestLog{logger: logger}
}

func (l *RequestLog) Started(ctx context.Context, r *http.Request, requestID, clientIP string) {
	l.logger.DebugContext(ctx, "HTTP request started",
		NewFields().Request(r).RequestID(requestID).ClientIP(clientIP)...)
}

// Finished logs at a level that follows the status class: 4xx warn, 5xx error.
func (l *RequestLog) Finished(ctx context.Context, r *http.Request, requestID, clientIP string, status int, elapsed time.Duration) {
	level := slog.LevelInfo
	switch {
	case status >= 500:
		level = slog.LevelError
	case status >= 400:
		level = slog.LevelWarn
	}
	l.logger.Log(ctx, level, "HTTP request completed",
		NewFields().Request(r).Response(status, elapsed).RequestID(requestID).ClientIP(clientIP)...)
}

// Failed logs an operation that could not be served.
func (l *RequestLog) Failed(ctx context.Context, op string, err error, fields Fields) {
	l.logger.ErrorContext(ctx, "Request failed", append(fields, NewFields().Operation(op).Err(err)...)...)
}
