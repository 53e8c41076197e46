// Package trace assigns request ids, writes access logs and counts requests.
package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"regexp"
	"sync/atomic"
	"time"

	applog "spendingtracker/internal/log"
)

// RequestIDHeader carries the request id in and out.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

var validRequestID = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,64}$`)

// Tracer is the outermost middleware of the API.
type Tracer struct {
	clientIP func(*http.Request) string
	log      *applog.RequestLog

	total        atomic.Int64
	clientErrors atomic.Int64
	serverErrors atomic.Int64
	lastDuration atomic.Int64 // microseconds
}

// Stats is a point-in-time copy of the counters.
type Stats struct {
	TotalRequests  int64 `json:"total_requests"`
	ClientErrors   int64 `json:"client_errors"`
	ServerErrors   int64 `json:"server_errors"`
	LastDurationUs int64 `json:"last_duration_us"`
}

// New returns a tracer logging through logger. clientIP may be nil.
func New(logger *applog.Logger, clientIP func(*http.Request) string) *Tracer {
	return &Tracer{
		clientIP: clientIP,
		log:      applog.NewRequestLog(logger.WithComponent(applog.ComponentTrace)),
	}
}

// Handler wraps next. A well-formed incoming X-Request-ID is reused,
// otherwise a new one is generated; either way it is echoed back.
func (t *Tracer) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		var ip string
		if t.clientIP != nil {
			ip = t.clientIP(r)
		}

		id := r.Header.Get(RequestIDHeader)
		if !validRequestID.MatchString(id) {
			id = GenerateRequestID()
		}
		w.Header().Set(RequestIDHeader, id)

		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		r = r.WithContext(ctx)
		t.log.Started(ctx, r, id, ip)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		t.record(rec.status, elapsed)
		t.log.Finished(ctx, r, id, ip, rec.status, elapsed)
	})
}

func (t *Tracer) record(status int, elapsed time.Duration) {
	t.total.Add(1)
	t.lastDuration.Store(elapsed.Microseconds())
	switch {
	case status >= 500:
		t.serverErrors.Add(1)
	case status >= 400:
		t.clientErrors.Add(1)
	}
}

func (t *Tracer) Stats() Stats {
	return Stats{
		TotalRequests:  t.total.Load(),
		ClientErrors:   t.clientErrors.Load(),
		ServerErrors:   t.serverErrors.Load(),
		LastDurationUs: t.lastDuration.Load(),
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (rec *statusRecorder) WriteHeader(code int) {
	if !rec.wroteHeader {
		rec.status = code
		rec.wroteHeader = true
	}
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	rec.wroteHeader = true
	return rec.ResponseWriter.Write(b)
}

func (rec *statusRecorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}

// GenerateRequestID returns "req_" followed by 16 random hex digits.
func GenerateRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(b)
}

// GetRequestID returns the id the tracer stored in ctx, or "".
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
