// Package middleware holds the HTTP middleware the server mounts on every route.
// CORS is not here: the server mounts github.com/go-chi/cors directly.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mohamedamineameur/renderback/internal/metrics"
)

// unmatchedRoute labels requests that hit no route, so arbitrary paths
// cannot blow up label cardinality.
const unmatchedRoute = "unmatched"

// statusRecorder remembers the status code and body size a handler produced.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	n, err := rec.ResponseWriter.Write(b)
	rec.bytes += int64(n)
	return n, err
}

// routeOf returns the chi pattern that served r, e.g. "/couleurs/{id}".
// It is only known once the router has dispatched the request.
func routeOf(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return unmatchedRoute
}

// Instrument logs one line per request and, when m is non-nil, records the
// request count and latency under the route pattern. Mount it after chi's
// RequestID so the line carries the request id.
func Instrument(logger *slog.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			elapsed := time.Since(start)
			route := routeOf(r)

			if m != nil {
				m.RecordHTTPRequest(r.Method, route, rec.status)
				m.RecordHTTPDuration(r.Method, route, elapsed)
			}

			level := slog.LevelInfo
			if rec.status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.LogAttrs(r.Context(), level, "request completed",
				slog.String("method", r.Method),
				slog.String("route", route),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.status),
				slog.Duration("duration", elapsed),
				slog.Int64("bytes", rec.bytes),
				slog.String("request_id", chimiddleware.GetReqID(r.Context())),
			)
		})
	}
}
