package chi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// LoggerMiddleware emits one structured log line per request, carrying the
// chi request id. Requests to any of the quiet paths (health probes and the
// like) are served without logging.
func LoggerMiddleware(l *slog.Logger, quiet ...string) func(http.Handler) http.Handler {
	quieted := make(map[string]struct{}, len(quiet))
	for _, p := range quiet {
		quieted[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				if _, ok := quieted[r.URL.Path]; ok {
					return
				}
				l.Info("http_request",
					"request_id", middleware.GetReqID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
