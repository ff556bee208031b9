package server

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"dataset-builder/internal/contextutil"
)

// requestLogger attaches a per-request logger carrying a request id to
// the context and logs the request at debug level.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := slog.Default().With(
			"request_id", uuid.New().String(),
			"method", r.Method,
			"path", r.URL.Path,
		)
		logger.Debug("request")
		next.ServeHTTP(w, r.WithContext(contextutil.WithLogger(r.Context(), logger)))
	})
}

// livenessProbe answers any GET carrying a ping query parameter with a
// plaintext OK. The viewer polls this during restart recovery, before
// the regenerated page is necessarily in place.
func livenessProbe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Query().Has("ping") {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
