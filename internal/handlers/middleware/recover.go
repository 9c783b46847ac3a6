package middleware

import (
	"net/http"

	"github.com/Mahendrakumar19/streamgate/internal/handlers/render"
)

type errorLogger interface {
	Error(msg string, args ...any)
}

// RecoverMiddleware converts panics into generic 500 JSON responses
// so a single bad request never crashes the process
func RecoverMiddleware(l errorLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						// The handler aborted mid-stream on purpose
						panic(rec)
					}
					l.Error("Panic while handling request", "panic", rec, "path", r.URL.Path)
					render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
