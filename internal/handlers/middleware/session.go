package middleware

import (
	"net/http"

	"github.com/Mahendrakumar19/streamgate/internal/handlers/render"
	"github.com/Mahendrakumar19/streamgate/internal/handlers/sessionctx"
	"github.com/Mahendrakumar19/streamgate/internal/models"
)

type sessionAuth interface {
	FromRequest(r *http.Request) (models.Session, error)
}

// SessionMiddleware rejects requests without a valid platform session cookie
// and puts the decoded identity into the request context
func SessionMiddleware(auth sessionAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := auth.FromRequest(r)
			if err != nil {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := sessionctx.NewContext(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
