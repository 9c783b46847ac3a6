package session

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Mahendrakumar19/streamgate/internal/apperrors"
	"github.com/Mahendrakumar19/streamgate/internal/models"
)

func requestWithCookie(t *testing.T, value string) *http.Request {
	t.Helper()

	r, err := http.NewRequest(http.MethodGet, "/api/video/token", nil)
	require.NoError(t, err)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: value})
	return r
}

func Test_Authenticator(t *testing.T) {
	t.Parallel()

	auth, err := NewAuthenticator("session-secret")
	require.NoError(t, err, "authenticator should be created without errors")

	t.Run("round trip", func(t *testing.T) {
		value, err := auth.Issue(models.Session{UserID: 7, Email: "student@example.com"}, time.Hour)
		require.NoError(t, err)

		got, err := auth.FromRequest(requestWithCookie(t, value))
		require.NoError(t, err)
		require.Equal(t, models.Session{UserID: 7, Email: "student@example.com"}, got)
	})

	t.Run("missing cookie", func(t *testing.T) {
		r, err := http.NewRequest(http.MethodGet, "/api/video/token", nil)
		require.NoError(t, err)

		_, err = auth.FromRequest(r)
		require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("foreign signature", func(t *testing.T) {
		other, err := NewAuthenticator("other-secret")
		require.NoError(t, err)

		value, err := other.Issue(models.Session{UserID: 7}, time.Hour)
		require.NoError(t, err)

		_, err = auth.FromRequest(requestWithCookie(t, value))
		require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("expired session", func(t *testing.T) {
		value, err := auth.Issue(models.Session{UserID: 7}, -time.Minute)
		require.NoError(t, err)

		_, err = auth.FromRequest(requestWithCookie(t, value))
		require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("no subject", func(t *testing.T) {
		value, err := auth.Issue(models.Session{UserID: 0}, time.Hour)
		require.NoError(t, err)

		_, err = auth.FromRequest(requestWithCookie(t, value))
		require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("empty secret rejected", func(t *testing.T) {
		_, err := NewAuthenticator("")
		require.Error(t, err)
	})
}
