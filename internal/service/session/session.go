package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Mahendrakumar19/streamgate/internal/apperrors"
	"github.com/Mahendrakumar19/streamgate/internal/models"
)

// CookieName of the platform session cookie
const CookieName = "session"

const signingMethod = "HS256"

// Claims the platform puts into the session cookie
type Claims struct {
	jwt.RegisteredClaims
	UserID int64  `json:"uid"`
	Email  string `json:"email,omitempty"`
}

// Authenticator verifies platform session cookies.
// Stateless, the cookie is a JWT signed with the platform session secret.
type Authenticator struct {
	key string
	alg jwt.SigningMethod
}

func NewAuthenticator(secret string) (*Authenticator, error) {
	if secret == "" {
		return nil, errors.New("session secret must not be empty")
	}

	return &Authenticator{
		key: secret,
		alg: jwt.GetSigningMethod(signingMethod),
	}, nil
}

// FromRequest returns the authenticated identity carried by the session cookie
func (a *Authenticator) FromRequest(r *http.Request) (models.Session, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return models.Session{}, fmt.Errorf("%w: session cookie missing", apperrors.ErrUnauthorized)
	}

	claims := &Claims{}
	_, err = jwt.ParseWithClaims(
		cookie.Value,
		claims,
		func(t *jwt.Token) (any, error) { return []byte(a.key), nil },
		jwt.WithValidMethods([]string{a.alg.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return models.Session{}, fmt.Errorf("%w. Err: %v", apperrors.ErrUnauthorized, err)
	}

	if claims.UserID <= 0 {
		return models.Session{}, fmt.Errorf("%w: session has no subject", apperrors.ErrUnauthorized)
	}

	return models.Session{UserID: claims.UserID, Email: claims.Email}, nil
}

// Issue signs a session cookie value for the given identity.
// The marketplace front end is the normal issuer, this is used by tests
// and local tooling.
func (a *Authenticator) Issue(s models.Session, ttl time.Duration) (string, error) {
	now := time.Now().Truncate(time.Second)

	token := jwt.NewWithClaims(
		a.alg,
		Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			},
			UserID: s.UserID,
			Email:  s.Email,
		},
	)

	value, err := token.SignedString([]byte(a.key))
	if err != nil {
		return "", fmt.Errorf("error while signing session token. Err: %w", err)
	}

	return value, nil
}
