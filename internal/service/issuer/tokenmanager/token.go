package tokenmanager

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Mahendrakumar19/streamgate/internal/apperrors"
	"github.com/Mahendrakumar19/streamgate/internal/models"
)

const (
	defaultAccessTokenTTL  = 2 * time.Hour
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
	defaultSigningMethod   = "HS256"

	// Kind claim that marks refresh tokens, access tokens carry no kind
	refreshKind = "refresh"
)

// AccessTokenClaims bind a token to a (user, course, module) triple.
// Kind is never set on access tokens, it is captured on parse so a refresh
// token signed with the same key cannot pass as an access token.
type AccessTokenClaims struct {
	jwt.RegisteredClaims
	UserID   int64  `json:"uid"`
	CourseID int64  `json:"cid"`
	ModuleID int64  `json:"mid"`
	Email    string `json:"email,omitempty"`
	Kind     string `json:"kind,omitempty"`
}

// RefreshTokenClaims keep the original scope so refresh can re-check it
type RefreshTokenClaims struct {
	jwt.RegisteredClaims
	UserID   int64  `json:"uid"`
	CourseID int64  `json:"cid"`
	ModuleID int64  `json:"mid"`
	Kind     string `json:"kind"`
}

// Token manager with sensible defaults
type Config struct {
	// Secret key to sign tokens
	// Required to be set
	SecretKey string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string

	// Access and refresh token lifetimes
	// If not set than default is used
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type TokenManager struct {
	// Secret key to sign tokens
	key string

	// JWT MAC (Message Authentication Code) algorithm
	alg jwt.SigningMethod

	// Access and refresh token lifetimes
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func New(cfg Config) (*TokenManager, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}

	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field == 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.AccessTTL, defaultAccessTokenTTL)
	setDefaultDuration(&cfg.RefreshTTL, defaultRefreshTokenTTL)

	return &TokenManager{
		key:        cfg.SecretKey,
		alg:        jwt.GetSigningMethod(cfg.Alg),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
	}, nil
}

// AccessTTL returns configured access token lifetime
func (m *TokenManager) AccessTTL() time.Duration {
	return m.accessTTL
}

// GenerateAccess mints a signed access token bound to the given scope
func (m *TokenManager) GenerateAccess(scope models.StreamScope) (models.IssuedToken, error) {
	now := time.Now().Truncate(time.Second)
	expiresAt := now.Add(m.accessTTL)

	token := jwt.NewWithClaims(
		m.alg,
		AccessTokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
			UserID:   scope.UserID,
			CourseID: scope.CourseID,
			ModuleID: scope.ModuleID,
			Email:    scope.Email,
		},
	)
	access, err := token.SignedString([]byte(m.key))
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing access token. Err: %w", err)
	}

	return models.IssuedToken{Value: access, ExpiresAt: expiresAt}, nil
}

// GeneratePair mints an access token and a refresh token for the same scope
func (m *TokenManager) GeneratePair(scope models.StreamScope) (models.TokenPair, error) {
	var pair models.TokenPair

	access, err := m.GenerateAccess(scope)
	if err != nil {
		return pair, err
	}

	now := time.Now().Truncate(time.Second)
	refreshExpiresAt := now.Add(m.refreshTTL)

	token := jwt.NewWithClaims(
		m.alg,
		RefreshTokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(refreshExpiresAt),
			},
			UserID:   scope.UserID,
			CourseID: scope.CourseID,
			ModuleID: scope.ModuleID,
			Kind:     refreshKind,
		},
	)
	refresh, err := token.SignedString([]byte(m.key))
	if err != nil {
		return pair, fmt.Errorf("error while signing refresh token. Err: %w", err)
	}

	return models.TokenPair{
		Access:  access,
		Refresh: models.IssuedToken{Value: refresh, ExpiresAt: refreshExpiresAt},
	}, nil
}

// ParseAccess validates signature, expiry and the absence of a kind marker
// and returns the embedded scope. A refresh token presented here is rejected,
// kinds never mix.
func (m *TokenManager) ParseAccess(access string) (models.StreamScope, error) {
	claims := &AccessTokenClaims{}

	_, err := jwt.ParseWithClaims(
		access,
		claims,
		func(t *jwt.Token) (any, error) { return []byte(m.key), nil },
		jwt.WithValidMethods([]string{m.alg.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return models.StreamScope{}, fmt.Errorf("%w. Err: %v", apperrors.ErrInvalidToken, err)
	}

	if claims.Kind != "" {
		return models.StreamScope{}, fmt.Errorf("%w. Err: token kind is not access", apperrors.ErrInvalidToken)
	}

	return models.StreamScope{
		UserID:   claims.UserID,
		CourseID: claims.CourseID,
		ModuleID: claims.ModuleID,
		Email:    claims.Email,
	}, nil
}

// ParseRefresh validates signature, expiry and the refresh kind marker.
// An access token presented here is rejected, kinds never mix.
func (m *TokenManager) ParseRefresh(refresh string) (models.StreamScope, error) {
	claims := &RefreshTokenClaims{}

	_, err := jwt.ParseWithClaims(
		refresh,
		claims,
		func(t *jwt.Token) (any, error) { return []byte(m.key), nil },
		jwt.WithValidMethods([]string{m.alg.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return models.StreamScope{}, fmt.Errorf("%w. Err: %v", apperrors.ErrInvalidToken, err)
	}

	if claims.Kind != refreshKind {
		return models.StreamScope{}, fmt.Errorf("%w. Err: token kind is not refresh", apperrors.ErrInvalidToken)
	}

	return models.StreamScope{
		UserID:   claims.UserID,
		CourseID: claims.CourseID,
		ModuleID: claims.ModuleID,
	}, nil
}
