package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/hongminglow/fintrack-be/internal/models"
)

// Token kinds carried in the typ claim.
const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

// ErrInvalidToken is returned for any token that fails signature, expiry or kind checks.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the JWT payload issued for a user.
type Claims struct {
	Email string `json:"email"`
	Kind  string `json:"typ"`
	jwt.RegisteredClaims
}

// UserID returns the subject as a user id.
func (c Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidToken
	}
	return id, nil
}

// Pair is an access token and the refresh token that can renew it.
type Pair struct {
	Access  string
	Refresh string
}

// TokenManager issues and verifies signed JWTs for authenticated users.
type TokenManager struct {
	secret     []byte
	issuer     string
	ttl        time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenManager creates a manager with the provided secret, issuer, and lifetimes.
func NewTokenManager(secret, issuer string, ttl, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		issuer:     issuer,
		ttl:        ttl,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// Generate issues a signed access token for the user.
func (t *TokenManager) Generate(user models.User) (string, error) {
	return t.sign(user, KindAccess, t.ttl)
}

// GeneratePair issues an access token together with a refresh token.
func (t *TokenManager) GeneratePair(user models.User) (Pair, error) {
	access, err := t.sign(user, KindAccess, t.ttl)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := t.sign(user, KindRefresh, t.refreshTTL)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Access: access, Refresh: refresh}, nil
}

// Parse verifies an access token.
func (t *TokenManager) Parse(token string) (Claims, error) {
	return t.parse(token, KindAccess)
}

// ParseRefresh verifies a refresh token.
func (t *TokenManager) ParseRefresh(token string) (Claims, error) {
	return t.parse(token, KindRefresh)
}

func (t *TokenManager) sign(user models.User, kind string, ttl time.Duration) (string, error) {
	now := t.now()
	claims := Claims{
		Email: user.Email,
		Kind:  kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   strconv.FormatInt(user.ID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}

func (t *TokenManager) parse(raw, kind string) (Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(tok *jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	if claims.Kind != kind {
		return Claims{}, ErrInvalidToken
	}
	if _, err := claims.UserID(); err != nil {
		return Claims{}, err
	}
	return claims, nil
}
