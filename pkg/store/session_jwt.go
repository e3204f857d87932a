package store

import (
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"eduai/internal/util"
)

const (
	jwtIssuer   = "eduai-auth"
	jwtAudience = "eduai-api"
)

var jwtLeeway = 30 * time.Second

// JWTSessionStore issues and validates HS256 session tokens. Tokens are
// stateless; DeleteSession is a no-op beyond client-side discard.
type JWTSessionStore struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTSessionStore builds a JWT-backed session store.
func NewJWTSessionStore(secret string, ttl time.Duration) *JWTSessionStore {
	return &JWTSessionStore{secret: []byte(secret), ttl: ttl}
}

// NewSession creates a signed JWT for the account ID.
func (s *JWTSessionStore) NewSession(userID string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    jwtIssuer,
		Audience:  jwt.ClaimStrings{jwtAudience},
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ID:        util.NewID(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// GetUserIDByToken resolves a token to its account ID.
func (s *JWTSessionStore) GetUserIDByToken(token string) (string, bool, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	},
		jwt.WithIssuer(jwtIssuer),
		jwt.WithAudience(jwtAudience),
		jwt.WithLeeway(jwtLeeway),
	)
	if err != nil || !parsed.Valid {
		return "", false, nil
	}
	uid := strings.TrimSpace(claims.Subject)
	if uid == "" {
		return "", false, nil
	}
	return uid, true, nil
}

// DeleteSession is a no-op for stateless JWTs; tokens expire by TTL.
func (s *JWTSessionStore) DeleteSession(string) error { return nil }
