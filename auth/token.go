package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is the fixed validity window of issued tokens.
const DefaultTokenTTL = 30 * 24 * time.Hour

// TokenService signs and verifies the bearer tokens carried by clients. The
// codec is stateless: issued tokens are not persisted and there is no
// revocation list, so a token stays cryptographically valid until its expiry.
type TokenService struct {
	secretKey []byte
	issuer    string
	ttl       time.Duration
}

// NewTokenService creates a token service. The signing key is mandatory.
func NewTokenService(secretKey, issuer string, ttl time.Duration) (*TokenService, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("JWT secret key cannot be empty")
	}
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{
		secretKey: []byte(secretKey),
		issuer:    issuer,
		ttl:       ttl,
	}, nil
}

// Issue produces a signed token carrying only the subject id, expiring a
// fixed window from now.
func (s *TokenService) Issue(subjectID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    s.issuer,
		Subject:   subjectID,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// Verify checks the signature and expiry of a token and returns the subject
// id. Every failure mode collapses into ErrTokenInvalid; the codec consults
// no external state.
func (s *TokenService) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil || !token.Valid {
		return "", ErrTokenInvalid
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrTokenInvalid
	}

	return claims.Subject, nil
}

// TTL returns the validity window applied to issued tokens.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}
