package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every token validation failure. Signature mismatch,
// malformed payload, and expiry all collapse into this one error so the
// response never reveals which check failed.
var ErrInvalidToken = errors.New("invalid or expired token")

// DefaultAccessTokenTTL matches the deployment default of 24 hours.
const DefaultAccessTokenTTL = 24 * time.Hour

// TokenService issues and validates HMAC-signed access tokens.
type TokenService struct {
	secret     []byte
	defaultTTL time.Duration
	nowFunc    func() time.Time
}

// NewTokenService constructs a service signing tokens with the provided secret.
// A non-positive defaultTTL falls back to DefaultAccessTokenTTL.
func NewTokenService(secret string, defaultTTL time.Duration) *TokenService {
	if defaultTTL <= 0 {
		defaultTTL = DefaultAccessTokenTTL
	}
	return &TokenService{secret: []byte(secret), defaultTTL: defaultTTL}
}

// Issue creates a signed token for the subject using the service default TTL.
func (s *TokenService) Issue(subject string) (string, error) {
	return s.IssueWithTTL(subject, s.defaultTTL)
}

// IssueWithTTL creates a signed token carrying the subject and an absolute
// expiry of now + ttl. The ttl is applied as given, so a zero or negative
// value yields a token that is already expired.
func (s *TokenService) IssueWithTTL(subject string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("token subject must be provided")
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate verifies the token signature and expiry, returning the subject.
func (s *TokenService) Validate(tokenString string) (string, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	var claims jwt.RegisteredClaims
	_, err := parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}

func (s *TokenService) now() time.Time {
	if s.nowFunc != nil {
		return s.nowFunc()
	}
	return time.Now().UTC()
}
