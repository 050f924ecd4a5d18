package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenServiceIssueAndValidate(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	token, err := svc.IssueWithTTL("42", 60*time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	subject, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if subject != "42" {
		t.Fatalf("expected subject 42 got %q", subject)
	}
}

func TestTokenServiceZeroTTLExpiresImmediately(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	token, err := svc.IssueWithTTL("42", 0)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := svc.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for zero ttl got %v", err)
	}
}

func TestTokenServiceRejectsTampering(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	token, err := svc.Issue("42")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	tampered := token[:len(token)-2] + "xx"
	if _, err := svc.Validate(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for tampered token got %v", err)
	}

	if _, err := svc.Validate("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for malformed token got %v", err)
	}
}

func TestTokenServiceRejectsForeignSecret(t *testing.T) {
	issuer := NewTokenService("issuer-secret", time.Hour)
	validator := NewTokenService("other-secret", time.Hour)

	token, err := issuer.Issue("42")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := validator.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for foreign secret got %v", err)
	}
}

func TestTokenServiceRejectsUnexpectedAlgorithm(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	claims := jwt.RegisteredClaims{
		Subject:   "42",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS384, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign with HS384: %v", err)
	}

	if _, err := svc.Validate(foreign); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for HS384 token got %v", err)
	}
}

func TestTokenServiceExpiryHonoursClock(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)
	base := time.Unix(1_700_000_000, 0)
	svc.nowFunc = func() time.Time { return base }

	token, err := svc.IssueWithTTL("42", 60*time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	svc.nowFunc = func() time.Time { return base.Add(61 * time.Minute) }
	if _, err := svc.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token to be rejected got %v", err)
	}
}
