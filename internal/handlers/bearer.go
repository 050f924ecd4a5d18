package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/streamgate/backend/internal/models"
)

// ErrUnauthenticated indicates the request carries no usable bearer credential.
// Missing header, malformed token, expired token, and unknown subject all
// collapse into this one error.
var ErrUnauthenticated = errors.New("not authenticated")

// BearerAuthenticator resolves Authorization headers to user records.
type BearerAuthenticator struct {
	Tokens     TokenValidator
	Identities IdentityService
}

// Authenticate extracts and validates the bearer token, then resolves the
// subject to its identity record.
func (a BearerAuthenticator) Authenticate(r *http.Request) (models.User, error) {
	if a.Tokens == nil || a.Identities == nil {
		return models.User{}, errors.New("authenticator dependencies unavailable")
	}

	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return models.User{}, ErrUnauthenticated
	}

	subject, err := a.Tokens.Validate(strings.TrimSpace(token))
	if err != nil {
		return models.User{}, ErrUnauthenticated
	}

	user, err := a.Identities.GetByTelegramID(r.Context(), subject)
	if err != nil {
		return models.User{}, ErrUnauthenticated
	}

	return user, nil
}

var _ Authenticator = BearerAuthenticator{}
