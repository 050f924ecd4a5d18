package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/streamgate/backend/internal/identity"
	"github.com/streamgate/backend/internal/media"
	"github.com/streamgate/backend/internal/models"
)

// CredentialVerifier validates a Telegram login payload against the bot secret.
type CredentialVerifier interface {
	Verify(fields map[string]string) bool
}

// TokenIssuer mints signed access tokens for authenticated subjects.
type TokenIssuer interface {
	Issue(subject string) (string, error)
}

// TokenValidator resolves a bearer token back to its subject.
type TokenValidator interface {
	Validate(token string) (string, error)
}

// IdentityService resolves Telegram logins into persisted user records.
type IdentityService interface {
	Upsert(ctx context.Context, profile identity.Profile) (models.User, error)
	GetByTelegramID(ctx context.Context, telegramID string) (models.User, error)
}

// MediaService captures the video record operations required by the HTTP handlers.
type MediaService interface {
	Create(ctx context.Context, input media.CreateInput, caller models.User) (models.Video, error)
	List(ctx context.Context, caller models.User) ([]models.Video, error)
	Get(ctx context.Context, id int64, caller models.User) (models.Video, error)
	Delete(ctx context.Context, id int64, caller models.User) error
	OpenVideo(ctx context.Context, id int64, caller models.User) (io.ReadCloser, int64, error)
	OpenThumbnail(ctx context.Context, id int64, caller models.User) (io.ReadCloser, int64, error)
}

// Authenticator resolves the bearer credential on a request to a user record.
type Authenticator interface {
	Authenticate(r *http.Request) (models.User, error)
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Verifier       CredentialVerifier
	Tokens         TokenIssuer
	Identities     IdentityService
	Auth           Authenticator
	Media          MediaService
	LoginLimiter   RateLimiter
	MaxUploadBytes int64
}
