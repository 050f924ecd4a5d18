package app

import (
	"context"
	"fmt"
	"time"

	"github.com/streamgate/backend/internal/auth"
	"github.com/streamgate/backend/internal/config"
	"github.com/streamgate/backend/internal/db"
	"github.com/streamgate/backend/internal/handlers"
	"github.com/streamgate/backend/internal/identity"
	"github.com/streamgate/backend/internal/media"
	"github.com/streamgate/backend/internal/middleware"
	"github.com/streamgate/backend/internal/repositories"
	"github.com/streamgate/backend/internal/storage"
)

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config) (handlers.Dependencies, error) {
	blobs, err := buildBlobStore(ctx, cfg)
	if err != nil {
		return handlers.Dependencies{}, err
	}

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL)
	identities := identity.NewService(repositories.NewPostgresIdentityRepository(pool), cfg.AdminTelegramID)
	mediaService := media.NewService(repositories.NewPostgresVideoRepository(pool), blobs)

	return handlers.Dependencies{
		Verifier:   auth.NewTelegramVerifier(cfg.BotToken),
		Tokens:     tokens,
		Identities: identities,
		Auth: handlers.BearerAuthenticator{
			Tokens:     tokens,
			Identities: identities,
		},
		Media:          mediaService,
		LoginLimiter:   middleware.NewIPRateLimiter(cfg.LoginRateLimit, time.Minute, cfg.LoginRateBurst, 10*time.Minute),
		MaxUploadBytes: cfg.MaxUploadBytes,
	}, nil
}

func buildBlobStore(ctx context.Context, cfg config.Config) (storage.BlobStore, error) {
	switch cfg.BlobBackend {
	case config.BlobBackendS3:
		store, err := storage.NewS3Store(ctx, cfg.ObjectStore)
		if err != nil {
			return nil, fmt.Errorf("configure s3 blob store: %w", err)
		}
		return store, nil
	default:
		store, err := storage.NewDiskStore(cfg.UploadDir)
		if err != nil {
			return nil, fmt.Errorf("configure disk blob store: %w", err)
		}
		return store, nil
	}
}
