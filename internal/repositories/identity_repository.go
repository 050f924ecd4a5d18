package repositories

import (
	"context"

	"github.com/streamgate/backend/internal/models"
)

// IdentityRepository defines the data access contract for Telegram-backed users.
type IdentityRepository interface {
	Create(ctx context.Context, user models.User) (models.User, error)
	FindByTelegramID(ctx context.Context, telegramID string) (models.User, error)
	UpdateProfile(ctx context.Context, user models.User) error
}
