package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/streamgate/backend/internal/models"
	"github.com/streamgate/backend/internal/repositories"
)

// Profile carries the display fields Telegram asserts on every login.
type Profile struct {
	TelegramID string
	Username   string
	FirstName  string
	LastName   string
	PhotoURL   string
}

// Service resolves Telegram identities into persisted user records.
type Service struct {
	users           repositories.IdentityRepository
	adminTelegramID string
}

// NewService constructs an identity service. adminTelegramID names the single
// external identity granted the admin flag at first login.
func NewService(users repositories.IdentityRepository, adminTelegramID string) *Service {
	if users == nil {
		panic("identity: repository must not be nil")
	}
	return &Service{users: users, adminTelegramID: adminTelegramID}
}

// Upsert resolves the profile to a user record, creating it on first login.
// The admin flag is decided exactly once, at creation: an existing record is
// never promoted or demoted, regardless of the configured admin id. Display
// fields are overwritten on every subsequent login.
func (s *Service) Upsert(ctx context.Context, profile Profile) (models.User, error) {
	if profile.TelegramID == "" {
		return models.User{}, errors.New("identity: telegram id must be provided")
	}

	existing, err := s.users.FindByTelegramID(ctx, profile.TelegramID)
	switch {
	case err == nil:
		return s.refresh(ctx, existing, profile)
	case errors.Is(err, repositories.ErrNotFound):
		// fall through to create
	default:
		return models.User{}, fmt.Errorf("lookup identity: %w", err)
	}

	created, err := s.users.Create(ctx, models.User{
		TelegramID: profile.TelegramID,
		Username:   profile.Username,
		FirstName:  profile.FirstName,
		LastName:   profile.LastName,
		PhotoURL:   profile.PhotoURL,
		IsAdmin:    s.adminTelegramID != "" && profile.TelegramID == s.adminTelegramID,
	})
	if err == nil {
		return created, nil
	}

	// A concurrent first login for the same identity surfaces as a uniqueness
	// violation; the winner's record is authoritative, so retry the lookup.
	if errors.Is(err, repositories.ErrConflict) {
		existing, lookupErr := s.users.FindByTelegramID(ctx, profile.TelegramID)
		if lookupErr != nil {
			return models.User{}, fmt.Errorf("lookup identity after conflict: %w", lookupErr)
		}
		return s.refresh(ctx, existing, profile)
	}

	return models.User{}, fmt.Errorf("create identity: %w", err)
}

// GetByTelegramID fetches a user by their external Telegram identifier.
func (s *Service) GetByTelegramID(ctx context.Context, telegramID string) (models.User, error) {
	return s.users.FindByTelegramID(ctx, telegramID)
}

func (s *Service) refresh(ctx context.Context, user models.User, profile Profile) (models.User, error) {
	user.Username = profile.Username
	user.FirstName = profile.FirstName
	user.LastName = profile.LastName
	user.PhotoURL = profile.PhotoURL

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return models.User{}, fmt.Errorf("refresh identity profile: %w", err)
	}

	return user, nil
}
