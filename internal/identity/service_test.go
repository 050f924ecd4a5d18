package identity

import (
	"context"
	"testing"
	"time"

	"github.com/streamgate/backend/internal/models"
	"github.com/streamgate/backend/internal/repositories"
)

type fakeIdentityRepo struct {
	users    map[string]models.User
	nextID   int64
	missOnce bool
}

func newFakeIdentityRepo() *fakeIdentityRepo {
	return &fakeIdentityRepo{users: make(map[string]models.User)}
}

func (r *fakeIdentityRepo) Create(_ context.Context, user models.User) (models.User, error) {
	if _, exists := r.users[user.TelegramID]; exists {
		return models.User{}, repositories.ErrConflict
	}
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now().UTC()
	r.users[user.TelegramID] = user
	return user, nil
}

func (r *fakeIdentityRepo) FindByTelegramID(_ context.Context, telegramID string) (models.User, error) {
	if r.missOnce {
		r.missOnce = false
		return models.User{}, repositories.ErrNotFound
	}
	user, ok := r.users[telegramID]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (r *fakeIdentityRepo) UpdateProfile(_ context.Context, user models.User) error {
	stored, ok := r.users[user.TelegramID]
	if !ok {
		return repositories.ErrNotFound
	}
	stored.Username = user.Username
	stored.FirstName = user.FirstName
	stored.LastName = user.LastName
	stored.PhotoURL = user.PhotoURL
	r.users[user.TelegramID] = stored
	return nil
}

func TestUpsertCreatesOnFirstLogin(t *testing.T) {
	repo := newFakeIdentityRepo()
	svc := NewService(repo, "9001")

	user, err := svc.Upsert(context.Background(), Profile{TelegramID: "1001", FirstName: "Ann"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if user.ID == 0 {
		t.Fatal("expected assigned id")
	}
	if user.IsAdmin {
		t.Fatal("expected non-admin for unconfigured telegram id")
	}

	admin, err := svc.Upsert(context.Background(), Profile{TelegramID: "9001", FirstName: "Root"})
	if err != nil {
		t.Fatalf("upsert admin: %v", err)
	}
	if !admin.IsAdmin {
		t.Fatal("expected admin flag for configured telegram id")
	}
}

func TestUpsertNeverCreatesSecondRecord(t *testing.T) {
	repo := newFakeIdentityRepo()
	svc := NewService(repo, "9001")

	first, err := svc.Upsert(context.Background(), Profile{TelegramID: "1001", Username: "ann", FirstName: "Ann"})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second, err := svc.Upsert(context.Background(), Profile{TelegramID: "1001", Username: "annie", FirstName: "Annie", PhotoURL: "https://t.me/p.jpg"})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if len(repo.users) != 1 {
		t.Fatalf("expected a single record, got %d", len(repo.users))
	}
	if second.ID != first.ID {
		t.Fatalf("expected stable id %d got %d", first.ID, second.ID)
	}
	if second.Username != "annie" || second.FirstName != "Annie" || second.PhotoURL != "https://t.me/p.jpg" {
		t.Fatalf("expected display fields overwritten, got %+v", second)
	}
}

func TestUpsertAdminFlagDecidedOnce(t *testing.T) {
	repo := newFakeIdentityRepo()

	// First login while no admin id is configured.
	svc := NewService(repo, "")
	user, err := svc.Upsert(context.Background(), Profile{TelegramID: "1001"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if user.IsAdmin {
		t.Fatal("expected non-admin at creation")
	}

	// The id now matches the configured admin, but promotion never happens
	// retroactively.
	svc = NewService(repo, "1001")
	user, err = svc.Upsert(context.Background(), Profile{TelegramID: "1001"})
	if err != nil {
		t.Fatalf("re-upsert: %v", err)
	}
	if user.IsAdmin {
		t.Fatal("expected no retroactive promotion")
	}

	// Conversely an admin created under a matching config keeps the flag even
	// after the config changes.
	adminRepo := newFakeIdentityRepo()
	svc = NewService(adminRepo, "2002")
	if _, err := svc.Upsert(context.Background(), Profile{TelegramID: "2002"}); err != nil {
		t.Fatalf("create admin: %v", err)
	}
	svc = NewService(adminRepo, "")
	user, err = svc.Upsert(context.Background(), Profile{TelegramID: "2002"})
	if err != nil {
		t.Fatalf("re-upsert admin: %v", err)
	}
	if !user.IsAdmin {
		t.Fatal("expected admin flag to persist, demotion never occurs")
	}
}

func TestUpsertRetriesLookupOnConflict(t *testing.T) {
	repo := newFakeIdentityRepo()
	svc := NewService(repo, "")

	// Simulate a concurrent first login winning the insert race: our initial
	// lookup misses, then the create hits the unique constraint because the
	// winner's row landed in between.
	winner, err := repo.Create(context.Background(), models.User{TelegramID: "1001", Username: "winner"})
	if err != nil {
		t.Fatalf("seed winner: %v", err)
	}
	repo.missOnce = true

	user, err := svc.Upsert(context.Background(), Profile{TelegramID: "1001", Username: "loser"})
	if err != nil {
		t.Fatalf("upsert after conflict: %v", err)
	}
	if user.ID != winner.ID {
		t.Fatalf("expected winner record %d got %d", winner.ID, user.ID)
	}
}

func TestUpsertRequiresTelegramID(t *testing.T) {
	svc := NewService(newFakeIdentityRepo(), "")
	if _, err := svc.Upsert(context.Background(), Profile{}); err == nil {
		t.Fatal("expected error for empty telegram id")
	}
}
