package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/streamgate/backend/internal/db"
	"github.com/streamgate/backend/internal/models"
)

// PostgresIdentityRepository provides PostgreSQL-backed persistence for users.
type PostgresIdentityRepository struct {
	pool db.Pool
}

// NewPostgresIdentityRepository constructs an identity repository backed by PostgreSQL.
func NewPostgresIdentityRepository(pool db.Pool) *PostgresIdentityRepository {
	return &PostgresIdentityRepository{pool: pool}
}

// Create persists a new user record and returns it with its assigned id.
func (r *PostgresIdentityRepository) Create(ctx context.Context, user models.User) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        INSERT INTO identities (telegram_id, username, first_name, last_name, photo_url, is_admin)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at
    `, user.TelegramID, user.Username, user.FirstName, user.LastName, user.PhotoURL, user.IsAdmin)

	if err := row.Scan(&user.ID, &user.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.User{}, ErrConflict
		}
		return models.User{}, fmt.Errorf("insert identity: %w", err)
	}

	user.CreatedAt = user.CreatedAt.UTC()
	return user, nil
}

// FindByTelegramID fetches a user by their external Telegram identifier.
func (r *PostgresIdentityRepository) FindByTelegramID(ctx context.Context, telegramID string) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, telegram_id, username, first_name, last_name, photo_url, is_admin, created_at
        FROM identities
        WHERE telegram_id = $1
    `, telegramID)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("select identity by telegram id: %w", err)
	}

	return user, nil
}

// UpdateProfile overwrites the mutable display fields of an existing user.
// The admin flag and creation timestamp are deliberately left untouched.
func (r *PostgresIdentityRepository) UpdateProfile(ctx context.Context, user models.User) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE identities
        SET username = $2, first_name = $3, last_name = $4, photo_url = $5
        WHERE telegram_id = $1
    `, user.TelegramID, user.Username, user.FirstName, user.LastName, user.PhotoURL)
	if err != nil {
		return fmt.Errorf("update identity profile: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.TelegramID, &user.Username, &user.FirstName, &user.LastName, &user.PhotoURL, &user.IsAdmin, &user.CreatedAt); err != nil {
		return models.User{}, err
	}
	user.CreatedAt = user.CreatedAt.UTC()
	return user, nil
}

// PostgresVideoRepository provides PostgreSQL-backed persistence for video records.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

// Create stores a new video record and returns it with its assigned id.
func (r *PostgresVideoRepository) Create(ctx context.Context, video models.Video) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	thumbnail := sql.NullString{String: video.ThumbnailKey, Valid: video.ThumbnailKey != ""}
	owner := sql.NullInt64{Int64: video.OwnerID, Valid: video.OwnerID != 0}

	row := conn.QueryRow(ctx, `
        INSERT INTO videos (title, description, is_public, video_key, thumbnail_key, owner_id)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at
    `, video.Title, video.Description, video.IsPublic, video.VideoKey, thumbnail, owner)

	if err := row.Scan(&video.ID, &video.CreatedAt, &video.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return models.Video{}, ErrConflict
			case "23503":
				return models.Video{}, ErrNotFound
			}
		}
		return models.Video{}, fmt.Errorf("insert video: %w", err)
	}

	video.CreatedAt = video.CreatedAt.UTC()
	video.UpdatedAt = video.UpdatedAt.UTC()
	return video, nil
}

// List returns video records in reverse chronological order. When publicOnly
// is set, private records are excluded.
func (r *PostgresVideoRepository) List(ctx context.Context, publicOnly bool) ([]models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id, title, description, is_public, video_key, thumbnail_key, owner_id, created_at, updated_at
        FROM videos
        WHERE $1 = false OR is_public = true
        ORDER BY created_at DESC, id DESC
    `, publicOnly)
	if err != nil {
		return nil, fmt.Errorf("query videos: %w", err)
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate videos: %w", err)
	}

	return videos, nil
}

// FindByID fetches a single video record.
func (r *PostgresVideoRepository) FindByID(ctx context.Context, id int64) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, title, description, is_public, video_key, thumbnail_key, owner_id, created_at, updated_at
        FROM videos
        WHERE id = $1
    `, id)

	video, err := scanVideo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("select video by id: %w", err)
	}

	return video, nil
}

// Delete removes a video record.
func (r *PostgresVideoRepository) Delete(ctx context.Context, id int64) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM videos
        WHERE id = $1
    `, id)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func scanVideo(row pgx.Row) (models.Video, error) {
	var (
		video     models.Video
		thumbnail sql.NullString
		owner     sql.NullInt64
	)

	if err := row.Scan(&video.ID, &video.Title, &video.Description, &video.IsPublic, &video.VideoKey, &thumbnail, &owner, &video.CreatedAt, &video.UpdatedAt); err != nil {
		return models.Video{}, err
	}

	video.ThumbnailKey = thumbnail.String
	video.OwnerID = owner.Int64
	video.CreatedAt = video.CreatedAt.UTC()
	video.UpdatedAt = video.UpdatedAt.UTC()
	return video, nil
}

var _ IdentityRepository = (*PostgresIdentityRepository)(nil)
var _ VideoRepository = (*PostgresVideoRepository)(nil)
