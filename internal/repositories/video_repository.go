package repositories

import (
	"context"

	"github.com/streamgate/backend/internal/models"
)

// VideoRepository exposes data access for video metadata records.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) (models.Video, error)
	List(ctx context.Context, publicOnly bool) ([]models.Video, error)
	FindByID(ctx context.Context, id int64) (models.Video, error)
	Delete(ctx context.Context, id int64) error
}
