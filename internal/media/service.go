package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/streamgate/backend/internal/logging"
	"github.com/streamgate/backend/internal/models"
	"github.com/streamgate/backend/internal/repositories"
	"github.com/streamgate/backend/internal/storage"
)

// Blob key prefixes partition the store by purpose.
const (
	videoPrefix     = "videos"
	thumbnailPrefix = "thumbnails"
)

// Upload is an incoming file to persist in the blob store.
type Upload struct {
	Filename string
	Reader   io.Reader
}

// CreateInput carries the fields of a new video record.
type CreateInput struct {
	Title       string
	Description string
	IsPublic    bool
	Video       Upload
	Thumbnail   *Upload
}

// Service coordinates video metadata records with their backing blobs.
type Service struct {
	records repositories.VideoRepository
	blobs   storage.BlobStore
}

// NewService constructs a media service over the given record and blob stores.
func NewService(records repositories.VideoRepository, blobs storage.BlobStore) *Service {
	if records == nil || blobs == nil {
		panic("media: record and blob stores must not be nil")
	}
	return &Service{records: records, blobs: blobs}
}

// Create persists the primary blob first, then the optional thumbnail, and
// only then inserts the metadata row. A blob write failure aborts before any
// row exists, so there are never orphan records pointing at nothing.
func (s *Service) Create(ctx context.Context, input CreateInput, caller models.User) (models.Video, error) {
	if !caller.IsAdmin {
		return models.Video{}, ErrForbidden
	}
	if strings.TrimSpace(input.Title) == "" {
		return models.Video{}, errors.New("media: title is required")
	}
	if input.Video.Reader == nil {
		return models.Video{}, errors.New("media: video upload is required")
	}

	videoKey := newBlobKey(videoPrefix, input.Video.Filename)
	if err := s.blobs.Save(ctx, videoKey, input.Video.Reader); err != nil {
		return models.Video{}, fmt.Errorf("store video blob: %w", err)
	}

	var thumbnailKey string
	if input.Thumbnail != nil && input.Thumbnail.Reader != nil {
		thumbnailKey = newBlobKey(thumbnailPrefix, input.Thumbnail.Filename)
		if err := s.blobs.Save(ctx, thumbnailKey, input.Thumbnail.Reader); err != nil {
			s.removeBlob(ctx, videoKey)
			return models.Video{}, fmt.Errorf("store thumbnail blob: %w", err)
		}
	}

	video, err := s.records.Create(ctx, models.Video{
		Title:        strings.TrimSpace(input.Title),
		Description:  input.Description,
		IsPublic:     input.IsPublic,
		VideoKey:     videoKey,
		ThumbnailKey: thumbnailKey,
		OwnerID:      caller.ID,
	})
	if err != nil {
		s.removeBlob(ctx, videoKey)
		if thumbnailKey != "" {
			s.removeBlob(ctx, thumbnailKey)
		}
		return models.Video{}, fmt.Errorf("insert video record: %w", err)
	}

	return video, nil
}

// List returns records newest first. Non-admin callers see only public records.
func (s *Service) List(ctx context.Context, caller models.User) ([]models.Video, error) {
	videos, err := s.records.List(ctx, !caller.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	return videos, nil
}

// Get fetches a single record, enforcing visibility: a private record is
// forbidden to non-admins, which is distinct from it not existing.
func (s *Service) Get(ctx context.Context, id int64, caller models.User) (models.Video, error) {
	video, err := s.records.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("find video: %w", err)
	}

	if !video.IsPublic && !caller.IsAdmin {
		return models.Video{}, ErrForbidden
	}

	return video, nil
}

// Delete removes the record's blobs and then the metadata row. Blobs that are
// already gone are tolerated; any other blob-store failure is logged and row
// removal proceeds anyway, since the two stores share no transaction.
func (s *Service) Delete(ctx context.Context, id int64, caller models.User) error {
	if !caller.IsAdmin {
		return ErrForbidden
	}

	video, err := s.records.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("find video: %w", err)
	}

	s.removeBlob(ctx, video.VideoKey)
	if video.HasThumbnail() {
		s.removeBlob(ctx, video.ThumbnailKey)
	}

	if err := s.records.Delete(ctx, video.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete video record: %w", err)
	}

	return nil
}

// OpenVideo resolves the record, then opens its primary blob. A record whose
// blob disappeared out-of-band reads as not found, never as a server fault.
func (s *Service) OpenVideo(ctx context.Context, id int64, caller models.User) (io.ReadCloser, int64, error) {
	video, err := s.Get(ctx, id, caller)
	if err != nil {
		return nil, 0, err
	}
	return s.openBlob(ctx, video.VideoKey)
}

// OpenThumbnail opens the record's thumbnail blob when one was stored.
func (s *Service) OpenThumbnail(ctx context.Context, id int64, caller models.User) (io.ReadCloser, int64, error) {
	video, err := s.Get(ctx, id, caller)
	if err != nil {
		return nil, 0, err
	}
	if !video.HasThumbnail() {
		return nil, 0, ErrNotFound
	}
	return s.openBlob(ctx, video.ThumbnailKey)
}

func (s *Service) openBlob(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	reader, size, err := s.blobs.Open(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, fmt.Errorf("open blob %s: %w", key, err)
	}
	return reader, size, nil
}

func (s *Service) removeBlob(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.blobs.Remove(ctx, key); err != nil && !errors.Is(err, storage.ErrBlobNotFound) {
		logging.FromContext(ctx).Error("remove blob", "key", key, "error", err)
	}
}

// newBlobKey builds an opaque key under the prefix. Only a sanitized
// extension survives from the original filename, so keys leak nothing and
// cannot be guessed or traversed.
func newBlobKey(prefix, filename string) string {
	return path.Join(prefix, uuid.NewString()+safeExtension(filename))
}

func safeExtension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) < 2 || len(ext) > 9 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
