package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/streamgate/backend/internal/logging"
	"github.com/streamgate/backend/internal/media"
	"github.com/streamgate/backend/internal/models"
)

// videoFormMemory bounds how much of a multipart upload is buffered in memory.
const videoFormMemory = 32 << 20

// VideoHandler provides endpoints for managing and streaming videos.
type VideoHandler struct {
	Media          MediaService
	Auth           Authenticator
	MaxUploadBytes int64
}

type videoResponse struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	IsPublic     bool      `json:"is_public"`
	HasThumbnail bool      `json:"has_thumbnail"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func newVideoResponse(video models.Video) videoResponse {
	return videoResponse{
		ID:           video.ID,
		Title:        video.Title,
		Description:  video.Description,
		IsPublic:     video.IsPublic,
		HasThumbnail: video.HasThumbnail(),
		CreatedAt:    video.CreatedAt,
		UpdatedAt:    video.UpdatedAt,
	}
}

// List handles GET /api/v1/videos requests.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	videos, err := h.Media.List(ctx, caller)
	if err != nil {
		logging.FromContext(ctx).Error("list videos failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to list videos")
		return
	}

	out := make([]videoResponse, 0, len(videos))
	for _, video := range videos {
		out = append(out, newVideoResponse(video))
	}

	respondJSON(ctx, w, http.StatusOK, out)
}

// Get handles GET /api/v1/videos/{id} requests.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	id, ok := videoID(r)
	if !ok {
		respondError(ctx, w, http.StatusNotFound, "video not found")
		return
	}

	video, err := h.Media.Get(ctx, id, caller)
	if err != nil {
		h.respondMediaError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, newVideoResponse(video))
}

// Create handles POST /api/v1/videos multipart upload requests.
func (h VideoHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	caller, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	// Reject non-admins before reading any upload bytes.
	if !caller.IsAdmin {
		respondError(ctx, w, http.StatusForbidden, "admin capability required")
		return
	}

	if h.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	}

	if err := r.ParseMultipartForm(videoFormMemory); err != nil {
		logger.Warn("invalid multipart payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	title := r.FormValue("title")
	if title == "" {
		respondError(ctx, w, http.StatusBadRequest, "title is required")
		return
	}

	isPublic := true
	if raw := r.FormValue("is_public"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(ctx, w, http.StatusBadRequest, "is_public must be a boolean")
			return
		}
		isPublic = parsed
	}

	videoFile, videoHeader, err := r.FormFile("video_file")
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, "video_file is required")
		return
	}
	defer videoFile.Close()

	input := media.CreateInput{
		Title:       title,
		Description: r.FormValue("description"),
		IsPublic:    isPublic,
		Video:       media.Upload{Filename: videoHeader.Filename, Reader: videoFile},
	}

	thumbFile, thumbHeader, err := r.FormFile("thumbnail_file")
	switch {
	case err == nil:
		defer thumbFile.Close()
		input.Thumbnail = &media.Upload{Filename: thumbHeader.Filename, Reader: thumbFile}
	case errors.Is(err, http.ErrMissingFile):
		// thumbnail is optional
	default:
		respondError(ctx, w, http.StatusBadRequest, "invalid thumbnail_file")
		return
	}

	video, err := h.Media.Create(ctx, input, caller)
	if err != nil {
		if errors.Is(err, media.ErrForbidden) {
			respondError(ctx, w, http.StatusForbidden, "admin capability required")
			return
		}
		logger.Error("create video failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to create video")
		return
	}

	respondJSON(ctx, w, http.StatusCreated, newVideoResponse(video))
}

// Delete handles DELETE /api/v1/videos/{id} requests.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	id, ok := videoID(r)
	if !ok {
		respondError(ctx, w, http.StatusNotFound, "video not found")
		return
	}

	if err := h.Media.Delete(ctx, id, caller); err != nil {
		h.respondMediaError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"detail": "video deleted"})
}

// Stream handles GET /api/v1/videos/{id}/stream requests.
func (h VideoHandler) Stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	id, ok := videoID(r)
	if !ok {
		respondError(ctx, w, http.StatusNotFound, "video not found")
		return
	}

	reader, size, err := h.Media.OpenVideo(ctx, id, caller)
	if err != nil {
		h.respondMediaError(ctx, w, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", "video/mp4")
	if size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}

	if _, err := io.Copy(w, reader); err != nil {
		// The response is already committed; a broken pipe here is the
		// client going away, not a failure we can report.
		logging.FromContext(ctx).Warn("stream interrupted", "video_id", id, "error", err)
	}
}

// Thumbnail handles GET /api/v1/videos/{id}/thumbnail requests.
func (h VideoHandler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	id, ok := videoID(r)
	if !ok {
		respondError(ctx, w, http.StatusNotFound, "video not found")
		return
	}

	reader, size, err := h.Media.OpenThumbnail(ctx, id, caller)
	if err != nil {
		h.respondMediaError(ctx, w, err)
		return
	}
	defer reader.Close()

	// Blob keys carry no original filename, so detect the image type from
	// the leading bytes instead.
	head := make([]byte, 512)
	n, readErr := io.ReadFull(reader, head)
	if readErr != nil && !errors.Is(readErr, io.EOF) && !errors.Is(readErr, io.ErrUnexpectedEOF) {
		logging.FromContext(ctx).Error("read thumbnail", "video_id", id, "error", readErr)
		respondError(ctx, w, http.StatusInternalServerError, "failed to read thumbnail")
		return
	}
	head = head[:n]

	w.Header().Set("Content-Type", http.DetectContentType(head))
	if size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}

	if _, err := w.Write(head); err != nil {
		logging.FromContext(ctx).Warn("thumbnail write interrupted", "video_id", id, "error", err)
		return
	}
	if _, err := io.Copy(w, reader); err != nil {
		logging.FromContext(ctx).Warn("thumbnail write interrupted", "video_id", id, "error", err)
	}
}

func (h VideoHandler) authenticate(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	ctx := r.Context()

	if h.Auth == nil || h.Media == nil {
		logging.FromContext(ctx).Error("video handler dependencies unavailable", "hasAuth", h.Auth != nil, "hasMedia", h.Media != nil)
		respondError(ctx, w, http.StatusInternalServerError, "video services unavailable")
		return models.User{}, false
	}

	caller, err := h.Auth.Authenticate(r)
	if err != nil {
		respondError(ctx, w, http.StatusUnauthorized, "not authenticated")
		return models.User{}, false
	}

	return caller, true
}

func (h VideoHandler) respondMediaError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, media.ErrNotFound):
		respondError(ctx, w, http.StatusNotFound, "video not found")
	case errors.Is(err, media.ErrForbidden):
		respondError(ctx, w, http.StatusForbidden, "not authorized")
	default:
		logging.FromContext(ctx).Error("video operation failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "video operation failed")
	}
}

func videoID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
