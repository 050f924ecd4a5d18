package handlers

import (
	"net/http"
	"time"

	"github.com/streamgate/backend/internal/logging"
	"github.com/streamgate/backend/internal/models"
)

// UserHandler exposes the current user's profile.
type UserHandler struct {
	Auth Authenticator
}

type userResponse struct {
	TelegramID string    `json:"telegram_id"`
	Username   string    `json:"username,omitempty"`
	FirstName  string    `json:"first_name,omitempty"`
	LastName   string    `json:"last_name,omitempty"`
	PhotoURL   string    `json:"photo_url,omitempty"`
	IsAdmin    bool      `json:"is_admin"`
	CreatedAt  time.Time `json:"created_at"`
}

func newUserResponse(user models.User) userResponse {
	return userResponse{
		TelegramID: user.TelegramID,
		Username:   user.Username,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		PhotoURL:   user.PhotoURL,
		IsAdmin:    user.IsAdmin,
		CreatedAt:  user.CreatedAt,
	}
}

// Me handles GET /api/v1/users/me requests.
func (h UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.Auth == nil {
		logging.FromContext(ctx).Error("authenticator unavailable")
		respondError(ctx, w, http.StatusInternalServerError, "authentication services unavailable")
		return
	}

	user, err := h.Auth.Authenticate(r)
	if err != nil {
		respondError(ctx, w, http.StatusUnauthorized, "not authenticated")
		return
	}

	respondJSON(ctx, w, http.StatusOK, newUserResponse(user))
}
