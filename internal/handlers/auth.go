package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/streamgate/backend/internal/identity"
	"github.com/streamgate/backend/internal/logging"
)

// AuthHandler implements the Telegram login endpoint.
type AuthHandler struct {
	Verifier   CredentialVerifier
	Identities IdentityService
	Tokens     TokenIssuer
	Limiter    RateLimiter
}

// telegramLoginRequest is the explicit shape of a Login Widget payload. Every
// recognized field is listed; unknown fields are rejected before the payload
// reaches the verifier.
type telegramLoginRequest struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	PhotoURL  string `json:"photo_url"`
	AuthDate  int64  `json:"auth_date"`
	Hash      string `json:"hash"`
}

// signedFields rebuilds the field mapping Telegram signed. Optional display
// fields are included only when present, matching what the widget sends.
func (req telegramLoginRequest) signedFields() map[string]string {
	fields := map[string]string{
		"id":        strconv.FormatInt(req.ID, 10),
		"auth_date": strconv.FormatInt(req.AuthDate, 10),
		"hash":      req.Hash,
	}
	if req.FirstName != "" {
		fields["first_name"] = req.FirstName
	}
	if req.LastName != "" {
		fields["last_name"] = req.LastName
	}
	if req.Username != "" {
		fields["username"] = req.Username
	}
	if req.PhotoURL != "" {
		fields["photo_url"] = req.PhotoURL
	}
	return fields
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login handles POST /api/v1/auth/login requests.
func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Verifier == nil || h.Identities == nil || h.Tokens == nil {
		logger.Error("login dependencies unavailable",
			"hasVerifier", h.Verifier != nil, "hasIdentities", h.Identities != nil, "hasTokens", h.Tokens != nil)
		respondError(ctx, w, http.StatusInternalServerError, "authentication services unavailable")
		return
	}

	if !allowRequest(h.Limiter, r, "login") {
		logger.Warn("login rate limited", "remote_addr", r.RemoteAddr)
		respondError(ctx, w, http.StatusTooManyRequests, "too many login attempts")
		return
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var req telegramLoginRequest
	if err := decoder.Decode(&req); err != nil {
		logger.Warn("invalid login payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ID == 0 || req.Hash == "" {
		logger.Warn("login missing required fields")
		respondError(ctx, w, http.StatusBadRequest, "id and hash are required")
		return
	}

	// Hash mismatch and stale auth_date deliberately produce the same outcome.
	if !h.Verifier.Verify(req.signedFields()) {
		logger.Warn("telegram verification failed", "telegram_id", req.ID)
		respondError(ctx, w, http.StatusUnauthorized, "invalid telegram authentication data")
		return
	}

	user, err := h.Identities.Upsert(ctx, identity.Profile{
		TelegramID: strconv.FormatInt(req.ID, 10),
		Username:   req.Username,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		PhotoURL:   req.PhotoURL,
	})
	if err != nil {
		logger.Error("upsert identity failed", "telegram_id", req.ID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to resolve identity")
		return
	}

	token, err := h.Tokens.Issue(user.TelegramID)
	if err != nil {
		logger.Error("issue token failed", "telegram_id", user.TelegramID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to issue access token")
		return
	}

	respondJSON(ctx, w, http.StatusOK, loginResponse{AccessToken: token, TokenType: "bearer"})
}
