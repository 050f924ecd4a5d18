package models

import "time"

// User represents an account resolved from a Telegram login.
type User struct {
	ID         int64
	TelegramID string
	Username   string
	FirstName  string
	LastName   string
	PhotoURL   string
	IsAdmin    bool
	CreatedAt  time.Time
}

// Video stores metadata for an uploaded video along with its blob keys.
type Video struct {
	ID           int64
	Title        string
	Description  string
	IsPublic     bool
	VideoKey     string
	ThumbnailKey string
	OwnerID      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasThumbnail reports whether a thumbnail blob was stored for the video.
func (v Video) HasThumbnail() bool {
	return v.ThumbnailKey != ""
}
