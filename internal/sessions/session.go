package sessions

import (
	"time"

	"github.com/ytdash/ytdash/backend/go-services/internal/models"
)

// Session binds a cookie-delivered identifier to the user's Google access
// token and profile.
type Session struct {
	ID             string         `bson:"_id" json:"id"`
	AccessToken    string         `bson:"accessToken" json:"accessToken"`
	Profile        models.Profile `bson:"profile" json:"profile"`
	CreatedAt      time.Time      `bson:"createdAt" json:"createdAt"`
	ExpiresAt      time.Time      `bson:"expiresAt" json:"expiresAt"`
	LastAccessedAt time.Time      `bson:"lastAccessedAt" json:"lastAccessedAt"`
}

// ExpiredAt reports whether the session is expired at now.
func (s *Session) ExpiredAt(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Identity returns the request capability carried by the session.
func (s *Session) Identity() *models.Identity {
	return &models.Identity{AccessToken: s.AccessToken, Profile: s.Profile}
}
