package sessions

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/ytdash/ytdash/backend/go-services/internal/models"
)

// DefaultTTL is the rolling session lifetime.
const DefaultTTL = 24 * time.Hour

// Service wraps repository operations with business logic
type Service struct {
	repo Repository
	ttl  time.Duration
	now  func() time.Time
}

func NewService(r Repository, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{repo: r, ttl: ttl, now: func() time.Time { return time.Now().UTC() }}
}

// TTL returns the rolling lifetime applied on create and touch.
func (s *Service) TTL() time.Duration { return s.ttl }

// CreateSession stores a new session for the identity and returns it.
func (s *Service) CreateSession(ctx context.Context, id *models.Identity) (*Session, error) {
	if !id.Valid() {
		return nil, errors.New("sessions: identity without subject or access token")
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	now := s.now()
	sess := &Session{
		ID:             hex.EncodeToString(b),
		AccessToken:    id.AccessToken,
		Profile:        id.Profile,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.ttl),
		LastAccessedAt: now,
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// ValidateSession returns the session if the id is known and not expired.
// Unknown and expired sessions both yield (nil, nil).
func (s *Service) ValidateSession(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, nil
	}
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}
	if sess.ExpiredAt(s.now()) {
		// cleanup expired session
		_ = s.repo.Delete(ctx, id)
		return nil, nil
	}
	return sess, nil
}

// Touch extends the session to now+TTL.
func (s *Service) Touch(ctx context.Context, sess *Session) error {
	now := s.now()
	sess.LastAccessedAt = now
	sess.ExpiresAt = now.Add(s.ttl)
	return s.repo.Touch(ctx, sess)
}

func (s *Service) DeleteSession(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.repo.Delete(ctx, id)
}
