package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/ytdash/ytdash/backend/go-services/internal/models"
)

// fake repo for testing
type fakeRepo struct {
	store   map[string]*Session
	touches int
}

func (f *fakeRepo) Create(ctx context.Context, s *Session) error {
	if f.store == nil {
		f.store = map[string]*Session{}
	}
	cp := *s
	f.store[s.ID] = &cp
	return nil
}
func (f *fakeRepo) Get(ctx context.Context, id string) (*Session, error) {
	s, ok := f.store[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}
func (f *fakeRepo) Touch(ctx context.Context, s *Session) error {
	f.touches++
	cp := *s
	f.store[s.ID] = &cp
	return nil
}
func (f *fakeRepo) Delete(ctx context.Context, id string) error {
	delete(f.store, id)
	return nil
}

func testIdentity() *models.Identity {
	return &models.Identity{AccessToken: "ya29.token", Profile: models.Profile{ID: "sub-1", DisplayName: "Alice"}}
}

func TestCreateAndValidateSession(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, time.Hour)
	ctx := context.Background()
	sess, err := svc.CreateSession(ctx, testIdentity())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if len(sess.ID) != 64 {
		t.Fatalf("expected 64 hex chars session id, got %q", sess.ID)
	}
	got, err := svc.ValidateSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("validate error: %v", err)
	}
	if got == nil || got.Profile.ID != "sub-1" || got.AccessToken != "ya29.token" {
		t.Fatalf("unexpected session: %v", got)
	}
	if err := svc.DeleteSession(ctx, sess.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	got2, _ := svc.ValidateSession(ctx, sess.ID)
	if got2 != nil {
		t.Fatalf("expected session removed")
	}
}

func TestCreateSession_RejectsIncompleteIdentity(t *testing.T) {
	svc := NewService(&fakeRepo{}, time.Hour)
	if _, err := svc.CreateSession(context.Background(), &models.Identity{Profile: models.Profile{ID: "x"}}); err == nil {
		t.Fatal("expected error for identity without access token")
	}
}

func TestValidateSession_ExpiresAfterTTLWithoutActivity(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, 24*time.Hour)
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx, testIdentity())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	clock = clock.Add(24*time.Hour + time.Second)
	got, err := svc.ValidateSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("validate error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected expired session to be absent")
	}
	if _, ok := repo.store[sess.ID]; ok {
		t.Fatalf("expected expired session to be cleaned up")
	}
}

func TestTouch_RollsExpiry(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, 24*time.Hour)
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }
	ctx := context.Background()

	sess, _ := svc.CreateSession(ctx, testIdentity())

	// activity after 20h keeps the session alive for another 24h
	clock = clock.Add(20 * time.Hour)
	got, _ := svc.ValidateSession(ctx, sess.ID)
	if got == nil {
		t.Fatal("session should still be valid")
	}
	if err := svc.Touch(ctx, got); err != nil {
		t.Fatalf("touch failed: %v", err)
	}
	if repo.touches != 1 {
		t.Fatalf("expected one touch, got %d", repo.touches)
	}

	clock = clock.Add(20 * time.Hour)
	if got, _ := svc.ValidateSession(ctx, sess.ID); got == nil {
		t.Fatal("rolling expiry should have extended the session")
	}
}

func TestValidateSession_EmptyID(t *testing.T) {
	svc := NewService(&fakeRepo{}, 0)
	if svc.TTL() != DefaultTTL {
		t.Fatalf("expected default ttl, got %v", svc.TTL())
	}
	got, err := svc.ValidateSession(context.Background(), "")
	if err != nil || got != nil {
		t.Fatalf("expected nil,nil for empty id, got %v %v", got, err)
	}
}
