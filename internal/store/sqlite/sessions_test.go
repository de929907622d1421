package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/bookendsapp/bookends-server/internal/domain"
	"github.com/bookendsapp/bookends-server/internal/id"
	"github.com/bookendsapp/bookends-server/internal/store"
)

func seedSession(t *testing.T, s *Store, accountID, tokenHash string, expiresAt time.Time) *domain.Session {
	t.Helper()
	now := time.Now()
	sess := &domain.Session{
		ID:               id.MustGenerate("sess"),
		AccountID:        accountID,
		RefreshTokenHash: tokenHash,
		ExpiresAt:        expiresAt,
		CreatedAt:        now,
		LastSeenAt:       now,
		IPAddress:        "127.0.0.1",
	}
	if err := s.CreateSession(context.Background(), sess); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	return sess
}

func TestSessionRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	account := seedAccount(t, s, "reader@example.com")
	sess := seedSession(t, s, account.ID, "hash1", time.Now().Add(time.Hour))

	got, err := s.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.AccountID != account.ID || got.RefreshTokenHash != "hash1" || got.IPAddress != "127.0.0.1" {
		t.Errorf("session not round-tripped: %+v", got)
	}

	byToken, err := s.GetSessionByRefreshToken(ctx, "hash1")
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if byToken.ID != sess.ID {
		t.Errorf("lookup by token returned %s, want %s", byToken.ID, sess.ID)
	}
}

func TestUpdateSessionRotatesToken(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	account := seedAccount(t, s, "reader@example.com")
	sess := seedSession(t, s, account.ID, "hash1", time.Now().Add(time.Hour))

	sess.RefreshTokenHash = "hash2"
	sess.Seen()
	if err := s.UpdateSession(ctx, sess); err != nil {
		t.Fatalf("update session: %v", err)
	}

	if _, err := s.GetSessionByRefreshToken(ctx, "hash1"); err != store.ErrNotFound {
		t.Errorf("old token should be gone, got %v", err)
	}
	if _, err := s.GetSessionByRefreshToken(ctx, "hash2"); err != nil {
		t.Errorf("new token lookup failed: %v", err)
	}
}

func TestDeleteAccountSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	account := seedAccount(t, s, "reader@example.com")
	other := seedAccount(t, s, "other@example.com")
	seedSession(t, s, account.ID, "hash1", time.Now().Add(time.Hour))
	seedSession(t, s, account.ID, "hash2", time.Now().Add(time.Hour))
	kept := seedSession(t, s, other.ID, "hash3", time.Now().Add(time.Hour))

	if err := s.DeleteAccountSessions(ctx, account.ID); err != nil {
		t.Fatalf("delete account sessions: %v", err)
	}

	if _, err := s.GetSessionByRefreshToken(ctx, "hash1"); err != store.ErrNotFound {
		t.Errorf("session should be gone, got %v", err)
	}
	if _, err := s.GetSession(ctx, kept.ID); err != nil {
		t.Errorf("other account's session should survive: %v", err)
	}
}

func TestDeleteExpiredSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	account := seedAccount(t, s, "reader@example.com")
	seedSession(t, s, account.ID, "hash1", time.Now().Add(-time.Hour))
	live := seedSession(t, s, account.ID, "hash2", time.Now().Add(time.Hour))

	removed, err := s.DeleteExpiredSessions(ctx)
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, err := s.GetSession(ctx, live.ID); err != nil {
		t.Errorf("live session should survive: %v", err)
	}
}
