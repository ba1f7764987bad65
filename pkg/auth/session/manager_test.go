package session

import (
	"context"
	"testing"
	"time"
)

type fakeStore struct {
	sessions map[string]bool
	ttls     map[string]time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: make(map[string]bool), ttls: make(map[string]time.Duration)}
}

func (f *fakeStore) key(userID, tokenID string) string { return userID + ":" + tokenID }

func (f *fakeStore) StoreSession(ctx context.Context, userID, tokenID string, ttl time.Duration) error {
	f.sessions[f.key(userID, tokenID)] = true
	f.ttls[f.key(userID, tokenID)] = ttl
	return nil
}

func (f *fakeStore) SessionExists(ctx context.Context, userID, tokenID string) (bool, error) {
	return f.sessions[f.key(userID, tokenID)], nil
}

func (f *fakeStore) RevokeSession(ctx context.Context, userID, tokenID string) error {
	delete(f.sessions, f.key(userID, tokenID))
	return nil
}

func TestSessionRecordCheckRevoke(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	m := &Manager{store: store, ttl: 30 * time.Minute}

	if err := m.Record(ctx, "user-1", "jti-1"); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if store.ttls["user-1:jti-1"] != 30*time.Minute {
		t.Fatalf("expected ttl to match manager ttl")
	}

	active, err := m.Active(ctx, "user-1", "jti-1")
	if err != nil {
		t.Fatalf("active failed: %v", err)
	}
	if !active {
		t.Fatalf("expected session active after record")
	}

	if err := m.Revoke(ctx, "user-1", "jti-1"); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	active, err = m.Active(ctx, "user-1", "jti-1")
	if err != nil {
		t.Fatalf("active after revoke failed: %v", err)
	}
	if active {
		t.Fatalf("expected session inactive after revoke")
	}
}

func TestSessionRejectsBlankIdentifiers(t *testing.T) {
	ctx := context.Background()
	m := &Manager{store: newFakeStore(), ttl: time.Minute}

	if err := m.Record(ctx, "", "jti"); err == nil {
		t.Fatalf("expected error for blank user id")
	}
	if err := m.Revoke(ctx, "user", " "); err == nil {
		t.Fatalf("expected error for blank token id")
	}
	active, err := m.Active(ctx, "", "")
	if err != nil {
		t.Fatalf("active with blanks errored: %v", err)
	}
	if active {
		t.Fatalf("blank identifiers should never be active")
	}
}
