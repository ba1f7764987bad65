// Package session tracks issued access tokens in Redis so logout can
// invalidate a JWT before its expiry.
package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dealdesk/dealdesk-backend/pkg/config"
	redisclient "github.com/dealdesk/dealdesk-backend/pkg/redis"
)

type sessionStore interface {
	StoreSession(ctx context.Context, userID, tokenID string, ttl time.Duration) error
	SessionExists(ctx context.Context, userID, tokenID string) (bool, error)
	RevokeSession(ctx context.Context, userID, tokenID string) error
}

// Manager records, checks, and revokes token sessions.
type Manager struct {
	store sessionStore
	ttl   time.Duration
}

// Checker exposes the read-only surface needed by middleware.
type Checker interface {
	Active(ctx context.Context, userID, tokenID string) (bool, error)
}

// NewManager constructs a session manager backed by Redis. The session TTL
// tracks the access token TTL so entries expire on their own.
func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	ttl := cfg.TokenTTL()
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive")
	}
	return &Manager{store: client, ttl: ttl}, nil
}

// Record registers a freshly minted token ID as an active session.
func (m *Manager) Record(ctx context.Context, userID, tokenID string) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(tokenID) == "" {
		return fmt.Errorf("user id and token id are required")
	}
	return m.store.StoreSession(ctx, userID, tokenID, m.ttl)
}

// Active reports whether the token ID is still a live session.
func (m *Manager) Active(ctx context.Context, userID, tokenID string) (bool, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(tokenID) == "" {
		return false, nil
	}
	return m.store.SessionExists(ctx, userID, tokenID)
}

// Revoke removes the session so the token is rejected from now on.
func (m *Manager) Revoke(ctx context.Context, userID, tokenID string) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(tokenID) == "" {
		return fmt.Errorf("user id and token id are required")
	}
	return m.store.RevokeSession(ctx, userID, tokenID)
}
