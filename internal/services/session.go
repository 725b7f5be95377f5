package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/cryptox"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/models"
	"github.com/dmitrijs2005/taskkeeper/internal/storage"
)

// SessionManager issues and checks the single session of a client.
//
// A session is Absent, Active or Expired. CreateSession moves any state to
// Active and replaces the previous session. Expiry is noticed only by
// ValidateSession, which then clears it. ClearSession moves any state to
// Absent.
type SessionManager interface {
	CreateSession(ctx context.Context, email string) (string, error)
	ValidateSession(ctx context.Context) (*models.Session, error)
	ClearSession(ctx context.Context) error
}

type sessionManager struct {
	store storage.Store
	ttl   time.Duration
	now   func() time.Time
	log   logging.Logger
}

// NewSessionManager returns a SessionManager keeping the session in store
// under common.SessionKey. A zero ttl means common.SessionTTL; a nil now
// means time.Now.
func NewSessionManager(store storage.Store, ttl time.Duration, now func() time.Time, log logging.Logger) SessionManager {
	if ttl <= 0 {
		ttl = common.SessionTTL
	}
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logging.NewDiscard()
	}
	return &sessionManager{store: store, ttl: ttl, now: now, log: log}
}

// CreateSession mints a token for email valid for the configured TTL and
// returns it.
func (m *sessionManager) CreateSession(ctx context.Context, email string) (string, error) {
	token, err := cryptox.GenerateToken()
	if err != nil {
		return "", fmt.Errorf("token generation: %w", err)
	}

	s := models.Session{
		Token:     token,
		Email:     email,
		ExpiresAt: m.now().Add(m.ttl),
	}
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("session encoding: %w", err)
	}

	if err := m.store.Set(ctx, common.SessionKey, data); err != nil {
		m.log.Error(ctx, "session store write failed", "error", err)
		return "", fmt.Errorf("failed to save session: %w", err)
	}

	m.log.Info(ctx, "session issued", "email", email, "expires_at", s.ExpiresAt)
	return token, nil
}

// ValidateSession returns the current session, or nil when there is none or
// it has expired. An expired session is deleted. The expiry is never
// extended.
func (m *sessionManager) ValidateSession(ctx context.Context) (*models.Session, error) {
	data, ok, err := m.store.Get(ctx, common.SessionKey)
	if err != nil {
		m.log.Error(ctx, "session store read failed", "error", err)
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var s models.Session
	if err := json.Unmarshal(data, &s); err != nil {
		m.log.Warn(ctx, "dropping unreadable session", "error", err)
		return nil, m.ClearSession(ctx)
	}

	if s.Expired(m.now()) {
		m.log.Warn(ctx, "session expired", "email", s.Email)
		return nil, m.ClearSession(ctx)
	}

	return &s, nil
}

// ClearSession deletes the session. It is a no-op when there is none.
func (m *sessionManager) ClearSession(ctx context.Context) error {
	if err := m.store.Delete(ctx, common.SessionKey); err != nil {
		m.log.Error(ctx, "session store delete failed", "error", err)
		return fmt.Errorf("failed to clear session: %w", err)
	}
	m.log.Debug(ctx, "session cleared")
	return nil
}
