// Package session manages the authenticated session: the credential token,
// the user profile, and the teardown that keeps dependent state consistent.
//
// The session is either fully present (token and profile) or fully absent;
// there is no partial state and no token refresh. Any authorization failure
// funnels through Logout.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/avertin/pricepulse/internal/alerts"
	"github.com/avertin/pricepulse/internal/api"
	"github.com/avertin/pricepulse/internal/model"
)

// Manager owns the session lifecycle: Anonymous ⇄ Authenticated.
type Manager struct {
	api      *api.Client
	store    TokenStore
	registry *alerts.Registry
	logger   *slog.Logger

	mu      sync.RWMutex
	token   string
	profile *model.UserProfile
}

// NewManager creates an anonymous session manager and installs itself as
// the API client's token source.
func NewManager(client *api.Client, store TokenStore, registry *alerts.Registry, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		api:      client,
		store:    store,
		registry: registry,
		logger:   logger,
	}
	client.SetTokenSource(m.Token)
	return m
}

// Token returns the current credential token, or "" when anonymous.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// Profile returns the authenticated user's profile.
func (m *Manager) Profile() (model.UserProfile, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.profile == nil {
		return model.UserProfile{}, false
	}
	return *m.profile, true
}

// Authenticated reports whether a full session is present.
func (m *Manager) Authenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token != "" && m.profile != nil
}

// Restore reads the persisted token at startup and attempts to resume the
// session. With no persisted token it returns nil and stays anonymous. A
// profile-fetch failure of any kind forces a logout.
func (m *Manager) Restore(ctx context.Context) error {
	token, err := m.store.Load()
	if err != nil {
		return fmt.Errorf("load persisted token: %w", err)
	}
	if token == "" {
		m.logger.Debug("no persisted session")
		return nil
	}

	m.mu.Lock()
	m.token = token
	m.mu.Unlock()

	if err := m.establish(ctx); err != nil {
		m.logger.Warn("session restore failed, logging out", "error", err)
		m.Logout()
		return fmt.Errorf("restore session: %w", err)
	}

	m.logger.Info("session restored")
	return nil
}

// Login exchanges credentials for a token, persists it, and establishes
// the session.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	tok, err := m.api.Login(ctx, email, password)
	if err != nil {
		return err
	}

	if err := m.store.Save(tok.AccessToken); err != nil {
		m.logger.Warn("failed to persist session token", "error", err)
	}

	m.mu.Lock()
	m.token = tok.AccessToken
	m.mu.Unlock()

	if err := m.establish(ctx); err != nil {
		m.Logout()
		return fmt.Errorf("establish session: %w", err)
	}

	m.logger.Info("logged in", "email", email)
	return nil
}

// Register creates a new account. It does not authenticate the session.
func (m *Manager) Register(ctx context.Context, email, password, phone string) error {
	if _, err := m.api.Register(ctx, email, password, phone); err != nil {
		return err
	}
	m.logger.Info("registered", "email", email)
	return nil
}

// Logout tears the session down completely: token (in memory and
// persisted), profile, and the alert cache. This is the only path by
// which authorization failures are handled.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.token = ""
	m.profile = nil
	m.mu.Unlock()

	if err := m.store.Clear(); err != nil {
		m.logger.Warn("failed to clear persisted token", "error", err)
	}
	m.registry.Clear()

	m.logger.Info("logged out")
}

// establish fetches the profile for the current token and refreshes the
// alert cache. The caller handles failure by logging out.
func (m *Manager) establish(ctx context.Context) error {
	profile, err := m.api.Me(ctx)
	if err != nil {
		return fmt.Errorf("fetch profile: %w", err)
	}

	m.mu.Lock()
	m.profile = &profile
	m.mu.Unlock()

	if err := m.registry.Refresh(ctx); err != nil {
		// The session itself is valid; a failed listing is surfaced in
		// logs and recovered by the next refresh.
		m.logger.Warn("alert list refresh failed", "error", err)
	}
	return nil
}
