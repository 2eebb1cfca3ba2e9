package auth

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"shopfloor-console/internal/infra/sql"
	"shopfloor-console/internal/shared_kernel/domain"
)

// Manager holds the console's authentication state. All reads are
// lock-guarded because the HTTP handlers, the poll worker, and the
// backend client's refresh path touch it concurrently.
type Manager struct {
	mu     sync.RWMutex
	store  *Store
	token  string
	claims Claims
}

func NewManager(store *Store) *Manager {
	return &Manager{store: store}
}

// Rehydrate restores the persisted session on startup. A stored token
// that no longer decodes or has expired is discarded, leaving the
// console unauthenticated rather than half-logged-in.
func (m *Manager) Rehydrate(ctx context.Context) error {
	token, err := m.store.Load(ctx)
	if errors.Is(err, sql.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	claims, err := DecodeClaims(token)
	if err != nil || claims.Expired(time.Now()) {
		slog.Warn("discarding stale persisted session", slog.Any("error", err))
		return m.store.Clear(ctx)
	}

	m.mu.Lock()
	m.token = token
	m.claims = claims
	m.mu.Unlock()

	return nil
}

// SetToken installs a freshly issued token. Tokens without a usable
// role claim are rejected so the console never ends up authenticated
// with no screens to route to.
func (m *Manager) SetToken(ctx context.Context, token string) error {
	claims, err := DecodeClaims(token)
	if err != nil {
		return err
	}

	if err := m.store.Save(ctx, token); err != nil {
		return err
	}

	m.mu.Lock()
	m.token = token
	m.claims = claims
	m.mu.Unlock()

	return nil
}

func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.token = ""
	m.claims = Claims{}
	m.mu.Unlock()

	return m.store.Clear(ctx)
}

func (m *Manager) Token() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, m.token != ""
}

func (m *Manager) Authenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token != ""
}

func (m *Manager) Role() domain.Role {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return domain.Role(m.claims.Role)
}

func (m *Manager) Subject() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.claims.Subject
}
