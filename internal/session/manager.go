package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"schoolportal/internal/auth"
	"schoolportal/internal/crypto"
	"schoolportal/internal/users"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// CredentialStore finds users for login and for session checks.
type CredentialStore interface {
	GetByEmail(ctx context.Context, email string) (users.User, error)
	GetByID(ctx context.Context, id int64) (users.User, error)
}

// Options configure the signed session cookie.
type Options struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// Manager issues, resolves and destroys sessions.
type Manager struct {
	creds CredentialStore
	store Store
	opts  Options
}

func NewManager(creds CredentialStore, store Store, opts Options) *Manager {
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	return &Manager{creds: creds, store: store, opts: opts}
}

// TTL is how long a session lives.
func (m *Manager) TTL() time.Duration { return m.opts.TTL }

var (
	dummyOnce sync.Once
	dummyHash string
)

// compare against a throwaway hash so unknown emails cost the same as wrong passwords
func burnHash(password string) {
	dummyOnce.Do(func() {
		dummyHash, _ = crypto.HashPassword("portal-dummy-password")
	})
	_ = crypto.CheckPassword(dummyHash, password)
}

// Login checks credentials and opens a session, returning the cookie token.
func (m *Manager) Login(ctx context.Context, email, password string) (string, auth.Identity, error) {
	u, err := m.creds.GetByEmail(ctx, email)
	if errors.Is(err, users.ErrNotFound) {
		burnHash(password)
		return "", auth.Identity{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", auth.Identity{}, err
	}
	if err := crypto.CheckPassword(u.PasswordHash, password); err != nil {
		return "", auth.Identity{}, ErrInvalidCredentials
	}

	ident := auth.IdentityOf(u)
	sid := uuid.NewString()
	if err := m.store.Save(ctx, sid, ident, m.opts.TTL); err != nil {
		return "", auth.Identity{}, err
	}
	token, err := auth.Sign(sid, m.opts.Issuer, m.opts.Secret, m.opts.TTL)
	if err != nil {
		return "", auth.Identity{}, err
	}
	return token, ident, nil
}

// Resolve returns the identity behind a cookie token. Sessions of deleted users are dropped.
func (m *Manager) Resolve(ctx context.Context, token string) (auth.Identity, error) {
	claims, err := auth.Parse(token, m.opts.Secret, m.opts.Issuer)
	if err != nil {
		return auth.Identity{}, ErrNoSession
	}
	ident, err := m.store.Load(ctx, claims.SessionID)
	if err != nil {
		return auth.Identity{}, err
	}

	// the account may have been deleted since login
	u, err := m.creds.GetByID(ctx, ident.ID)
	if errors.Is(err, users.ErrNotFound) {
		if err := m.store.Delete(ctx, claims.SessionID); err != nil {
			return auth.Identity{}, err
		}
		return auth.Identity{}, ErrNoSession
	}
	if err != nil {
		return auth.Identity{}, err
	}
	return auth.IdentityOf(u), nil
}

// Logout destroys the session behind token. Unknown or invalid tokens are ignored.
func (m *Manager) Logout(ctx context.Context, token string) error {
	claims, err := auth.Parse(token, m.opts.Secret, m.opts.Issuer)
	if err != nil {
		return nil
	}
	return m.store.Delete(ctx, claims.SessionID)
}

// Ping checks the backing store.
func (m *Manager) Ping(ctx context.Context) error {
	return m.store.Ping(ctx)
}
