// Package auth gates requests by session identity and role.
package auth

import (
	"context"

	"github.com/pkg/errors"

	"schoolportal/internal/users"
)

var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrAccessDenied           = errors.New("access denied")
)

// Identity is who a session belongs to. The zero value is anonymous.
type Identity struct {
	ID       int64      `json:"id"`
	Email    string     `json:"email"`
	Role     users.Role `json:"role"`
	Fullname string     `json:"fullname"`
}

// IdentityOf builds the session identity for a stored user.
func IdentityOf(u users.User) Identity {
	return Identity{ID: u.ID, Email: u.Email, Role: u.Role, Fullname: u.Fullname}
}

// IsAnonymous reports whether no user is attached.
func (i Identity) IsAnonymous() bool {
	return i.ID == 0
}

// Home is the dashboard path for the identity's role.
func (i Identity) Home() string {
	if i.IsAnonymous() || !i.Role.Valid() {
		return "/login"
	}
	return "/" + i.Role.String()
}

// Authorize allows id when it is authenticated and holds one of roles.
// No roles means any authenticated identity.
func Authorize(id Identity, roles ...users.Role) error {
	if id.IsAnonymous() {
		return ErrAuthenticationRequired
	}
	if len(roles) == 0 {
		return nil
	}
	for _, r := range roles {
		if id.Role == r {
			return nil
		}
	}
	return ErrAccessDenied
}

type ctxKey struct{}

// WithIdentity attaches id to ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity attached to ctx, or anonymous.
func FromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(ctxKey{}).(Identity)
	return id
}
