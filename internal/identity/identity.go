package identity

import (
	"context"
	"errors"

	"github.com/ivanoskov/keloladuit/internal/model"
)

var (
	ErrNoUser             = errors.New("no authenticated user")
	ErrInvalidToken       = errors.New("invalid token")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Identity answers who the current user is
type Identity interface {
	CurrentUser(ctx context.Context) (*model.User, error)
}

// Authenticator resolves a bearer token into a user
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// Accounts creates and removes user accounts
type Accounts interface {
	CreateUser(ctx context.Context, email, password, displayName string) (*model.User, error)
	DeleteUser(ctx context.Context, uid string) error
}

type ctxKey struct{}

// WithUser returns a context carrying u
func WithUser(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// FromContext returns the user stored by WithUser
func FromContext(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(ctxKey{}).(*model.User)
	return u, ok && u != nil
}

// ContextIdentity reads the user a presentation layer placed in the context
type ContextIdentity struct{}

func (ContextIdentity) CurrentUser(ctx context.Context) (*model.User, error) {
	if u, ok := FromContext(ctx); ok {
		return u, nil
	}
	return nil, ErrNoUser
}

// StaticIdentity always reports the same user. Used for local development.
type StaticIdentity struct {
	User *model.User
}

func (s StaticIdentity) CurrentUser(context.Context) (*model.User, error) {
	if s.User == nil {
		return nil, ErrNoUser
	}
	return s.User, nil
}

// Authenticate lets a static identity stand in for token auth
func (s StaticIdentity) Authenticate(ctx context.Context, _ string) (*model.User, error) {
	return s.CurrentUser(ctx)
}

// DevUser is the user local development runs as
func DevUser() *model.User {
	return &model.User{
		ID:          "local-dev-user",
		Email:       "dev@localhost",
		DisplayName: "Local Dev User",
	}
}
