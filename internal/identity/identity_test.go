package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanoskov/keloladuit/internal/model"
)

func TestContextIdentity(t *testing.T) {
	ctx := context.Background()
	_, err := ContextIdentity{}.CurrentUser(ctx)
	assert.ErrorIs(t, err, ErrNoUser)

	u := &model.User{ID: "u1"}
	got, err := ContextIdentity{}.CurrentUser(WithUser(ctx, u))
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)

	_, ok := FromContext(WithUser(ctx, nil))
	assert.False(t, ok)
}

func TestStaticIdentity(t *testing.T) {
	_, err := StaticIdentity{}.CurrentUser(context.Background())
	assert.ErrorIs(t, err, ErrNoUser)

	u, err := StaticIdentity{User: DevUser()}.Authenticate(context.Background(), "ignored")
	require.NoError(t, err)
	assert.Equal(t, "local-dev-user", u.ID)
}

func TestLocalAccounts(t *testing.T) {
	ctx := context.Background()
	accounts := NewLocalAccounts("test-secret")

	created, err := accounts.CreateUser(ctx, "Budi@Example.com", "rahasia123", "Budi")
	require.NoError(t, err)
	assert.Equal(t, "budi@example.com", created.Email)
	assert.False(t, created.CreatedAt.IsZero())

	_, err = accounts.CreateUser(ctx, "budi@example.com", "another123", "Budi 2")
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, _, err = accounts.SignIn(ctx, "budi@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	token, signedIn, err := accounts.SignIn(ctx, "budi@example.com", "rahasia123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, signedIn.ID)

	u, err := accounts.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)

	_, err = accounts.Authenticate(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewLocalAccounts("other-secret")
	_, err = other.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	require.NoError(t, accounts.DeleteUser(ctx, created.ID))
	_, err = accounts.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrNoUser)
}

func TestLocalAccountsExpiredToken(t *testing.T) {
	ctx := context.Background()
	accounts := NewLocalAccounts("test-secret")
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	accounts.now = func() time.Time { return start }

	_, err := accounts.CreateUser(ctx, "siti@example.com", "rahasia123", "Siti")
	require.NoError(t, err)
	token, _, err := accounts.SignIn(ctx, "siti@example.com", "rahasia123")
	require.NoError(t, err)

	accounts.now = func() time.Time { return start.Add(48 * time.Hour) }
	_, err = accounts.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
