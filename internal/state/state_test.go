package state

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanoskov/keloladuit/internal/model"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	sqliteStore, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqliteStore.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqliteStore,
	}
}

func TestStoreContract(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := s.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Set(ctx, "k", "v1"))
			require.NoError(t, s.Set(ctx, "k", "v2"))
			v, err := s.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "v2", v)

			require.NoError(t, s.Delete(ctx, "k"))
			require.NoError(t, s.Delete(ctx, "k"))
			_, err = s.Get(ctx, "k")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestHelpers(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			month, err := LastResetMonth(ctx, s, "u1")
			require.NoError(t, err)
			assert.Empty(t, month)
			require.NoError(t, SaveLastResetMonth(ctx, s, "u1", "2024-03"))
			month, err = LastResetMonth(ctx, s, "u1")
			require.NoError(t, err)
			assert.Equal(t, "2024-03", month)

			p, err := CachedProfile(ctx, s, "u1")
			require.NoError(t, err)
			assert.Nil(t, p)
			require.NoError(t, SaveProfile(ctx, s, model.CachedProfile{UID: "u1", Email: "a@b.co", FullName: "Budi Santoso"}))
			p, err = CachedProfile(ctx, s, "u1")
			require.NoError(t, err)
			require.NotNil(t, p)
			assert.Equal(t, "Budi Santoso", p.FullName)

			require.NoError(t, Forget(ctx, s, "u1"))
			month, _ = LastResetMonth(ctx, s, "u1")
			assert.Empty(t, month)
			p, _ = CachedProfile(ctx, s, "u1")
			assert.Nil(t, p)
		})
	}
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	first, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, SaveLastResetMonth(context.Background(), first, "u1", "2024-04"))
	require.NoError(t, first.Close())

	second, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer second.Close()
	month, err := LastResetMonth(context.Background(), second, "u1")
	require.NoError(t, err)
	assert.Equal(t, "2024-04", month)
}
