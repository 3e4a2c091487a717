package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/ivanoskov/keloladuit/internal/model"
)

// ErrNotFound is returned by Get for unknown keys
var ErrNotFound = errors.New("state key not found")

// Store is a small persistent key-value store for per-user local state
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

func resetKey(uid string) string   { return "last_reset_month:" + uid }
func profileKey(uid string) string { return "keloladuit_user:" + uid }

// LastResetMonth returns the month of the last monthly reset, or "" if none
func LastResetMonth(ctx context.Context, s Store, uid string) (string, error) {
	v, err := s.Get(ctx, resetKey(uid))
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return v, err
}

func SaveLastResetMonth(ctx context.Context, s Store, uid, month string) error {
	return s.Set(ctx, resetKey(uid), month)
}

// CachedProfile returns the profile cached at sign-in, or nil if none
func CachedProfile(ctx context.Context, s Store, uid string) (*model.CachedProfile, error) {
	v, err := s.Get(ctx, profileKey(uid))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var p model.CachedProfile
	if err := json.Unmarshal([]byte(v), &p); err != nil {
		return nil, fmt.Errorf("decode cached profile: %w", err)
	}
	return &p, nil
}

func SaveProfile(ctx context.Context, s Store, p model.CachedProfile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode cached profile: %w", err)
	}
	return s.Set(ctx, profileKey(p.UID), string(data))
}

// Forget drops everything cached for uid
func Forget(ctx context.Context, s Store, uid string) error {
	return errors.Join(
		s.Delete(ctx, resetKey(uid)),
		s.Delete(ctx, profileKey(uid)),
	)
}

type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
