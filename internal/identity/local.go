package identity

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ivanoskov/keloladuit/internal/model"
)

const tokenTTL = 24 * time.Hour

type account struct {
	user         model.User
	passwordHash []byte
}

// LocalAccounts is an in-memory account registry issuing HS256 tokens. It
// stands in for Firebase Auth during local development.
type LocalAccounts struct {
	mu      sync.RWMutex
	byEmail map[string]*account
	byID    map[string]*account
	secret  []byte
	now     func() time.Time
}

func NewLocalAccounts(secret string) *LocalAccounts {
	return &LocalAccounts{
		byEmail: make(map[string]*account),
		byID:    make(map[string]*account),
		secret:  []byte(secret),
		now:     time.Now,
	}
}

func (l *LocalAccounts) CreateUser(ctx context.Context, email, password, displayName string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.byEmail[email]; exists {
		return nil, ErrEmailTaken
	}
	acc := &account{
		user: model.User{
			ID:          uuid.NewString(),
			Email:       email,
			DisplayName: displayName,
			CreatedAt:   l.now(),
		},
		passwordHash: hash,
	}
	l.byEmail[email] = acc
	l.byID[acc.user.ID] = acc
	u := acc.user
	return &u, nil
}

// SignIn checks the password and returns a signed token for the user
func (l *LocalAccounts) SignIn(ctx context.Context, email, password string) (string, *model.User, error) {
	l.mu.RLock()
	acc, ok := l.byEmail[strings.ToLower(strings.TrimSpace(email))]
	l.mu.RUnlock()
	if !ok {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := l.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   acc.user.ID,
		"email": acc.user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(tokenTTL).Unix(),
	})
	signed, err := token.SignedString(l.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	u := acc.user
	return signed, &u, nil
}

func (l *LocalAccounts) Authenticate(ctx context.Context, tokenString string) (*model.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("invalid signing method")
		}
		return l.secret, nil
	}, jwt.WithTimeFunc(l.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return nil, ErrInvalidToken
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	acc, ok := l.byID[sub]
	if !ok {
		return nil, ErrNoUser
	}
	u := acc.user
	return &u, nil
}

func (l *LocalAccounts) DeleteUser(ctx context.Context, uid string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if acc, ok := l.byID[uid]; ok {
		delete(l.byEmail, acc.user.Email)
		delete(l.byID, uid)
	}
	return nil
}
