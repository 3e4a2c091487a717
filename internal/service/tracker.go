package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"
	"golang.org/x/sync/singleflight"

	"github.com/ivanoskov/keloladuit/internal/identity"
	"github.com/ivanoskov/keloladuit/internal/ledger"
	"github.com/ivanoskov/keloladuit/internal/logger"
	"github.com/ivanoskov/keloladuit/internal/model"
	"github.com/ivanoskov/keloladuit/internal/repository"
	"github.com/ivanoskov/keloladuit/internal/state"
	"github.com/ivanoskov/keloladuit/internal/validation"
)

// ApplyPolicy decides how local changes relate to store calls
type ApplyPolicy string

const (
	// PolicyEager applies locally first and keeps the change if the store fails
	PolicyEager ApplyPolicy = "eager"
	// PolicyConfirm applies locally only after the store succeeded
	PolicyConfirm ApplyPolicy = "confirm"
)

const (
	defaultSessionTTL  = 30 * time.Minute
	defaultMaxSessions = 10000
)

type Options struct {
	Policy         ApplyPolicy
	ResetEnabled   bool
	StrictDates    bool
	Thresholds     ledger.HealthThresholds
	TrailingPoints int
	SessionTTL     time.Duration
	// MaxSessions caps the number of open sessions kept in memory
	MaxSessions    int
	Clock          func() time.Time
}

// DefaultOptions mirrors the behaviour of the web app
func DefaultOptions() Options {
	return Options{
		Policy:         PolicyEager,
		ResetEnabled:   true,
		Thresholds:     ledger.DefaultThresholds(),
		TrailingPoints: ledger.DefaultTrailingPoints,
		SessionTTL:     defaultSessionTTL,
		MaxSessions:    defaultMaxSessions,
		Clock:          time.Now,
	}
}

// Tracker opens and caches per-user sessions over a shared store
type Tracker struct {
	repo      repository.Repository
	state     state.Store
	accounts  identity.Accounts
	log       *logger.Logger
	metrics   MetricsRecorder
	validator *validation.Validator
	opts      Options

	sessions *ristretto.Cache
	opening  singleflight.Group
}

type Deps struct {
	Repo     repository.Repository
	State    state.Store
	Accounts identity.Accounts // optional
	Logger   *logger.Logger
	Metrics  MetricsRecorder
}

func NewTracker(deps Deps, opts Options) (*Tracker, error) {
	if deps.Repo == nil {
		return nil, errors.New("tracker needs a repository")
	}
	if deps.State == nil {
		deps.State = state.NewMemoryStore()
	}
	if deps.Logger == nil {
		deps.Logger = logger.Discard()
	}
	if deps.Metrics == nil {
		deps.Metrics = NoopMetrics{}
	}
	if opts.Policy == "" {
		opts.Policy = PolicyEager
	}
	if opts.TrailingPoints < 1 {
		opts.TrailingPoints = ledger.DefaultTrailingPoints
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = defaultSessionTTL
	}
	if opts.MaxSessions < 1 {
		opts.MaxSessions = defaultMaxSessions
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	// every session costs 1, so MaxCost counts sessions
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        int64(opts.MaxSessions) * 10,
		MaxCost:            int64(opts.MaxSessions),
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create session cache: %w", err)
	}

	return &Tracker{
		repo:      deps.Repo,
		state:     deps.State,
		accounts:  deps.Accounts,
		log:       deps.Logger.WithComponent("service"),
		metrics:   deps.Metrics,
		validator: validation.Default(),
		opts:      opts,
		sessions:  cache,
	}, nil
}

// Close releases the session cache
func (t *Tracker) Close() {
	t.sessions.Close()
}

// Session returns the user's open session, opening it on first use
func (t *Tracker) Session(ctx context.Context, user *model.User) (*Session, error) {
	if user == nil || user.ID == "" {
		return nil, identity.ErrNoUser
	}
	if v, ok := t.sessions.Get(user.ID); ok {
		s := v.(*Session)
		s.setUser(user)
		return s, nil
	}

	v, err, _ := t.opening.Do(user.ID, func() (any, error) {
		s, err := t.open(ctx, user)
		if err != nil {
			return nil, err
		}
		if !t.sessions.SetWithTTL(user.ID, s, 1, t.opts.SessionTTL) {
			t.log.WarnContext(ctx, "session not cached", "user_id", user.ID)
		}
		t.sessions.Wait()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

// SessionFor resolves the current user through id and returns their session
func (t *Tracker) SessionFor(ctx context.Context, id identity.Identity) (*Session, error) {
	user, err := id.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return t.Session(ctx, user)
}

func (t *Tracker) open(ctx context.Context, user *model.User) (*Session, error) {
	log := t.log.With("user_id", user.ID)
	s := &Session{
		tracker: t,
		user:    user,
		log:     log,
		agg:     t.newAggregator(),
	}

	if err := s.Reload(ctx); err != nil {
		return nil, err
	}

	if t.opts.ResetEnabled {
		if err := s.applyReset(ctx); err != nil {
			log.WarnContext(ctx, "monthly reset marker unavailable", "error", err)
		}
	}

	if err := t.cacheProfile(ctx, user, ""); err != nil {
		log.WarnContext(ctx, "failed to cache profile", "error", err)
	}

	t.metrics.SessionOpened()
	log.InfoContext(ctx, "session opened", "transactions", s.agg.Len())
	return s, nil
}

func (t *Tracker) newAggregator() *ledger.Aggregator {
	return ledger.New(
		ledger.WithClock(t.opts.Clock),
		ledger.WithStrictDates(t.opts.StrictDates),
		ledger.WithThresholds(t.opts.Thresholds),
	)
}

// cacheProfile stores the minimal profile, keeping a full name saved earlier
func (t *Tracker) cacheProfile(ctx context.Context, user *model.User, fullName string) error {
	p := model.CachedProfile{
		UID:         user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		FullName:    fullName,
		PhotoURL:    user.PhotoURL,
	}
	if p.FullName == "" {
		prev, err := state.CachedProfile(ctx, t.state, user.ID)
		if err != nil {
			return err
		}
		if prev != nil {
			p.FullName = prev.FullName
			if p.PhotoURL == "" {
				p.PhotoURL = prev.PhotoURL
			}
		}
	}
	return state.SaveProfile(ctx, t.state, p)
}

// Register creates an account and caches its profile with the full name
func (t *Tracker) Register(ctx context.Context, reg validation.Registration) (*model.User, error) {
	reg.FullName = strings.TrimSpace(reg.FullName)
	reg.Email = strings.TrimSpace(reg.Email)
	if err := t.validator.Struct(reg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if t.accounts == nil {
		return nil, ErrRegistrationDisabled
	}

	user, err := t.accounts.CreateUser(ctx, reg.Email, reg.Password, reg.FullName)
	if err != nil {
		return nil, err
	}
	if err := t.cacheProfile(ctx, user, reg.FullName); err != nil {
		t.log.WarnContext(ctx, "failed to cache profile", "user_id", user.ID, "error", err)
	}
	t.log.InfoContext(ctx, "account registered", "user_id", user.ID)
	return user, nil
}

func (t *Tracker) forget(uid string) {
	t.sessions.Del(uid)
	t.sessions.Wait()
}

func (t *Tracker) remoteFailure(ctx context.Context, log *logger.Logger, op string, err error) error {
	t.metrics.RemoteFailure(op)
	log.ErrorContext(ctx, "transaction store call failed", "op", op, "error", err)
	return fmt.Errorf("%w: %s: %w", ErrRemote, op, err)
}
