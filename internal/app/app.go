// Package app wires configuration into the ledger's collaborators. The
// server, the bot and the webhook function all start from here.
package app

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ivanoskov/keloladuit/internal/config"
	"github.com/ivanoskov/keloladuit/internal/identity"
	"github.com/ivanoskov/keloladuit/internal/ledger"
	"github.com/ivanoskov/keloladuit/internal/logger"
	"github.com/ivanoskov/keloladuit/internal/model"
	"github.com/ivanoskov/keloladuit/internal/repository"
	"github.com/ivanoskov/keloladuit/internal/service"
	"github.com/ivanoskov/keloladuit/internal/state"
)

type App struct {
	Config   *config.Config
	Logger   *logger.Logger
	Tracker  *service.Tracker
	Registry *prometheus.Registry

	// Auth verifies bearer tokens for the HTTP API
	Auth identity.Authenticator
	// Local is set in local auth mode; it also signs users in
	Local *identity.LocalAccounts
	// DevUser answers unauthenticated API calls in local auth mode
	DevUser *model.User

	closers []func() error
}

// New builds every collaborator the configuration asks for. Call Close when
// done, also after an error.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	a := &App{
		Config:   cfg,
		Logger:   log,
		Registry: prometheus.NewRegistry(),
	}
	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var fbApp *firebase.App
	if cfg.DataBackend == config.BackendFirestore || cfg.AuthMode == config.AuthFirebase {
		var err error
		fbApp, err = identity.NewApp(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredsFile)
		if err != nil {
			return a, err
		}
	}

	repo, err := a.repository(ctx, fbApp)
	if err != nil {
		return a, err
	}
	store, err := a.stateStore()
	if err != nil {
		return a, err
	}

	var accounts identity.Accounts
	switch cfg.AuthMode {
	case config.AuthFirebase:
		fa, err := identity.NewFirebaseAuth(ctx, fbApp)
		if err != nil {
			return a, err
		}
		a.Auth, accounts = fa, fa
	default:
		a.Local = identity.NewLocalAccounts(cfg.JWTSecret)
		a.Auth, accounts = a.Local, a.Local
		a.DevUser = identity.DevUser()
	}

	tracker, err := service.NewTracker(service.Deps{
		Repo:     repo,
		State:    store,
		Accounts: accounts,
		Logger:   log,
		Metrics:  service.NewPrometheusMetrics(a.Registry),
	}, TrackerOptions(cfg))
	if err != nil {
		return a, err
	}
	a.Tracker = tracker
	a.closers = append(a.closers, func() error { tracker.Close(); return nil })

	log.Info("application initialized",
		"data_backend", cfg.DataBackend,
		"state_backend", cfg.StateBackend,
		"auth_mode", cfg.AuthMode,
		"apply_policy", cfg.ApplyPolicy,
	)
	return a, nil
}

// TrackerOptions maps the ledger settings of cfg onto tracker options
func TrackerOptions(cfg *config.Config) service.Options {
	opts := service.DefaultOptions()
	opts.Policy = service.ApplyPolicy(cfg.ApplyPolicy)
	opts.ResetEnabled = cfg.ResetEnabled
	opts.StrictDates = cfg.StrictDates
	opts.Thresholds = ledger.HealthThresholds{
		Critical: cfg.HealthCriticalPct,
		Low:      cfg.HealthLowPct,
		Stable:   cfg.HealthStablePct,
	}
	opts.TrailingPoints = cfg.TrailingPoints
	opts.MaxSessions = cfg.MaxSessions
	return opts
}

func (a *App) repository(ctx context.Context, fbApp *firebase.App) (repository.Repository, error) {
	cfg := a.Config
	switch cfg.DataBackend {
	case config.BackendSupabase:
		return repository.NewSupabaseRepository(cfg.SupabaseURL, cfg.SupabaseKey, a.Logger)
	case config.BackendFirestore:
		client, err := fbApp.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("error getting Firestore client: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		return repository.NewFirestoreRepository(client), nil
	case config.BackendPostgres:
		pool, err := repository.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error { pool.Close(); return nil })
		repo := repository.NewPostgresRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return repo, nil
	default:
		a.Logger.Warn("using in-memory transaction store, data is lost on restart")
		return repository.NewMemoryRepository(), nil
	}
}

func (a *App) stateStore() (state.Store, error) {
	if a.Config.StateBackend != config.StateSQLite {
		return state.NewMemoryStore(), nil
	}
	store, err := state.NewSQLiteStore(a.Config.StateDBPath)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store.Close)
	return store, nil
}

// Close releases collaborators in reverse order of creation
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
