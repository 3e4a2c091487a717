// Package api exposes the ledger as a JSON HTTP API.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/ivanoskov/keloladuit/internal/charts"
	"github.com/ivanoskov/keloladuit/internal/identity"
	"github.com/ivanoskov/keloladuit/internal/logger"
	"github.com/ivanoskov/keloladuit/internal/model"
	"github.com/ivanoskov/keloladuit/internal/service"
)

// SignInFunc exchanges credentials for a bearer token
type SignInFunc func(ctx context.Context, email, password string) (string, *model.User, error)

type Deps struct {
	Tracker *service.Tracker
	Auth    identity.Authenticator
	// SignIn enables POST /api/login. Firebase clients sign in on their own.
	SignIn SignInFunc
	// DevUser serves requests without a bearer token
	DevUser  *model.User
	Gatherer prometheus.Gatherer
	Logger   *logger.Logger
}

type Options struct {
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
	RequestTimeout time.Duration
}

type handler struct {
	tracker *service.Tracker
	signIn  SignInFunc
	charts  *charts.ChartGenerator
	log     *logger.Logger
}

func NewRouter(deps Deps, opts Options) http.Handler {
	log := deps.Logger
	if log == nil {
		log = logger.Discard()
	}
	log = log.WithComponent("api")
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 15 * time.Second
	}
	if opts.RateLimitRPS <= 0 {
		opts.RateLimitRPS = 10
	}

	h := &handler{
		tracker: deps.Tracker,
		signIn:  deps.SignIn,
		charts:  charts.NewChartGenerator(),
		log:     log,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Use(newIPLimiter(opts.RateLimitRPS, opts.RateLimitBurst).middleware)
		r.Use(middleware.Timeout(opts.RequestTimeout))

		r.Post("/register", h.register)
		if h.signIn != nil {
			r.Post("/login", h.login)
		}

		// Protected routes
		r.With(authMiddleware(deps.Auth, deps.DevUser, log)).Group(func(r chi.Router) {
			r.Get("/dashboard", h.dashboard)
			r.Post("/reload", h.reload)
			r.Post("/transactions", h.createTransaction)
			r.Delete("/transactions/{id}", h.deleteTransaction)
			r.Get("/history", h.history)
			r.Get("/months/{month}", h.month)
			r.Get("/months/{month}/chart.png", h.monthChartImage)
			r.Get("/chart", h.chart)
			r.Get("/chart.png", h.chartImage)
			r.Get("/profile", h.profile)
			r.Get("/export", h.export)
			r.Delete("/account", h.deleteAccount)
		})
	})

	c := cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	})
	return c.Handler(r)
}
