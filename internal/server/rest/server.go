// Package rest exposes the auth API over HTTP. Requests pass through an
// ordered authentication pipeline before reaching the chi routes.
package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	LoginPath   = "/api/auth/login"
	ReissuePath = "/api/auth/reissue"
)

// UserService is the part of services.UserService the HTTP layer needs.
type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.Account, error)
	Login(ctx context.Context, email, secret string) (*auth.TokenPair, error)
	Reissue(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
	Authenticate(ctx context.Context, accessToken string) (auth.Authenticated, error)
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
}

// Options tune the HTTP server.
type Options struct {
	Address string
	// RefreshTTL becomes the refresh cookie Max-Age.
	RefreshTTL      time.Duration
	CookieSecure    bool
	ShutdownTimeout time.Duration
}

type Server struct {
	opts   Options
	users  UserService
	logger logging.Logger
	now    func() time.Time
}

func NewServer(opts Options, l logging.Logger, users UserService) *Server {
	return &Server{
		opts:   opts,
		users:  users,
		logger: l.With("module", "rest_server"),
		now:    time.Now,
	}
}

// Handler builds the router with the full middleware stack.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(logging.RequestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(s.Pipeline().Middleware)

	r.Post("/api/auth/register", s.handleRegister)
	r.Post(ReissuePath, s.handleReissue)

	r.Group(func(r chi.Router) {
		r.Use(s.RequireAuthenticated)
		r.Get("/api/users/me", s.handleMe)

		r.With(s.RequireRole(models.RoleAdmin)).Get("/api/admin/accounts/{email}", s.handleAdminAccount)
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.opts.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
