// Package server wires configuration, storage, token handling and the HTTP
// API together and runs them until the process is signalled to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/credentials"
	"github.com/dmitrijs2005/gophauth/internal/server/ratelimit"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/rest"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/redis/go-redis/v9"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	redis       *redis.Client
	userService *services.UserService
	issuer      *auth.Issuer
}

// NewApp opens storage, applies migrations and builds the services. The
// caller owns the returned App and must call Close.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.NewJSONLogger(os.Stdout, level)

	if c.UsesDefaultSecret() {
		logger.Warn(ctx, "using the built-in development secret key; set GOPHAUTH_SECRET_KEY")
	}

	dialect, err := dbx.ParseDialect(c.DatabaseDriver)
	if err != nil {
		return nil, err
	}

	db, err := repomanager.Open(ctx, dialect, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db}

	if err := app.init(ctx, dialect); err != nil {
		_ = app.Close()
		return nil, err
	}

	return app, nil
}

func (app *App) init(ctx context.Context, dialect dbx.Dialect) error {
	rm, err := repomanager.NewRepositoryManager(dialect)
	if err != nil {
		return err
	}
	if err := rm.RunMigrations(ctx, app.db); err != nil {
		return err
	}

	key, err := auth.NewSigningKey(app.config.SecretKey)
	if err != nil {
		return err
	}
	codec := auth.NewCodec(key)
	app.issuer = auth.NewIssuer(codec, app.config.AccessTokenValidity)

	hasher, err := credentials.NewArgon2(credentials.DefaultParams)
	if err != nil {
		return err
	}

	app.userService = services.NewUserService(app.db, rm, codec, app.issuer, hasher,
		services.WithLogger(app.logger),
		services.WithLimiter(app.newLimiter(ctx)),
	)

	app.logger.Info(ctx, "app initialized",
		"driver", string(dialect), "algorithm", key.Algorithm(), "access_ttl", app.issuer.AccessTTL().String())

	return nil
}

func (app *App) newLimiter(ctx context.Context) ratelimit.Limiter {
	if app.config.RedisAddr == "" || app.config.MaxLoginAttempts == 0 {
		app.logger.Info(ctx, "login throttling disabled")
		return ratelimit.NopLimiter{}
	}
	app.redis = redis.NewClient(&redis.Options{Addr: app.config.RedisAddr})
	return ratelimit.NewRedisLimiter(app.redis, app.config.MaxLoginAttempts, app.config.LoginCooldown)
}

// Close releases the database and Redis connections.
func (app *App) Close() error {
	var err error
	if app.redis != nil {
		err = app.redis.Close()
	}
	if cerr := app.db.Close(); err == nil {
		err = cerr
	}
	return err
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := rest.NewServer(rest.Options{
		Address:         app.config.ListenAddr,
		RefreshTTL:      app.issuer.RefreshTTL(),
		CookieSecure:    app.config.CookieSecure,
		ShutdownTimeout: app.config.ShutdownTimeout,
	}, app.logger, app.userService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until a termination signal arrives or the HTTP server fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(ctx, "App stopped")
}
