// Package services contains server-side business logic. UserService covers
// registration, login, refresh-token rotation and resolving the principal
// behind an access token.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/ratelimit"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
)

// SecretHasher is satisfied by *credentials.Argon2.
type SecretHasher interface {
	Hash(secret string) (string, error)
	Verify(secret, encoded string) (bool, error)
	NeedsRehash(encoded string) bool
	DummyVerify(secret string)
}

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	codec       *auth.Codec
	issuer      *auth.Issuer
	hasher      SecretHasher
	limiter     ratelimit.Limiter
	log         logging.Logger
}

type Option func(*UserService)

// WithLimiter enables login throttling.
func WithLimiter(l ratelimit.Limiter) Option {
	return func(s *UserService) { s.limiter = l }
}

func WithLogger(l logging.Logger) Option {
	return func(s *UserService) { s.log = l }
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, codec *auth.Codec, issuer *auth.Issuer, hasher SecretHasher, opts ...Option) *UserService {
	s := &UserService{
		db:          db,
		repomanager: m,
		codec:       codec,
		issuer:      issuer,
		hasher:      hasher,
		limiter:     ratelimit.NopLimiter{},
		log:         logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("module", "services/user")
	return s
}

// Register creates a LOCAL account with role USER. Both the email and the
// display name must be unused; conflicts come back as *DuplicateError.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.Account, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	repo := s.repomanager.Accounts(s.db)

	taken, err := repo.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	if taken {
		return nil, duplicateEmail(in.Email)
	}

	taken, err = repo.ExistsByDisplayName(ctx, in.DisplayName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	if taken {
		return nil, duplicateDisplayName(in.DisplayName)
	}

	hash, err := s.hasher.Hash(in.Secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	account, err := repo.Create(ctx, &models.Account{
		Email:       in.Email,
		DisplayName: in.DisplayName,
		SecretHash:  hash,
		Role:        models.RoleUser,
		Provider:    models.ProviderLocal,
	})
	switch {
	case errors.Is(err, common.ErrDuplicateEmail):
		return nil, duplicateEmail(in.Email)
	case errors.Is(err, common.ErrDuplicateDisplayName):
		return nil, duplicateDisplayName(in.DisplayName)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	s.log.Info(ctx, "account registered", "account_id", account.ID)
	return account, nil
}

// Login checks email and secret and, on success, issues a token pair whose
// refresh token replaces whatever the account held before. Every credential
// failure wraps common.ErrInvalidCredentials; the wrapped text names the
// reason for server-side logs only.
func (s *UserService) Login(ctx context.Context, email, secret string) (*auth.TokenPair, error) {
	if email == "" || secret == "" {
		s.hasher.DummyVerify(secret)
		return nil, fmt.Errorf("%w: blank email or secret", common.ErrInvalidCredentials)
	}

	if err := s.limiter.Check(ctx, email); err != nil {
		if errors.Is(err, common.ErrRateLimited) {
			return nil, err
		}
		s.log.Warn(ctx, "login throttle check failed, continuing", "error", err)
	}

	account, err := s.repomanager.Accounts(s.db).FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.DummyVerify(secret)
			return nil, s.loginFailed(ctx, email, "unknown account")
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	if account.Provider != models.ProviderLocal || account.SecretHash == "" {
		s.hasher.DummyVerify(secret)
		return nil, s.loginFailed(ctx, email, "account has no local secret")
	}

	ok, err := s.hasher.Verify(secret, account.SecretHash)
	if err != nil {
		s.log.Error(ctx, "stored secret hash is unreadable", "account_id", account.ID, "error", err)
		return nil, s.loginFailed(ctx, email, "unreadable secret hash")
	}
	if !ok {
		return nil, s.loginFailed(ctx, email, "secret mismatch")
	}

	if err := s.limiter.Reset(ctx, email); err != nil {
		s.log.Warn(ctx, "login throttle reset failed", "error", err)
	}
	s.upgradeHash(ctx, account, secret)

	pair, err := s.issuer.IssuePair(account)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	if err := s.repomanager.Accounts(s.db).UpdateRefreshToken(ctx, account.ID, pair.RefreshToken); err != nil {
		return nil, fmt.Errorf("%w: store refresh token: %v", common.ErrorInternal, err)
	}

	return pair, nil
}

func (s *UserService) loginFailed(ctx context.Context, email, reason string) error {
	if err := s.limiter.RecordFailure(ctx, email); err != nil {
		s.log.Warn(ctx, "login throttle update failed", "error", err)
	}
	return fmt.Errorf("%w: %s", common.ErrInvalidCredentials, reason)
}

// upgradeHash re-hashes a legacy or weaker stored secret. Failures only log:
// the login itself already succeeded.
func (s *UserService) upgradeHash(ctx context.Context, account *models.Account, secret string) {
	if !s.hasher.NeedsRehash(account.SecretHash) {
		return
	}
	hash, err := s.hasher.Hash(secret)
	if err != nil {
		s.log.Warn(ctx, "rehash failed", "account_id", account.ID, "error", err)
		return
	}
	if err := s.repomanager.Accounts(s.db).UpdateSecretHash(ctx, account.ID, hash); err != nil {
		s.log.Warn(ctx, "storing upgraded hash failed", "account_id", account.ID, "error", err)
		return
	}
	account.SecretHash = hash
}

// Reissue rotates a refresh token. The presented token must decode, belong
// to an existing account and equal the token stored for it; the stored
// token is then swapped atomically for a new one. A concurrent reissue with
// the same token loses the swap and gets common.ErrTokenMismatch. Nothing
// is written on any failure.
func (s *UserService) Reissue(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	claims, err := s.codec.DecodeRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	var pair *auth.TokenPair
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)

		account, err := repo.FindByID(ctx, claims.Subject)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrAccountNotFound
			}
			return fmt.Errorf("%w: %v", common.ErrorInternal, err)
		}

		if subtle.ConstantTimeCompare([]byte(account.RefreshToken), []byte(refreshToken)) != 1 {
			return common.ErrTokenMismatch
		}

		next, err := s.issuer.IssuePair(account)
		if err != nil {
			return fmt.Errorf("%w: %v", common.ErrorInternal, err)
		}

		swapped, err := repo.SwapRefreshToken(ctx, account.ID, refreshToken, next.RefreshToken)
		if err != nil {
			return fmt.Errorf("%w: %v", common.ErrorInternal, err)
		}
		if !swapped {
			return common.ErrTokenMismatch
		}

		pair = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	return pair, nil
}

// Authenticate resolves an access token to the account it was issued for.
// The account is reloaded so role changes take effect immediately.
func (s *UserService) Authenticate(ctx context.Context, accessToken string) (auth.Authenticated, error) {
	claims, err := s.codec.DecodeAccess(accessToken)
	if err != nil {
		return auth.Authenticated{}, err
	}

	p, err := s.LoadPrincipal(ctx, claims.Subject)
	if err != nil {
		return auth.Authenticated{}, err
	}
	return auth.NewAuthenticated(*p), nil
}

// LoadPrincipal loads the principal for an account id.
func (s *UserService) LoadPrincipal(ctx context.Context, id string) (*auth.Principal, error) {
	account, err := s.repomanager.Accounts(s.db).FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrAccountNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return &auth.Principal{
		ID:          account.ID,
		Email:       account.Email,
		DisplayName: account.DisplayName,
		Role:        account.Role,
	}, nil
}

func (s *UserService) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	return s.find(ctx, func(ctx context.Context) (*models.Account, error) {
		return s.repomanager.Accounts(s.db).FindByID(ctx, id)
	})
}

func (s *UserService) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	return s.find(ctx, func(ctx context.Context) (*models.Account, error) {
		return s.repomanager.Accounts(s.db).FindByEmail(ctx, email)
	})
}

func (s *UserService) find(ctx context.Context, f func(context.Context) (*models.Account, error)) (*models.Account, error) {
	account, err := f(ctx)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrAccountNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return account, nil
}
