package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
)

const accountColumns = `id, email, display_name, secret_hash, role, provider, provider_user_id, refresh_token`

// SQLRepository implements Repository on top of database/sql. Queries are
// written with $N placeholders and rebound for the configured dialect.
type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
	now     func() time.Time
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect, now: time.Now}
}

func (r *SQLRepository) q(query string) string {
	return r.dialect.Rebind(query)
}

func (r *SQLRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	if account.ID == "" {
		id, err := uuid.NewRandom()
		if err != nil {
			return nil, fmt.Errorf("generate id: %w", err)
		}
		account.ID = id.String()
	}
	if account.Role == "" {
		account.Role = models.RoleUser
	}
	if account.Provider == "" {
		account.Provider = models.ProviderLocal
	}

	now := r.now().UTC()

	query :=
		`INSERT INTO accounts (id, email, display_name, secret_hash, role, provider, provider_user_id, refresh_token, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, r.q(query),
		account.ID, account.Email, account.DisplayName, account.SecretHash,
		string(account.Role), string(account.Provider),
		nullable(account.ProviderUserID), nullable(account.RefreshToken),
		now, now)
	if err != nil {
		return nil, mapWriteError(err)
	}

	account.CreatedAt = now
	account.UpdatedAt = now
	return account, nil
}

func (r *SQLRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return r.findOne(ctx, query, email)
}

func (r *SQLRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *SQLRepository) findOne(ctx context.Context, query string, arg any) (*models.Account, error) {
	var (
		a              models.Account
		role, provider string
		providerUserID sql.NullString
		refreshToken   sql.NullString
	)

	err := r.db.QueryRowContext(ctx, r.q(query), arg).Scan(
		&a.ID, &a.Email, &a.DisplayName, &a.SecretHash,
		&role, &provider, &providerUserID, &refreshToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	a.Role = models.Role(role)
	a.Provider = models.Provider(provider)
	a.ProviderUserID = providerUserID.String
	a.RefreshToken = refreshToken.String

	return &a, nil
}

func (r *SQLRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1)`, email)
}

func (r *SQLRepository) ExistsByDisplayName(ctx context.Context, displayName string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE display_name = $1)`, displayName)
}

func (r *SQLRepository) exists(ctx context.Context, query string, arg any) (bool, error) {
	var ok bool
	if err := r.db.QueryRowContext(ctx, r.q(query), arg).Scan(&ok); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}

func (r *SQLRepository) Save(ctx context.Context, account *models.Account) error {
	now := r.now().UTC()

	query :=
		`UPDATE accounts
		 SET email = $1, display_name = $2, secret_hash = $3, role = $4, provider = $5,
		     provider_user_id = $6, refresh_token = $7, updated_at = $8
		 WHERE id = $9`

	res, err := r.db.ExecContext(ctx, r.q(query),
		account.Email, account.DisplayName, account.SecretHash,
		string(account.Role), string(account.Provider),
		nullable(account.ProviderUserID), nullable(account.RefreshToken),
		now, account.ID)
	if err != nil {
		return mapWriteError(err)
	}
	if err := expectOneRow(res); err != nil {
		return err
	}

	account.UpdatedAt = now
	return nil
}

func (r *SQLRepository) UpdateRefreshToken(ctx context.Context, id, token string) error {
	query := `UPDATE accounts SET refresh_token = $1, updated_at = $2 WHERE id = $3`

	res, err := r.db.ExecContext(ctx, r.q(query), nullable(token), r.now().UTC(), id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func (r *SQLRepository) SwapRefreshToken(ctx context.Context, id, expected, next string) (bool, error) {
	if expected == "" {
		return false, nil
	}

	query := `UPDATE accounts SET refresh_token = $1, updated_at = $2 WHERE id = $3 AND refresh_token = $4`

	res, err := r.db.ExecContext(ctx, r.q(query), nullable(next), r.now().UTC(), id, expected)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}

func (r *SQLRepository) UpdateSecretHash(ctx context.Context, id, hash string) error {
	query := `UPDATE accounts SET secret_hash = $1, updated_at = $2 WHERE id = $3`

	res, err := r.db.ExecContext(ctx, r.q(query), hash, r.now().UTC(), id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func mapWriteError(err error) error {
	if constraint, ok := dbx.UniqueViolation(err); ok {
		switch constraint {
		case "accounts_display_name_key", "accounts.display_name":
			return fmt.Errorf("%w: %v", common.ErrDuplicateDisplayName, err)
		case "accounts_email_key", "accounts.email":
			return fmt.Errorf("%w: %v", common.ErrDuplicateEmail, err)
		}
	}
	return fmt.Errorf("db error: %w", err)
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
