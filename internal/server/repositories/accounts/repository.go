// Package accounts persists accounts and their current refresh token.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

type Repository interface {
	// Create inserts a new account. A taken email or display name yields
	// common.ErrDuplicateEmail or common.ErrDuplicateDisplayName.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)

	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByID(ctx context.Context, id string) (*models.Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByDisplayName(ctx context.Context, displayName string) (bool, error)

	// Save overwrites every mutable column of an existing account.
	Save(ctx context.Context, account *models.Account) error

	// UpdateRefreshToken unconditionally replaces the stored refresh token.
	UpdateRefreshToken(ctx context.Context, id, token string) error

	// SwapRefreshToken replaces the stored refresh token with next only if it
	// still equals expected, and reports whether it did.
	SwapRefreshToken(ctx context.Context, id, expected, next string) (bool, error)

	UpdateSecretHash(ctx context.Context, id, hash string) error
}
