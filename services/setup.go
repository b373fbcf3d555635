package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-backend/auth"
	"github.com/rpupo63/portfolio-backend/models"
)

const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
	DefaultAdminEmail    = "admin@example.com"
)

// AdminStore is the part of the admin repository the bootstrap needs.
type AdminStore interface {
	Count(ctx context.Context) (int64, error)
	Add(ctx context.Context, admin *models.Admin) error
}

// EnsureDefaultAdmin creates the default admin account when no admin exists yet.
//
// Returns:
//   - bool: true when the account was created by this call
//   - error: a failed count, hash or insert
//
// The default credentials are public, so a warning is logged every time they are created.
func EnsureDefaultAdmin(ctx context.Context, admins AdminStore) (bool, error) {
	n, err := admins.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count admins: %w", err)
	}
	if n > 0 {
		log.Debug().Int64("admins", n).Msg("Admin account already exists, skipping bootstrap")
		return false, nil
	}

	hash, err := auth.HashPassword(DefaultAdminPassword)
	if err != nil {
		return false, fmt.Errorf("hash default password: %w", err)
	}
	email := DefaultAdminEmail
	admin := &models.Admin{
		Username: DefaultAdminUsername,
		Password: hash,
		Email:    &email,
	}
	if err := admins.Add(ctx, admin); err != nil {
		return false, fmt.Errorf("create default admin: %w", err)
	}

	log.Warn().
		Str("username", DefaultAdminUsername).
		Msg("Created default admin account. Change the password from the dashboard settings right away")
	return true, nil
}
