package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
)

// AdminLookup finds admin accounts by username.
type AdminLookup interface {
	FindByUsername(ctx context.Context, username string) (*models.Admin, error)
}

// Authenticator checks credentials and manages the session lifecycle.
type Authenticator struct {
	admins AdminLookup
	store  Store
	ttl    time.Duration
	now    func() time.Time
}

func NewAuthenticator(admins AdminLookup, store Store, ttl time.Duration) *Authenticator {
	return &Authenticator{admins: admins, store: store, ttl: ttl, now: time.Now}
}

// Login verifies the credentials and starts a new session. previousID, when set, is destroyed
// first so a login never reuses an identifier the client already held.
func (a *Authenticator) Login(ctx context.Context, username, password, previousID string) (*models.Session, error) {
	admin, err := a.admins.FindByUsername(ctx, username)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "admin", err)
	}
	if admin == nil {
		return nil, errs.NewAdminNotFoundError(username)
	}

	ok, err := VerifyPassword(password, admin.Password)
	if err != nil {
		return nil, errs.NewInternalErrorWithCause("verify password", err)
	}
	if !ok {
		return nil, errs.NewWrongCredentialsError()
	}

	if previousID != "" {
		if err := a.store.Destroy(ctx, previousID); err != nil {
			return nil, fmt.Errorf("destroy previous session: %w", err)
		}
	}

	id, err := NewToken(32)
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}
	now := a.now()
	session := &models.Session{
		ID:        id,
		AdminID:   admin.ID,
		Username:  admin.Username,
		LoginAt:   now,
		ExpiresAt: now.Add(a.ttl),
	}
	if err := a.store.Set(ctx, session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return session, nil
}

// Session returns the live session for id, or nil.
func (a *Authenticator) Session(ctx context.Context, id string) (*models.Session, error) {
	if id == "" {
		return nil, nil
	}
	return a.store.Get(ctx, id)
}

// Rename updates the username held by a live session after an account rename.
func (a *Authenticator) Rename(ctx context.Context, session *models.Session, username string) error {
	updated := *session
	updated.Username = username
	return a.store.Set(ctx, &updated)
}

func (a *Authenticator) Logout(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return a.store.Destroy(ctx, id)
}
