package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
)

type fakeAdmins map[string]*models.Admin

func (f fakeAdmins) FindByUsername(_ context.Context, username string) (*models.Admin, error) {
	return f[username], nil
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("admin123")
	require.NoError(t, err)
	assert.NotEqual(t, "admin123", hash)

	ok, err := VerifyPassword("admin123", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = VerifyPassword("admin123", "not-a-hash")
	assert.Error(t, err)
}

func TestNewToken(t *testing.T) {
	a, err := NewToken(32)
	require.NoError(t, err)
	b, err := NewToken(32)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 43)

	_, err = NewToken(8)
	assert.Error(t, err)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, &models.Session{ID: "s1", AdminID: 1, ExpiresAt: now.Add(time.Hour)}))
	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(1), got.AdminID)

	now = now.Add(2 * time.Hour)
	got, err = store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 0, store.Len())
}

func TestCSRF(t *testing.T) {
	c := NewCSRF("secret", time.Hour)

	token, err := c.Issue("session-a")
	require.NoError(t, err)
	assert.NoError(t, c.Verify(token, "session-a"))
	assert.ErrorIs(t, c.Verify(token, "session-b"), ErrCSRFMismatch)
	assert.Error(t, c.Verify("", "session-a"))

	other := NewCSRF("another-secret", time.Hour)
	assert.Error(t, other.Verify(token, "session-a"))

	c.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	assert.Error(t, c.Verify(token, "session-a"))
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	hash, err := HashPassword("admin123")
	require.NoError(t, err)

	store := NewMemoryStore()
	a := NewAuthenticator(fakeAdmins{"admin": {ID: 7, Username: "admin", Password: hash}}, store, time.Hour)

	t.Run("unknown user", func(t *testing.T) {
		_, err := a.Login(ctx, "nobody", "admin123", "")
		var apiErr *errs.ApiErr
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 404, apiErr.StatusCode)
		assert.Equal(t, "Admin user not found", apiErr.Error())
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := a.Login(ctx, "admin", "nope", "")
		var apiErr *errs.ApiErr
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 401, apiErr.StatusCode)
		assert.True(t, errs.IsWrongCredentialsError(err))
	})

	t.Run("regenerates session id", func(t *testing.T) {
		first, err := a.Login(ctx, "admin", "admin123", "")
		require.NoError(t, err)
		assert.Equal(t, int64(7), first.AdminID)
		assert.Equal(t, "admin", first.Username)

		second, err := a.Login(ctx, "admin", "admin123", first.ID)
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)

		old, err := a.Session(ctx, first.ID)
		require.NoError(t, err)
		assert.Nil(t, old)

		require.NoError(t, a.Rename(ctx, second, "root"))
		live, err := a.Session(ctx, second.ID)
		require.NoError(t, err)
		require.NotNil(t, live)
		assert.Equal(t, "root", live.Username)

		require.NoError(t, a.Logout(ctx, second.ID))
		live, err = a.Session(ctx, second.ID)
		require.NoError(t, err)
		assert.Nil(t, live)
	})
}
