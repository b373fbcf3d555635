package api

import (
	"context"

	"github.com/rpupo63/portfolio-backend/models"
)

type keyType string

const sessionKey keyType = "session"

// ctxWithSession adds the authenticated session to the context
func ctxWithSession(ctx context.Context, session *models.Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

// ctxGetSession returns the session loaded for this request, or nil for anonymous requests.
func ctxGetSession(ctx context.Context) *models.Session {
	s, _ := ctx.Value(sessionKey).(*models.Session)
	return s
}
