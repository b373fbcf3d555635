package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-backend/auth"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
)

type authHandler struct {
	responder     Responder
	logger        zerolog.Logger
	authenticator *auth.Authenticator
	middleware    authMiddleware
	secureCookies bool
}

func newAuthHandler(authenticator *auth.Authenticator, m authMiddleware, secureCookies bool) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()

	return authHandler{
		responder:     NewResponder(logger),
		logger:        logger,
		authenticator: authenticator,
		middleware:    m,
		secureCookies: secureCookies,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SessionResponse describes the signed in admin.
type SessionResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	CSRFToken string `json:"csrf_token,omitempty"`
}

func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeBody(r, &req, "login"); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		req.Username = strings.TrimSpace(req.Username)
		if req.Username == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("username"))
			return
		}
		if req.Password == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("password"))
			return
		}

		var previousID string
		if c, err := r.Cookie(sessionCookieName); err == nil {
			previousID = c.Value
		}

		session, err := h.authenticator.Login(r.Context(), req.Username, req.Password, previousID)
		if err != nil {
			if errs.IsWrongCredentialsError(err) {
				h.logger.Warn().Str("username", req.Username).Str("remote_addr", r.RemoteAddr).Msg("Login failed: wrong password")
			} else {
				h.logger.Info().Str("username", req.Username).Err(err).Msg("Login failed")
			}
			h.responder.WriteError(w, err)
			return
		}

		resp, err := h.sessionResponse(session)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.setSessionCookie(w, r, session.ID, session.ExpiresAt)
		h.logger.Info().Str("username", session.Username).Msg("Admin logged in")
		h.responder.WriteSuccess(w, "Login successful", resp)
	}
}

func (h authHandler) logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.endSession(w, r); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteSuccess(w, "Logged out", nil)
	}
}

// logoutRedirect serves the dashboard's logout link.
func (h authHandler) logoutRedirect() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.endSession(w, r); err != nil {
			h.logger.Error().Err(err).Msg("Failed to destroy session")
		}
		http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
	}
}

func (h authHandler) session() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := ctxGetSession(r.Context())
		if session == nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}
		resp, err := h.sessionResponse(session)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteSuccess(w, "Authenticated", resp)
	}
}

func (h authHandler) endSession(w http.ResponseWriter, r *http.Request) error {
	if c, err := r.Cookie(sessionCookieName); err == nil {
		if err := h.authenticator.Logout(r.Context(), c.Value); err != nil {
			return errs.NewInternalErrorWithCause("destroy session", err)
		}
	}
	h.setSessionCookie(w, r, "", time.Unix(0, 0))
	return nil
}

func (h authHandler) sessionResponse(session *models.Session) (SessionResponse, error) {
	token, err := h.middleware.issueCSRF(session.ID)
	if err != nil {
		return SessionResponse{}, errs.NewInternalErrorWithCause("issue csrf token", err)
	}
	return SessionResponse{ID: session.AdminID, Username: session.Username, CSRFToken: token}, nil
}

func (h authHandler) setSessionCookie(w http.ResponseWriter, r *http.Request, value string, expires time.Time) {
	c := &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.secureCookies || r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https",
	}
	if value == "" {
		c.MaxAge = -1
	}
	http.SetCookie(w, c)
}
