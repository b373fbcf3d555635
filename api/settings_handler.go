package api

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-backend/auth"
	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/validation"
)

type settingsHandler struct {
	responder     Responder
	logger        zerolog.Logger
	adminRepo     *database.AdminRepo
	authenticator *auth.Authenticator
}

func newSettingsHandler(adminRepo *database.AdminRepo, authenticator *auth.Authenticator) settingsHandler {
	logger := log.With().Str("handlerName", "settingsHandler").Logger()

	return settingsHandler{
		responder:     NewResponder(logger),
		logger:        logger,
		adminRepo:     adminRepo,
		authenticator: authenticator,
	}
}

type settingsRequest struct {
	NewUsername     string `json:"new_username"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// updateAccount changes the signed in admin's username and/or password.
func (h settingsHandler) updateAccount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		session := ctxGetSession(ctx)

		var req settingsRequest
		if err := decodeBody(r, &req, "settings"); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		cols := make(map[string]any)
		username := validation.Sanitize(req.NewUsername)
		if username != "" && username != session.Username {
			other, err := h.adminRepo.FindByUsername(ctx, username)
			if err != nil {
				h.responder.WriteError(w, wrapDatabaseError("find", "admin", err))
				return
			}
			if other != nil && other.ID != session.AdminID {
				h.responder.WriteError(w, errs.NewConflictError("Username is already taken"))
				return
			}
			cols["username"] = username
		}

		if req.NewPassword != "" {
			if req.NewPassword != req.ConfirmPassword {
				h.responder.WriteError(w, errs.NewInvalidFieldError("confirm_password", "New passwords do not match"))
				return
			}
			if len(req.NewPassword) < auth.MinPasswordLength {
				h.responder.WriteError(w, errs.NewInvalidFieldError("new_password", "Password must be at least 6 characters"))
				return
			}
			hash, err := auth.HashPassword(req.NewPassword)
			if err != nil {
				h.responder.WriteError(w, errs.NewInternalErrorWithCause("hash password", err))
				return
			}
			cols["password"] = hash
		}

		if len(cols) == 0 {
			h.responder.WriteError(w, errs.NewBadRequestError("No changes were made"))
			return
		}

		if err := h.adminRepo.Update(ctx, session.AdminID, cols); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "Username", err))
			return
		}
		if _, renamed := cols["username"]; renamed {
			if err := h.authenticator.Rename(ctx, session, username); err != nil {
				h.responder.WriteError(w, errs.NewInternalErrorWithCause("refresh session", err))
				return
			}
		}

		h.logger.Info().Int64("adminID", session.AdminID).Msg("Account settings updated")
		h.responder.WriteSuccess(w, "Account settings updated successfully", nil)
	}
}
