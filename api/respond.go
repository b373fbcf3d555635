package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/rpupo63/portfolio-backend/errs"
)

// envelope is the shape of every JSON response.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Data    any    `json:"data,omitempty"`
}

const genericErrorMessage = "An error occurred"

type Responder struct {
	logger zerolog.Logger
}

func NewResponder(logger zerolog.Logger) Responder {
	return Responder{logger}
}

// WriteJSON marshals data before touching the response so a marshal failure can still
// produce a clean 500.
func (r Responder) WriteJSON(w http.ResponseWriter, status int, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		r.logger.Error().Err(err).Msg("error marshaling response data")
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"message":"` + genericErrorMessage + `"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(jsonData); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

// WriteSuccess writes a 200 envelope. data is omitted when nil.
func (r Responder) WriteSuccess(w http.ResponseWriter, message string, data any) {
	r.WriteJSON(w, http.StatusOK, envelope{Success: true, Message: message, Data: data})
}

// WriteError maps err onto the envelope. Anything that is not an ApiErr, and every 5xx, is
// logged in full and reported to the client with a generic message.
func (r Responder) WriteError(w http.ResponseWriter, err error) {
	var apiErr *errs.ApiErr
	if !errors.As(err, &apiErr) {
		r.logger.Error().Err(err).Msg("unexpected error")
		r.WriteJSON(w, http.StatusInternalServerError, envelope{Message: genericErrorMessage})
		return
	}

	if apiErr.StatusCode >= http.StatusInternalServerError {
		r.logger.Error().
			Int("status", apiErr.StatusCode).
			Str("error", apiErr.GetFullError()).
			Msg("request failed")
		r.WriteJSON(w, apiErr.StatusCode, envelope{Message: genericErrorMessage})
		return
	}

	event := r.logger.Debug()
	if apiErr.Cause != nil {
		event = r.logger.Warn()
	}
	event.Int("status", apiErr.StatusCode).Str("error", apiErr.GetFullError()).Msg("request rejected")

	r.WriteJSON(w, apiErr.StatusCode, envelope{
		Message: apiErr.Error(),
		Field:   apiErr.Field,
	})
}

// wrapDatabaseError wraps a database error with context information
func wrapDatabaseError(operation, entity string, cause error) error {
	return errs.NewDatabaseError(operation, entity, cause)
}
