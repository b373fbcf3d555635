package api

import (
	"net/http"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-backend/auth"
	"github.com/rpupo63/portfolio-backend/errs"
)

const (
	sessionCookieName = "portfolio_session"
	csrfHeader        = "X-CSRF-Token"
	csrfFormField     = "csrf_token"
)

type authMiddleware struct {
	responder     Responder
	authenticator *auth.Authenticator
	csrf          *auth.CSRF
}

// newAuthMiddleware builds the session and CSRF checks. csrf is nil when CSRF protection
// is disabled.
func newAuthMiddleware(authenticator *auth.Authenticator, csrf *auth.CSRF) authMiddleware {
	logger := log.With().Str("handlerName", "authMiddleware").Logger()
	return authMiddleware{
		responder:     NewResponder(logger),
		authenticator: authenticator,
		csrf:          csrf,
	}
}

// loadSession attaches the session named by the cookie, if it is still live. Anonymous
// requests pass through untouched.
func (m authMiddleware) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		session, err := m.authenticator.Session(r.Context(), cookie.Value)
		if err != nil {
			m.responder.WriteError(w, errs.NewInternalErrorWithCause("load session", err))
			return
		}
		if session == nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(ctxWithSession(r.Context(), session)))
	})
}

// requireAdmin rejects the request before its body is read unless a session is attached.
func (m authMiddleware) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ctxGetSession(r.Context()) == nil {
			m.responder.WriteError(w, errs.Unauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// verifyCSRF checks the token of state-changing requests. It must run after requireAdmin.
func (m authMiddleware) verifyCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.csrf == nil || isSafeMethod(r.Method) {
			next.ServeHTTP(w, r)
			return
		}
		session := ctxGetSession(r.Context())
		if session == nil {
			m.responder.WriteError(w, errs.Unauthorized)
			return
		}

		token := r.Header.Get(csrfHeader)
		if token == "" && isFormRequest(r) {
			if err := parseForm(r, "form"); err != nil {
				m.responder.WriteError(w, err)
				return
			}
			token = r.PostFormValue(csrfFormField)
		}
		if err := m.csrf.Verify(token, session.ID); err != nil {
			m.responder.WriteError(w, errs.NewInvalidCSRFTokenError(err))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// issueCSRF returns a token for the session, or "" when CSRF protection is disabled.
func (m authMiddleware) issueCSRF(sessionID string) (string, error) {
	if m.csrf == nil {
		return "", nil
	}
	return m.csrf.Issue(sessionID)
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func isFormRequest(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") || strings.HasPrefix(ct, "multipart/form-data")
}

type statusResponseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusResponseWriter) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.status = statusCode
		w.wroteHeader = true
		w.ResponseWriter.WriteHeader(statusCode)
	}
}

func (w *statusResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// RecoverPanics turns a panic into a 500 envelope and logs the stack.
func RecoverPanics(next http.Handler) http.Handler {
	responder := NewResponder(log.With().Str("handlerName", "recoverer").Logger())
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srw := &statusResponseWriter{ResponseWriter: w, status: http.StatusOK}

		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Interface("panic", rec).
					Str("stack", string(debug.Stack())).
					Msg("Recovered from panic")

				if !srw.wroteHeader {
					responder.WriteJSON(srw, http.StatusInternalServerError, envelope{Message: genericErrorMessage})
				}
			}
		}()

		next.ServeHTTP(srw, r)
	})
}

// corsMiddleware allows credentialed requests from the configured origins.
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", csrfHeader, "Idempotency-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

// ColoredHTTPLoggingMiddleware logs HTTP requests with colored output based on status codes
func ColoredHTTPLoggingMiddleware(next http.Handler) http.Handler {
	colorLogger := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()
	return httpLogger(colorLogger)(next)
}

// httpLogger logs one line per request. 5xx log at error level, 4xx at warn.
func httpLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			srw := &statusResponseWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(srw, r)

			var logEvent *zerolog.Event
			switch {
			case srw.status >= 500:
				logEvent = logger.Error()
			case srw.status >= 400:
				logEvent = logger.Warn()
			default:
				logEvent = logger.Info()
			}

			logEvent.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", srw.status).
				Dur("duration", time.Since(start)).
				Str("remote_addr", r.RemoteAddr).
				Msg("HTTP Request")
		})
	}
}
