package api

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/media"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/rpupo63/portfolio-backend/services"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var adminTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// dashboardHandler serves the HTML pages: the public portfolio and the admin UI.
type dashboardHandler struct {
	responder   Responder
	logger      zerolog.Logger
	skillRepo   *database.SkillRepo
	projectRepo *database.ProjectRepo
	pages       *services.PageRenderer
	media       media.Store
	middleware  authMiddleware
}

func newDashboardHandler(db database.Database, pages *services.PageRenderer, store media.Store, m authMiddleware) dashboardHandler {
	logger := log.With().Str("handlerName", "dashboardHandler").Logger()

	return dashboardHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		skillRepo:   db.SkillRepo(),
		projectRepo: db.ProjectRepo(),
		pages:       pages,
		media:       store,
		middleware:  m,
	}
}

type dashboardPage struct {
	Username   string
	CSRFToken  string
	MediaBase  string
	Categories []string
}

// publicPage renders the live portfolio with the same template the static export uses.
func (h dashboardHandler) publicPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		portfolio, err := services.LoadPortfolio(r.Context(), h.skillRepo, h.projectRepo)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("load", "portfolio", err))
			return
		}
		var buf bytes.Buffer
		if err := h.pages.Render(&buf, portfolio); err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("render portfolio", err))
			return
		}
		writeHTML(w, buf.Bytes())
	}
}

func (h dashboardHandler) loginPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxGetSession(r.Context()) != nil {
			http.Redirect(w, r, "/admin", http.StatusSeeOther)
			return
		}
		h.render(w, "login.html", nil)
	}
}

func (h dashboardHandler) dashboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := ctxGetSession(r.Context())
		if session == nil {
			http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
			return
		}
		token, err := h.middleware.issueCSRF(session.ID)
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("issue csrf token", err))
			return
		}
		h.render(w, "dashboard.html", dashboardPage{
			Username:   session.Username,
			CSRFToken:  token,
			MediaBase:  h.media.URL(""),
			Categories: models.SkillCategories,
		})
	}
}

func (h dashboardHandler) render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := adminTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		h.responder.WriteError(w, errs.NewInternalErrorWithCause("render "+name, err))
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeHTML(w, buf.Bytes())
}

func writeHTML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// assetsHandler serves the embedded dashboard stylesheet and script.
func assetsHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/admin/assets/", http.FileServer(http.FS(sub)))
}

// uploadsHandler serves stored images from the local upload root. Directory listings are
// refused.
func uploadsHandler(root string) http.Handler {
	files := http.StripPrefix("/uploads/", http.FileServer(http.Dir(filepath.Join(root, "uploads"))))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(r.URL.Path) == 0 || r.URL.Path[len(r.URL.Path)-1] == '/' {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}
