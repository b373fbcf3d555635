package api

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/media"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/rpupo63/portfolio-backend/validation"
)

type projectHandler struct {
	responder   Responder
	logger      zerolog.Logger
	projectRepo *database.ProjectRepo
	media       media.Store
}

func newProjectHandler(projectRepo *database.ProjectRepo, store media.Store) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		projectRepo: projectRepo,
		media:       store,
	}
}

// ProjectCollection is the list payload of GET /api/projects.
type ProjectCollection struct {
	Projects []*models.Project `json:"projects"`
	Total    int               `json:"total"`
}

// projectRequest is a decoded project write plus its optional image part.
type projectRequest struct {
	input validation.ProjectInput
	image *media.Upload
	file  multipart.File
}

func (p *projectRequest) close() {
	if p.file != nil {
		p.file.Close()
	}
}

func (h projectHandler) decodeProject(r *http.Request) (*projectRequest, error) {
	req := &projectRequest{}
	if err := decodeBody(r, &req.input, "project"); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return req, nil
	}

	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return req, nil
	}
	if err != nil {
		return nil, errs.NewUploadFailedError(err)
	}
	if header.Size == 0 {
		// browsers send an empty part when no file was chosen
		file.Close()
		return req, nil
	}
	req.file = file
	req.image = &media.Upload{Filename: header.Filename, Body: file}
	return req, nil
}

func (h projectHandler) getProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok, err := queryID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if ok {
			project, err := h.findProject(r.Context(), id)
			if err != nil {
				h.responder.WriteError(w, err)
				return
			}
			h.responder.WriteSuccess(w, "Project retrieved successfully", project)
			return
		}

		projects, err := h.projectRepo.FindAll(r.Context(), database.ProjectFilter{
			ActiveOnly:   queryBool(r, "active_only"),
			FeaturedOnly: queryBool(r, "featured_only"),
		})
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "projects", err))
			return
		}
		h.responder.WriteSuccess(w, "Projects retrieved successfully", ProjectCollection{
			Projects: projects,
			Total:    len(projects),
		})
	}
}

// postProject creates a project, or fully replaces one when the body carries an id.
func (h projectHandler) postProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := h.decodeProject(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		defer req.close()

		id, ok, err := bodyID(req.input.ID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if ok {
			h.updateProject(w, r, id, req, true)
			return
		}
		h.createProject(w, r, req)
	}
}

func (h projectHandler) patchProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := h.decodeProject(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		defer req.close()

		id, err := resolveID(r, req.input.ID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.updateProject(w, r, id, req, false)
	}
}

func (h projectHandler) createProject(w http.ResponseWriter, r *http.Request, req *projectRequest) {
	ctx := r.Context()
	key, err := idempotencyKey(r, req.input.RequestID)
	if err != nil {
		h.responder.WriteError(w, err)
		return
	}
	if key != nil {
		existing, err := h.projectRepo.FindByRequestID(ctx, *key)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "project", err))
			return
		}
		if existing != nil {
			h.responder.WriteSuccess(w, "Project already exists", createdResponse{ID: existing.ID})
			return
		}
	}

	project, err := req.input.NewProject()
	if err != nil {
		h.responder.WriteError(w, err)
		return
	}
	project.RequestID = key

	if req.image != nil {
		path, err := h.saveImage(ctx, *req.image)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		project.ImagePath = &path
	}

	if err := h.projectRepo.Add(ctx, project); err != nil {
		if project.HasImage() {
			h.removeImage(ctx, *project.ImagePath)
		}
		dbErr := wrapDatabaseError("create", "Project", err)
		if key != nil && errs.IsConflict(dbErr) {
			if existing, findErr := h.projectRepo.FindByRequestID(ctx, *key); findErr == nil && existing != nil {
				h.responder.WriteSuccess(w, "Project already exists", createdResponse{ID: existing.ID})
				return
			}
		}
		h.responder.WriteError(w, dbErr)
		return
	}

	h.logger.Info().Int64("projectID", project.ID).Str("title", project.Title).Msg("Project created")
	h.responder.WriteSuccess(w, "Project created successfully", createdResponse{ID: project.ID})
}

// updateProject applies a full replacement or a patch. A new image is written before the
// row is updated and the old file is removed only after the update succeeded.
func (h projectHandler) updateProject(w http.ResponseWriter, r *http.Request, id int64, req *projectRequest, replace bool) {
	ctx := r.Context()
	existing, err := h.findProject(ctx, id)
	if err != nil {
		h.responder.WriteError(w, err)
		return
	}

	var cols map[string]any
	if replace {
		cols, err = req.input.ReplaceColumns()
	} else {
		cols, err = req.input.PatchColumns(existing)
	}
	if err != nil {
		h.responder.WriteError(w, err)
		return
	}

	removeImage := req.input.WantsImageRemoved()
	if !replace && len(cols) == 0 && req.image == nil && !removeImage {
		h.responder.WriteError(w, errs.NewNoFieldsToUpdateError())
		return
	}

	var newPath string
	switch {
	case req.image != nil:
		newPath, err = h.saveImage(ctx, *req.image)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		cols["image_path"] = newPath
	case removeImage:
		cols["image_path"] = nil
	}

	if err := h.projectRepo.Update(ctx, id, cols); err != nil {
		if newPath != "" {
			h.removeImage(ctx, newPath)
		}
		h.responder.WriteError(w, wrapDatabaseError("update", "Project", err))
		return
	}

	if (newPath != "" || removeImage) && existing.HasImage() {
		h.removeImage(ctx, *existing.ImagePath)
	}
	h.responder.WriteSuccess(w, "Project updated successfully", nil)
}

// deleteProject removes the row first, then its image.
func (h projectHandler) deleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, ok, err := queryID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if !ok {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("id"))
			return
		}
		project, err := h.findProject(ctx, id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.projectRepo.Delete(ctx, id); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "Project", err))
			return
		}
		if project.HasImage() {
			h.removeImage(ctx, *project.ImagePath)
		}
		h.logger.Info().Int64("projectID", id).Msg("Project deleted")
		h.responder.WriteSuccess(w, "Project deleted successfully", nil)
	}
}

func (h projectHandler) findProject(ctx context.Context, id int64) (*models.Project, error) {
	project, err := h.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapDatabaseError("find", "Project", err)
	}
	if project == nil {
		return nil, errs.NewNotFoundError("Project not found")
	}
	return project, nil
}

func (h projectHandler) saveImage(ctx context.Context, up media.Upload) (string, error) {
	path, err := h.media.Save(ctx, up)
	if err != nil {
		h.logger.Warn().Err(err).Str("filename", up.Filename).Msg("Image upload rejected")
		return "", errs.NewUploadFailedError(err)
	}
	return path, nil
}

// removeImage is best effort; a failure leaves an orphaned file, never a broken row.
func (h projectHandler) removeImage(ctx context.Context, path string) {
	if err := h.media.Remove(ctx, path); err != nil {
		h.logger.Warn().Err(err).Str("path", path).Msg("Failed to remove image")
	}
}
