package api

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/rpupo63/portfolio-backend/validation"
)

type skillHandler struct {
	responder Responder
	logger    zerolog.Logger
	skillRepo *database.SkillRepo
}

func newSkillHandler(skillRepo *database.SkillRepo) skillHandler {
	logger := log.With().Str("handlerName", "skillHandler").Logger()

	return skillHandler{
		responder: NewResponder(logger),
		logger:    logger,
		skillRepo: skillRepo,
	}
}

// SkillCollection is the list payload of GET /api/skills.
type SkillCollection struct {
	Skills  []*models.Skill            `json:"skills"`
	Grouped map[string][]*models.Skill `json:"grouped"`
	Total   int                        `json:"total"`
}

type createdResponse struct {
	ID int64 `json:"id"`
}

// getSkills returns one skill when ?id is present, otherwise the filtered list.
func (h skillHandler) getSkills() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok, err := queryID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if ok {
			skill, err := h.findSkill(r, id)
			if err != nil {
				h.responder.WriteError(w, err)
				return
			}
			h.responder.WriteSuccess(w, "Skill retrieved successfully", skill)
			return
		}

		filter := database.SkillFilter{
			Category:   validation.Sanitize(r.URL.Query().Get("category")),
			ActiveOnly: queryBool(r, "active_only"),
		}
		skills, err := h.skillRepo.FindAll(r.Context(), filter)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "skills", err))
			return
		}

		h.responder.WriteSuccess(w, "Skills retrieved successfully", SkillCollection{
			Skills:  skills,
			Grouped: models.GroupSkillsByCategory(skills),
			Total:   len(skills),
		})
	}
}

// postSkill creates a skill, or fully replaces one when the body carries an id.
func (h skillHandler) postSkill() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in validation.SkillInput
		if err := decodeBody(r, &in, "skill"); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		id, ok, err := bodyID(in.ID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if ok {
			h.replaceSkill(w, r, id, &in)
			return
		}
		h.createSkill(w, r, &in)
	}
}

func (h skillHandler) createSkill(w http.ResponseWriter, r *http.Request, in *validation.SkillInput) {
	ctx := r.Context()
	key, err := idempotencyKey(r, in.RequestID)
	if err != nil {
		h.responder.WriteError(w, err)
		return
	}
	if key != nil {
		existing, err := h.skillRepo.FindByRequestID(ctx, *key)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "skill", err))
			return
		}
		if existing != nil {
			h.responder.WriteSuccess(w, "Skill already exists", createdResponse{ID: existing.ID})
			return
		}
	}

	skill, err := in.NewSkill()
	if err != nil {
		h.responder.WriteError(w, err)
		return
	}
	skill.RequestID = key

	if err := h.skillRepo.Add(ctx, skill); err != nil {
		dbErr := wrapDatabaseError("create", "Skill", err)
		if key != nil && errs.IsConflict(dbErr) {
			// a concurrent request with the same key won the insert
			if existing, findErr := h.skillRepo.FindByRequestID(ctx, *key); findErr == nil && existing != nil {
				h.responder.WriteSuccess(w, "Skill already exists", createdResponse{ID: existing.ID})
				return
			}
		}
		h.responder.WriteError(w, dbErr)
		return
	}

	h.logger.Info().Int64("skillID", skill.ID).Str("name", skill.Name).Msg("Skill created")
	h.responder.WriteSuccess(w, "Skill created successfully", createdResponse{ID: skill.ID})
}

func (h skillHandler) replaceSkill(w http.ResponseWriter, r *http.Request, id int64, in *validation.SkillInput) {
	if _, err := h.findSkill(r, id); err != nil {
		h.responder.WriteError(w, err)
		return
	}

	cols, err := in.ReplaceColumns()
	if err != nil {
		h.responder.WriteError(w, err)
		return
	}
	if err := h.skillRepo.Update(r.Context(), id, cols); err != nil {
		h.responder.WriteError(w, wrapDatabaseError("update", "Skill", err))
		return
	}
	h.responder.WriteSuccess(w, "Skill updated successfully", nil)
}

// patchSkill updates only the fields present in the body.
func (h skillHandler) patchSkill() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in validation.SkillInput
		if err := decodeBody(r, &in, "skill"); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		id, err := resolveID(r, in.ID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		existing, err := h.findSkill(r, id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		cols, err := in.PatchColumns(existing)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.skillRepo.Update(r.Context(), id, cols); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "Skill", err))
			return
		}
		h.responder.WriteSuccess(w, "Skill updated successfully", nil)
	}
}

func (h skillHandler) deleteSkill() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok, err := queryID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if !ok {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("id"))
			return
		}
		if _, err := h.findSkill(r, id); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.skillRepo.Delete(r.Context(), id); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "Skill", err))
			return
		}
		h.logger.Info().Int64("skillID", id).Msg("Skill deleted")
		h.responder.WriteSuccess(w, "Skill deleted successfully", nil)
	}
}

func (h skillHandler) findSkill(r *http.Request, id int64) (*models.Skill, error) {
	skill, err := h.skillRepo.FindByID(r.Context(), id)
	if err != nil {
		return nil, wrapDatabaseError("find", "Skill", err)
	}
	if skill == nil {
		return nil, errs.NewNotFoundError("Skill not found")
	}
	return skill, nil
}
