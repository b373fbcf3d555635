package validation

import (
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
)

// ProjectInput is the decoded body of a project write. The image itself travels separately
// as a multipart part.
type ProjectInput struct {
	ID           Optional[Int]       `json:"id"`
	RequestID    Optional[string]    `json:"request_id"`
	Title        Optional[string]    `json:"title"`
	Description  Optional[string]    `json:"description"`
	TechStack    Optional[TechStack] `json:"tech_stack"`
	LiveURL      Optional[string]    `json:"live_url"`
	GithubURL    Optional[string]    `json:"github_url"`
	DisplayOrder Optional[Int]       `json:"display_order"`
	IsFeatured   Optional[Bool]      `json:"is_featured"`
	IsActive     Optional[Bool]      `json:"is_active"`
	RemoveImage  Optional[Bool]      `json:"remove_image"`
}

func (in *ProjectInput) NewProject() (*models.Project, error) {
	if !in.Title.Set {
		return nil, errs.NewMissingRequiredFieldError("title")
	}
	if !in.Description.Set {
		return nil, errs.NewMissingRequiredFieldError("description")
	}

	p := &models.Project{
		Title:        Sanitize(in.Title.Value),
		Description:  Sanitize(in.Description.Value),
		TechStack:    techStack(in.TechStack.Value),
		LiveURL:      SanitizeOptional(in.LiveURL.Value),
		GithubURL:    SanitizeOptional(in.GithubURL.Value),
		DisplayOrder: int(in.DisplayOrder.Value),
		IsFeatured:   bool(in.IsFeatured.Value),
		IsActive:     bool(in.IsActive.Or(true)),
	}
	if err := Struct(p); err != nil {
		return nil, err
	}
	return p, nil
}

// ReplaceColumns returns every writable column except image_path, which the caller owns.
func (in *ProjectInput) ReplaceColumns() (map[string]any, error) {
	p, err := in.NewProject()
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"title":         p.Title,
		"description":   p.Description,
		"tech_stack":    p.TechStack,
		"live_url":      p.LiveURL,
		"github_url":    p.GithubURL,
		"display_order": p.DisplayOrder,
		"is_featured":   p.IsFeatured,
		"is_active":     p.IsActive,
	}, nil
}

// PatchColumns returns the columns present in the input. An empty map is not an error here
// because an image change alone is a valid patch.
func (in *ProjectInput) PatchColumns(existing *models.Project) (map[string]any, error) {
	merged := *existing
	cols := make(map[string]any)

	if v, ok := in.Title.Get(); ok {
		merged.Title = Sanitize(v)
		cols["title"] = merged.Title
	}
	if v, ok := in.Description.Get(); ok {
		merged.Description = Sanitize(v)
		cols["description"] = merged.Description
	}
	if v, ok := in.TechStack.Get(); ok {
		merged.TechStack = techStack(v)
		cols["tech_stack"] = merged.TechStack
	}
	if v, ok := in.LiveURL.Get(); ok {
		merged.LiveURL = SanitizeOptional(v)
		cols["live_url"] = merged.LiveURL
	}
	if v, ok := in.GithubURL.Get(); ok {
		merged.GithubURL = SanitizeOptional(v)
		cols["github_url"] = merged.GithubURL
	}
	if v, ok := in.DisplayOrder.Get(); ok {
		merged.DisplayOrder = int(v)
		cols["display_order"] = merged.DisplayOrder
	}
	if v, ok := in.IsFeatured.Get(); ok {
		merged.IsFeatured = bool(v)
		cols["is_featured"] = merged.IsFeatured
	}
	if v, ok := in.IsActive.Get(); ok {
		merged.IsActive = bool(v)
		cols["is_active"] = merged.IsActive
	}

	if err := Struct(&merged); err != nil {
		return nil, err
	}
	return cols, nil
}

// WantsImageRemoved reports whether the client asked to clear the current image.
func (in *ProjectInput) WantsImageRemoved() bool {
	return bool(in.RemoveImage.Value)
}

func techStack(t TechStack) []string {
	if t == nil {
		return []string{}
	}
	return []string(t)
}
