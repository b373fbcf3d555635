package database

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/rpupo63/portfolio-backend/models"
)

// ProjectFilter narrows FindAll. Zero values disable a filter.
type ProjectFilter struct {
	ActiveOnly   bool
	FeaturedOnly bool
}

type ProjectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) *ProjectRepo {
	return &ProjectRepo{db}
}

// FindAll returns projects ordered by display order, newest first within the same order.
func (r *ProjectRepo) FindAll(ctx context.Context, filter ProjectFilter) ([]*models.Project, error) {
	q := r.db.WithContext(ctx).Model(&models.Project{})
	if filter.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	if filter.FeaturedOnly {
		q = q.Where("is_featured = ?", true)
	}

	projects := []*models.Project{}
	err := q.Order("display_order ASC").Order("created_at DESC").Order("id DESC").Find(&projects).Error
	return projects, err
}

// FindByID returns a project by its ID, or nil when no row matches.
func (r *ProjectRepo) FindByID(ctx context.Context, id int64) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).First(&project, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// FindByRequestID returns the project created with the given idempotency key, or nil.
func (r *ProjectRepo) FindByRequestID(ctx context.Context, requestID string) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).Where("request_id = ?", requestID).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// Add inserts a new project into the database
func (r *ProjectRepo) Add(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

// Update applies column assignments to the project with the given id.
func (r *ProjectRepo) Update(ctx context.Context, id int64, assignments map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Updates(assignments).Error
}

// Delete removes a project from the database by id
func (r *ProjectRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Project{}, id).Error
}
