package database

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/rpupo63/portfolio-backend/models"
)

// SkillFilter narrows FindAll. Zero values disable a filter.
type SkillFilter struct {
	Category   string
	ActiveOnly bool
}

type SkillRepo struct {
	db *gorm.DB
}

func NewSkillRepo(db *gorm.DB) *SkillRepo {
	return &SkillRepo{db}
}

// FindAll returns skills ordered by display order, then name.
func (r *SkillRepo) FindAll(ctx context.Context, filter SkillFilter) ([]*models.Skill, error) {
	q := r.db.WithContext(ctx).Model(&models.Skill{})
	if filter.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}

	skills := []*models.Skill{}
	err := q.Order("display_order ASC").Order("name ASC").Find(&skills).Error
	return skills, err
}

// FindByID returns a skill by its ID, or nil when no row matches.
func (r *SkillRepo) FindByID(ctx context.Context, id int64) (*models.Skill, error) {
	var skill models.Skill
	err := r.db.WithContext(ctx).First(&skill, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &skill, nil
}

// FindByRequestID returns the skill created with the given idempotency key, or nil.
func (r *SkillRepo) FindByRequestID(ctx context.Context, requestID string) (*models.Skill, error) {
	var skill models.Skill
	err := r.db.WithContext(ctx).Where("request_id = ?", requestID).First(&skill).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &skill, nil
}

// Add inserts a new skill into the database
func (r *SkillRepo) Add(ctx context.Context, skill *models.Skill) error {
	return r.db.WithContext(ctx).Create(skill).Error
}

// Update applies column assignments to the skill with the given id.
func (r *SkillRepo) Update(ctx context.Context, id int64, assignments map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Skill{}).Where("id = ?", id).Updates(assignments).Error
}

// Delete removes a skill from the database by id
func (r *SkillRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Skill{}, id).Error
}
