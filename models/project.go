package models

import (
	"time"

	"gorm.io/datatypes"
)

// Project represents a portfolio project with its display metadata
type Project struct {
	ID           int64                       `json:"id" gorm:"primaryKey;autoIncrement"`
	Title        string                      `json:"title" gorm:"type:varchar(200);not null" validate:"required,max=200"`
	Description  string                      `json:"description" gorm:"type:text;not null" validate:"required"`
	TechStack    datatypes.JSONSlice[string] `json:"tech_stack" gorm:"not null"`
	ImagePath    *string                     `json:"image_path" gorm:"type:varchar(255)" validate:"omitempty,max=255"`
	LiveURL      *string                     `json:"live_url" gorm:"type:varchar(255)" validate:"omitempty,max=255"`
	GithubURL    *string                     `json:"github_url" gorm:"type:varchar(255)" validate:"omitempty,max=255"`
	DisplayOrder int                         `json:"display_order" gorm:"not null;default:0"`
	IsFeatured   bool                        `json:"is_featured" gorm:"not null;default:false"`
	IsActive     bool                        `json:"is_active" gorm:"not null"`
	RequestID    *string                     `json:"-" gorm:"type:varchar(64);uniqueIndex"`
	CreatedAt    time.Time                   `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time                   `json:"updated_at" gorm:"autoUpdateTime"`
}

// HasImage reports whether the project references an uploaded image.
func (p *Project) HasImage() bool {
	return p.ImagePath != nil && *p.ImagePath != ""
}
