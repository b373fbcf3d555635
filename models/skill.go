package models

import "time"

// SkillCategories lists the category labels the dashboard offers.
var SkillCategories = []string{"Frontend", "Backend", "Database", "DevOps", "Other"}

const (
	IconTypeText = "text"
	IconTypeURL  = "url"

	DefaultSkillColor = "#3b82f6"
)

// Skill is a single entry of the skills section.
type Skill struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name         string    `json:"name" gorm:"type:varchar(100);not null" validate:"required,max=100"`
	Level        int       `json:"level" gorm:"not null;check:chk_skills_level,level >= 0 AND level <= 100" validate:"gte=0,lte=100"`
	Category     string    `json:"category" gorm:"type:varchar(50);not null;index" validate:"oneof=Frontend Backend Database DevOps Other"`
	IconType     string    `json:"icon_type" gorm:"type:varchar(10);not null;default:text" validate:"oneof=text url"`
	IconValue    string    `json:"icon_value" gorm:"type:text;not null;default:''" validate:"max=500"`
	Color        string    `json:"color" gorm:"type:varchar(20);not null;default:'#3b82f6'" validate:"hexcolor"`
	DisplayOrder int       `json:"display_order" gorm:"not null;default:0"`
	IsActive     bool      `json:"is_active" gorm:"not null"`
	RequestID    *string   `json:"-" gorm:"type:varchar(64);uniqueIndex"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// GroupSkillsByCategory partitions skills by category, keeping the input order inside
// each group.
func GroupSkillsByCategory(skills []*Skill) map[string][]*Skill {
	grouped := make(map[string][]*Skill)
	for _, s := range skills {
		grouped[s.Category] = append(grouped[s.Category], s)
	}
	return grouped
}
