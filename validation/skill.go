package validation

import (
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
)

// SkillInput is the decoded body of a skill write. Every field tracks presence so the same
// type serves creates, full replacements and partial patches.
type SkillInput struct {
	ID           Optional[Int]    `json:"id"`
	RequestID    Optional[string] `json:"request_id"`
	Name         Optional[string] `json:"name"`
	Level        Optional[Int]    `json:"level"`
	Category     Optional[string] `json:"category"`
	IconType     Optional[string] `json:"icon_type"`
	IconValue    Optional[string] `json:"icon_value"`
	Color        Optional[string] `json:"color"`
	DisplayOrder Optional[Int]    `json:"display_order"`
	IsActive     Optional[Bool]   `json:"is_active"`
}

// NewSkill builds a complete record. name, level and category must be present; level 0 is
// a valid value.
func (in *SkillInput) NewSkill() (*models.Skill, error) {
	if !in.Name.Set {
		return nil, errs.NewMissingRequiredFieldError("name")
	}
	if !in.Level.Set {
		return nil, errs.NewMissingRequiredFieldError("level")
	}
	if !in.Category.Set {
		return nil, errs.NewMissingRequiredFieldError("category")
	}

	s := &models.Skill{
		Name:         Sanitize(in.Name.Value),
		Level:        int(in.Level.Value),
		Category:     Sanitize(in.Category.Value),
		IconType:     models.IconTypeText,
		IconValue:    Sanitize(in.IconValue.Value),
		Color:        models.DefaultSkillColor,
		DisplayOrder: int(in.DisplayOrder.Value),
		IsActive:     bool(in.IsActive.Or(true)),
	}
	if t := Sanitize(in.IconType.Value); t != "" {
		s.IconType = t
	}
	if c := Sanitize(in.Color.Value); c != "" {
		s.Color = c
	}
	if err := Struct(s); err != nil {
		return nil, err
	}
	return s, nil
}

// ReplaceColumns validates the input as a full record and returns every writable column.
func (in *SkillInput) ReplaceColumns() (map[string]any, error) {
	s, err := in.NewSkill()
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"name":          s.Name,
		"level":         s.Level,
		"category":      s.Category,
		"icon_type":     s.IconType,
		"icon_value":    s.IconValue,
		"color":         s.Color,
		"display_order": s.DisplayOrder,
		"is_active":     s.IsActive,
	}, nil
}

// PatchColumns returns the columns present in the input, validated against existing merged
// with the new values.
func (in *SkillInput) PatchColumns(existing *models.Skill) (map[string]any, error) {
	merged := *existing
	cols := make(map[string]any)

	if v, ok := in.Name.Get(); ok {
		merged.Name = Sanitize(v)
		cols["name"] = merged.Name
	}
	if v, ok := in.Level.Get(); ok {
		merged.Level = int(v)
		cols["level"] = merged.Level
	}
	if v, ok := in.Category.Get(); ok {
		merged.Category = Sanitize(v)
		cols["category"] = merged.Category
	}
	if v, ok := in.IconType.Get(); ok {
		merged.IconType = Sanitize(v)
		cols["icon_type"] = merged.IconType
	}
	if v, ok := in.IconValue.Get(); ok {
		merged.IconValue = Sanitize(v)
		cols["icon_value"] = merged.IconValue
	}
	if v, ok := in.Color.Get(); ok {
		merged.Color = Sanitize(v)
		if merged.Color == "" {
			merged.Color = models.DefaultSkillColor
		}
		cols["color"] = merged.Color
	}
	if v, ok := in.DisplayOrder.Get(); ok {
		merged.DisplayOrder = int(v)
		cols["display_order"] = merged.DisplayOrder
	}
	if v, ok := in.IsActive.Get(); ok {
		merged.IsActive = bool(v)
		cols["is_active"] = merged.IsActive
	}

	if len(cols) == 0 {
		return nil, errs.NewNoFieldsToUpdateError()
	}
	if err := Struct(&merged); err != nil {
		return nil, err
	}
	return cols, nil
}
