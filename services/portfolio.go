package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/models"
)

type SkillLister interface {
	FindAll(ctx context.Context, filter database.SkillFilter) ([]*models.Skill, error)
}

type ProjectLister interface {
	FindAll(ctx context.Context, filter database.ProjectFilter) ([]*models.Project, error)
}

// SkillGroup is one category section of the public page.
type SkillGroup struct {
	Category string
	Skills   []*models.Skill
}

// Portfolio is the active content shown on the public page.
type Portfolio struct {
	Skills   []*models.Skill
	Groups   []SkillGroup
	Projects []*models.Project
}

// LoadPortfolio fetches active skills and projects concurrently.
func LoadPortfolio(ctx context.Context, skills SkillLister, projects ProjectLister) (*Portfolio, error) {
	p := &Portfolio{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := skills.FindAll(gctx, database.SkillFilter{ActiveOnly: true})
		if err != nil {
			return fmt.Errorf("load skills: %w", err)
		}
		p.Skills = s
		return nil
	})
	g.Go(func() error {
		pr, err := projects.FindAll(gctx, database.ProjectFilter{ActiveOnly: true})
		if err != nil {
			return fmt.Errorf("load projects: %w", err)
		}
		p.Projects = pr
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	p.Groups = groupSkills(p.Skills)
	return p, nil
}

// groupSkills orders groups by the dashboard category order, unknown categories last in
// first-seen order.
func groupSkills(skills []*models.Skill) []SkillGroup {
	grouped := models.GroupSkillsByCategory(skills)
	var groups []SkillGroup
	seen := make(map[string]bool)
	for _, c := range models.SkillCategories {
		if s, ok := grouped[c]; ok {
			groups = append(groups, SkillGroup{Category: c, Skills: s})
			seen[c] = true
		}
	}
	for _, s := range skills {
		if !seen[s.Category] {
			groups = append(groups, SkillGroup{Category: s.Category, Skills: grouped[s.Category]})
			seen[s.Category] = true
		}
	}
	return groups
}
