package service

import (
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx/types"

	"github.com/patelvedant312/team-matching/internal/matching"
	"github.com/patelvedant312/team-matching/internal/models"
)

// toMatchingResource делает снимок ресурса для движка. Занятость читается здесь
// один раз и дальше в запуске не меняется.
func toMatchingResource(r *models.Resource) (matching.Resource, error) {
	out := matching.Resource{
		ID:        r.ID,
		Name:      r.Name,
		Rate:      r.Rate,
		Committed: r.Committed(),
		OrgID:     r.OrgID,
	}

	if err := unmarshalJSONText(r.Skills, &out.Skills); err != nil {
		return out, fmt.Errorf("ресурс %s: skills: %w", r.ID, err)
	}
	if err := unmarshalJSONText(r.PastJobTitles, &out.Experience); err != nil {
		return out, fmt.Errorf("ресурс %s: past_job_titles: %w", r.ID, err)
	}
	if r.AvailableDate != nil {
		d := matching.DateOf(*r.AvailableDate)
		out.AvailableDate = &d
	}
	return out, nil
}

// toMatchingProject делает снимок проекта с его потребностью в ролях.
func toMatchingProject(p *models.Project) (matching.Project, error) {
	out := matching.Project{
		ID:        p.ID,
		Name:      p.Name,
		OrgID:     p.OrgID,
		StartDate: matching.DateOf(p.StartDate),
	}
	if err := unmarshalJSONText(p.RequiredResources, &out.Roles); err != nil {
		return out, fmt.Errorf("проект %s: required_resources: %w", p.ID, err)
	}
	return out, nil
}

// buildInput собирает вход движка из сохранённых проектов и пула.
func buildInput(projects []models.Project, pool []models.Resource) (matching.Input, error) {
	in := matching.Input{
		Projects:  make([]matching.Project, 0, len(projects)),
		Resources: make([]matching.Resource, 0, len(pool)),
	}
	for i := range projects {
		p, err := toMatchingProject(&projects[i])
		if err != nil {
			return in, err
		}
		in.Projects = append(in.Projects, p)
	}
	for i := range pool {
		r, err := toMatchingResource(&pool[i])
		if err != nil {
			return in, err
		}
		in.Resources = append(in.Resources, r)
	}
	return in, nil
}

func unmarshalJSONText(raw types.JSONText, dst interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

// jsonOrDefault подставляет fallback вместо пустого JSON.
func jsonOrDefault(raw types.JSONText, fallback string) types.JSONText {
	if len(raw) == 0 || string(raw) == "null" {
		return types.JSONText(fallback)
	}
	return raw
}
