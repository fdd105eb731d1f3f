package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
)

// Team: сформированная команда проекта; одна на проект.
type Team struct {
	ID             uuid.UUID      `db:"id" json:"id"`
	ProjectID      uuid.UUID      `db:"project_id" json:"project_id"`
	OrgID          uuid.UUID      `db:"org_id" json:"org_id"`
	RunID          uuid.UUID      `db:"run_id" json:"run_id"`
	TotalResources int            `db:"total_resources" json:"total_resources"`
	Unfilled       types.JSONText `db:"unfilled" json:"unfilled_roles"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
	Members        []TeamMember   `db:"-" json:"members"`
}

// TeamMember: ресурс, назначенный на позицию роли.
type TeamMember struct {
	TeamID       uuid.UUID `db:"team_id" json:"team_id"`
	ResourceID   uuid.UUID `db:"resource_id" json:"resource_id"`
	ResourceName string    `db:"resource_name" json:"resource_name"`
	RoleName     string    `db:"role_name" json:"role_name"`
	Seat         int       `db:"seat" json:"seat"`
	Score        float64   `db:"score" json:"score"`
}
