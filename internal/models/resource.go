package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

// Resource описывает специалиста организации.
// Skills и PastJobTitles хранятся как JSONB в любом из исторических форматов.
type Resource struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	OrgID         uuid.UUID      `db:"org_id" json:"org_id"`
	Name          string         `db:"name" json:"name"`
	Rate          float64        `db:"rate" json:"rate"`
	Skills        types.JSONText `db:"skills" json:"skills"`
	PastJobTitles types.JSONText `db:"past_job_titles" json:"past_job_titles"`
	Domain        pq.StringArray `db:"domain" json:"domain"`
	AvailableDate *time.Time     `db:"available_date" json:"available_date,omitempty"`
	TeamID        *uuid.UUID     `db:"team_id" json:"team_id,omitempty"`
	OnBench       bool           `db:"on_bench" json:"on_bench"`
	Version       int            `db:"version" json:"version"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// Committed сообщает, что ресурс уже занят в команде.
func (r *Resource) Committed() bool {
	return r.TeamID != nil || !r.OnBench
}

// ResourceFilter задаёт выборку ресурсов организации.
type ResourceFilter struct {
	OnBench *bool
	Limit   int
	Offset  int
}
