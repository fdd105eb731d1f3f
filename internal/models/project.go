package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

// Project описывает проект и его потребность в ролях.
// RequiredResources: JSON-список {"role", "skills", "quantity"}.
type Project struct {
	ID                uuid.UUID      `db:"id" json:"id"`
	OrgID             uuid.UUID      `db:"org_id" json:"org_id"`
	Name              string         `db:"name" json:"name"`
	RequiredResources types.JSONText `db:"required_resources" json:"required_resources"`
	NumberOfDays      int            `db:"number_of_days" json:"number_of_days"`
	StartDate         time.Time      `db:"start_date" json:"start_date"`
	Technology        pq.StringArray `db:"technology" json:"technology"`
	Domain            pq.StringArray `db:"domain" json:"domain"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updated_at"`
}
