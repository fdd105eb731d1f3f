package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization: владелец ресурсов и проектов; область видимости всех данных.
type Organization struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	APIKeyHash string    `db:"api_key_hash" json:"-"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
