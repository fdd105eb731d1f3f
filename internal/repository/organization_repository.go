package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/patelvedant312/team-matching/internal/models"
)

// Ошибки уровня репозитория.
var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrResourceNotFound     = errors.New("resource not found")
	ErrProjectNotFound      = errors.New("project not found")
	ErrTeamNotFound         = errors.New("team not found")
)

// OrganizationRepository хранит организации и хэши их API-ключей.
type OrganizationRepository struct {
	db *sqlx.DB
}

// NewOrganizationRepository создаёт новый экземпляр.
func NewOrganizationRepository(db *sqlx.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

// Create сохраняет организацию.
func (r *OrganizationRepository) Create(ctx context.Context, org *models.Organization) error {
	query := `
		INSERT INTO organizations (id, name, api_key_hash)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`
	if org.ID == uuid.Nil {
		org.ID = uuid.New()
	}
	if err := r.db.QueryRowxContext(ctx, query, org.ID, org.Name, org.APIKeyHash).Scan(&org.CreatedAt); err != nil {
		return fmt.Errorf("organization repository: create: %w", err)
	}
	return nil
}

// GetByID возвращает организацию по идентификатору.
func (r *OrganizationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	var org models.Organization
	query := `SELECT id, name, api_key_hash, created_at FROM organizations WHERE id = $1`
	if err := r.db.GetContext(ctx, &org, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("organization repository: get by id: %w", err)
	}
	return &org, nil
}
