package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/patelvedant312/team-matching/internal/models"
	"github.com/patelvedant312/team-matching/internal/repository/common"
)

const projectColumns = `id, org_id, name, required_resources, number_of_days, start_date, technology, domain,
	created_at, updated_at`

// ProjectRepository отвечает за проекты организации.
type ProjectRepository struct {
	db *sqlx.DB
}

// NewProjectRepository создаёт новый экземпляр.
func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// List возвращает проекты организации.
func (r *ProjectRepository) List(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE org_id = $1 ORDER BY start_date, name LIMIT $2 OFFSET $3`

	projects := []models.Project{}
	if err := r.db.SelectContext(ctx, &projects, query, orgID, models.ClampLimit(limit), offset); err != nil {
		return nil, fmt.Errorf("project repository: list: %w", err)
	}
	return projects, nil
}

// GetByID возвращает проект организации.
func (r *ProjectRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Project, error) {
	return getProject(ctx, r.db, orgID, id)
}

func getProject(ctx context.Context, q sqlx.QueryerContext, orgID, id uuid.UUID) (*models.Project, error) {
	return common.GetByID[models.Project](ctx, q, "projects", orgID, id, ErrProjectNotFound)
}

// GetByIDs возвращает проекты в порядке ids; отсутствующий проект: ошибка.
func (r *ProjectRepository) GetByIDs(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE org_id = $1 AND id = ANY($2)`

	var found []models.Project
	if err := r.db.SelectContext(ctx, &found, query, orgID, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("project repository: get by ids: %w", err)
	}

	byID := make(map[uuid.UUID]models.Project, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	projects := make([]models.Project, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
		}
		projects = append(projects, p)
	}
	return projects, nil
}

// Create сохраняет проект. Имя уникально в пределах организации.
func (r *ProjectRepository) Create(ctx context.Context, p *models.Project) error {
	query := `
		INSERT INTO projects (id, org_id, name, required_resources, number_of_days, start_date, technology, domain)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	err := r.db.QueryRowxContext(ctx, query,
		p.ID, p.OrgID, p.Name, p.RequiredResources, p.NumberOfDays, p.StartDate, p.Technology, p.Domain,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return common.ErrAlreadyExists
		}
		return fmt.Errorf("project repository: create: %w", err)
	}
	return nil
}

// Update изменяет проект.
func (r *ProjectRepository) Update(ctx context.Context, p *models.Project) error {
	query := `
		UPDATE projects
		SET name = $3, required_resources = $4, number_of_days = $5, start_date = $6, technology = $7, domain = $8,
		    updated_at = $9
		WHERE id = $1 AND org_id = $2
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		p.ID, p.OrgID, p.Name, p.RequiredResources, p.NumberOfDays, p.StartDate, p.Technology, p.Domain, time.Now(),
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProjectNotFound
		}
		if common.IsUniqueViolation(err) {
			return common.ErrAlreadyExists
		}
		return fmt.Errorf("project repository: update: %w", err)
	}
	return nil
}

// Delete удаляет проект. Команда удаляется каскадно, а её ресурсы
// возвращаются на скамейку в той же транзакции.
func (r *ProjectRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := common.LockOrganization(ctx, tx, orgID); err != nil {
			return err
		}
		if _, err := releaseProjectTeam(ctx, tx, orgID, id); err != nil && !errors.Is(err, ErrTeamNotFound) {
			return err
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = $1 AND org_id = $2`, id, orgID)
		if err != nil {
			return fmt.Errorf("project repository: delete: %w", err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return ErrProjectNotFound
		}
		return nil
	})
}
