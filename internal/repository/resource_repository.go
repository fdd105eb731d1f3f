package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/patelvedant312/team-matching/internal/models"
	"github.com/patelvedant312/team-matching/internal/repository/common"
)

const resourceColumns = `id, org_id, name, rate, skills, past_job_titles, domain, available_date,
	team_id, on_bench, version, created_at, updated_at`

// ResourceRepository отвечает за специалистов организации.
type ResourceRepository struct {
	db *sqlx.DB
}

// NewResourceRepository создаёт новый экземпляр.
func NewResourceRepository(db *sqlx.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

// List возвращает ресурсы организации по фильтру.
func (r *ResourceRepository) List(ctx context.Context, orgID uuid.UUID, filter models.ResourceFilter) ([]models.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources WHERE org_id = $1`
	args := []interface{}{orgID}

	if filter.OnBench != nil {
		args = append(args, *filter.OnBench)
		query += fmt.Sprintf(" AND on_bench = $%d", len(args))
	}

	args = append(args, models.ClampLimit(filter.Limit), filter.Offset)
	query += fmt.Sprintf(" ORDER BY name, id LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	resources := []models.Resource{}
	if err := r.db.SelectContext(ctx, &resources, query, args...); err != nil {
		return nil, fmt.Errorf("resource repository: list: %w", err)
	}
	return resources, nil
}

// ListPool возвращает весь пул организации для запуска подбора.
func (r *ResourceRepository) ListPool(ctx context.Context, orgID uuid.UUID) ([]models.Resource, error) {
	return listPool(ctx, r.db, orgID)
}

func listPool(ctx context.Context, q sqlx.QueryerContext, orgID uuid.UUID) ([]models.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources WHERE org_id = $1 ORDER BY created_at, id`

	resources := []models.Resource{}
	if err := sqlx.SelectContext(ctx, q, &resources, query, orgID); err != nil {
		return nil, fmt.Errorf("resource repository: list pool: %w", err)
	}
	return resources, nil
}

// GetByID возвращает ресурс организации.
func (r *ResourceRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Resource, error) {
	return common.GetByID[models.Resource](ctx, r.db, "resources", orgID, id, ErrResourceNotFound)
}

// Create сохраняет новый ресурс.
func (r *ResourceRepository) Create(ctx context.Context, res *models.Resource) error {
	query := `
		INSERT INTO resources (id, org_id, name, rate, skills, past_job_titles, domain, available_date, on_bench)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE)
		RETURNING on_bench, version, created_at, updated_at
	`
	if res.ID == uuid.Nil {
		res.ID = uuid.New()
	}
	err := r.db.QueryRowxContext(ctx, query,
		res.ID, res.OrgID, res.Name, res.Rate, res.Skills, res.PastJobTitles, res.Domain, res.AvailableDate,
	).Scan(&res.OnBench, &res.Version, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return fmt.Errorf("resource repository: create: %w", err)
	}
	return nil
}

// BulkCreate вставляет ресурсы пачками в одной транзакции.
func (r *ResourceRepository) BulkCreate(ctx context.Context, resources []models.Resource) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		inserter := common.NewBatchInserter(tx,
			`INSERT INTO resources (id, org_id, name, rate, skills, past_job_titles, domain, available_date)`, 8, 200)

		for i := range resources {
			res := &resources[i]
			if res.ID == uuid.Nil {
				res.ID = uuid.New()
			}
			if err := inserter.Add(ctx,
				res.ID, res.OrgID, res.Name, res.Rate, res.Skills, res.PastJobTitles, res.Domain, res.AvailableDate,
			); err != nil {
				return fmt.Errorf("resource repository: bulk create: %w", err)
			}
		}
		if err := inserter.Flush(ctx); err != nil {
			return fmt.Errorf("resource repository: bulk create: %w", err)
		}
		return nil
	})
}

// Update изменяет профиль ресурса с проверкой версии.
// Занятость (team_id, on_bench) меняется только формированием команды.
func (r *ResourceRepository) Update(ctx context.Context, res *models.Resource) error {
	query := `
		UPDATE resources
		SET name = $3, rate = $4, skills = $5, past_job_titles = $6, domain = $7, available_date = $8,
		    version = version + 1, updated_at = $9
		WHERE id = $1 AND org_id = $2 AND version = $10
		RETURNING version, updated_at
	`
	now := time.Now()
	rows, err := r.db.QueryxContext(ctx, query,
		res.ID, res.OrgID, res.Name, res.Rate, res.Skills, res.PastJobTitles, res.Domain, res.AvailableDate,
		now, res.Version,
	)
	if err != nil {
		return fmt.Errorf("resource repository: update: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return fmt.Errorf("resource repository: update: %w", err)
		}
		if _, err := r.GetByID(ctx, res.OrgID, res.ID); err != nil {
			return err
		}
		return common.ErrVersionChanged
	}
	if err := rows.Scan(&res.Version, &res.UpdatedAt); err != nil {
		return fmt.Errorf("resource repository: update scan: %w", err)
	}
	return nil
}

// Delete удаляет ресурс организации.
func (r *ResourceRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM resources WHERE id = $1 AND org_id = $2`, id, orgID)
	if err != nil {
		return fmt.Errorf("resource repository: delete: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrResourceNotFound
	}
	return nil
}
