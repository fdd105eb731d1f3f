package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/patelvedant312/team-matching/internal/models"
	"github.com/patelvedant312/team-matching/internal/repository/common"
)

// FormationTx: операции, доступные внутри транзакции формирования команды.
// Все чтения и записи видят одно и то же состояние и фиксируются вместе.
type FormationTx interface {
	Project(ctx context.Context, projectID uuid.UUID) (*models.Project, error)
	Pool(ctx context.Context) ([]models.Resource, error)
	ReleaseTeam(ctx context.Context, projectID uuid.UUID) (*models.Team, error)
	SaveTeam(ctx context.Context, team *models.Team) error
}

// FormationRepository сериализует цикл "прочитать пул → подобрать → записать"
// в пределах организации с помощью pg_advisory_xact_lock.
type FormationRepository struct {
	db *sqlx.DB
}

// NewFormationRepository создаёт новый экземпляр.
func NewFormationRepository(db *sqlx.DB) *FormationRepository {
	return &FormationRepository{db: db}
}

// InOrganization выполняет fn в транзакции под блокировкой организации.
// Ошибка fn откатывает все изменения.
func (r *FormationRepository) InOrganization(ctx context.Context, orgID uuid.UUID, fn func(FormationTx) error) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := common.LockOrganization(ctx, tx, orgID); err != nil {
			return err
		}
		return fn(&formationTx{tx: tx, orgID: orgID})
	})
}

type formationTx struct {
	tx    *sqlx.Tx
	orgID uuid.UUID
}

func (f *formationTx) Project(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	return getProject(ctx, f.tx, f.orgID, projectID)
}

func (f *formationTx) Pool(ctx context.Context) ([]models.Resource, error) {
	return listPool(ctx, f.tx, f.orgID)
}

func (f *formationTx) ReleaseTeam(ctx context.Context, projectID uuid.UUID) (*models.Team, error) {
	return releaseProjectTeam(ctx, f.tx, f.orgID, projectID)
}

// SaveTeam создаёт команду, добавляет участников и отмечает их занятыми.
// Если кто-то из ресурсов успели занять, возвращается common.ErrVersionChanged.
func (f *formationTx) SaveTeam(ctx context.Context, team *models.Team) error {
	if team.ID == uuid.Nil {
		team.ID = uuid.New()
	}
	team.OrgID = f.orgID
	team.TotalResources = len(team.Members)

	insertTeam := `
		INSERT INTO teams (id, project_id, org_id, run_id, total_resources, unfilled)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	err := f.tx.QueryRowxContext(ctx, insertTeam,
		team.ID, team.ProjectID, team.OrgID, team.RunID, team.TotalResources, team.Unfilled,
	).Scan(&team.CreatedAt, &team.UpdatedAt)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return common.ErrAlreadyExists
		}
		return fmt.Errorf("formation repository: insert team: %w", err)
	}

	if len(team.Members) == 0 {
		return nil
	}

	inserter := common.NewBatchInserter(f.tx,
		`INSERT INTO team_members (team_id, resource_id, role_name, seat, score)`, 5, 200)
	ids := make([]uuid.UUID, 0, len(team.Members))
	for i := range team.Members {
		m := &team.Members[i]
		m.TeamID = team.ID
		ids = append(ids, m.ResourceID)
		if err := inserter.Add(ctx, m.TeamID, m.ResourceID, m.RoleName, m.Seat, m.Score); err != nil {
			return fmt.Errorf("formation repository: insert members: %w", err)
		}
	}
	if err := inserter.Flush(ctx); err != nil {
		if common.IsUniqueViolation(err) {
			return common.ErrVersionChanged
		}
		return fmt.Errorf("formation repository: insert members: %w", err)
	}

	commit := `
		UPDATE resources
		SET team_id = $1, on_bench = FALSE, version = version + 1, updated_at = NOW()
		WHERE org_id = $2 AND id = ANY($3) AND team_id IS NULL AND on_bench
	`
	result, err := f.tx.ExecContext(ctx, commit, team.ID, f.orgID, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("formation repository: commit resources: %w", err)
	}
	if n, _ := result.RowsAffected(); int(n) != len(ids) {
		return common.ErrVersionChanged
	}
	return nil
}
