package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/patelvedant312/team-matching/internal/models"
)

const teamColumns = `id, project_id, org_id, run_id, total_resources, unfilled, created_at, updated_at`

// TeamRepository читает сформированные команды.
// Запись команд выполняется только через FormationRepository.
type TeamRepository struct {
	db *sqlx.DB
}

// NewTeamRepository создаёт новый экземпляр.
func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

// List возвращает команды организации вместе с участниками.
func (r *TeamRepository) List(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE org_id = $1 ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`

	teams := []models.Team{}
	if err := r.db.SelectContext(ctx, &teams, query, orgID, models.ClampLimit(limit), offset); err != nil {
		return nil, fmt.Errorf("team repository: list: %w", err)
	}
	if len(teams) == 0 {
		return teams, nil
	}

	ids := make([]uuid.UUID, len(teams))
	for i := range teams {
		ids[i] = teams[i].ID
	}
	members, err := listMembers(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range teams {
		teams[i].Members = members[teams[i].ID]
	}
	return teams, nil
}

// GetByID возвращает команду организации с участниками.
func (r *TeamRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Team, error) {
	return getTeam(ctx, r.db, `id = $1 AND org_id = $2`, id, orgID)
}

// GetByProject возвращает команду проекта.
func (r *TeamRepository) GetByProject(ctx context.Context, orgID, projectID uuid.UUID) (*models.Team, error) {
	return getTeam(ctx, r.db, `project_id = $1 AND org_id = $2`, projectID, orgID)
}

func getTeam(ctx context.Context, q sqlx.QueryerContext, where string, args ...interface{}) (*models.Team, error) {
	var team models.Team
	query := `SELECT ` + teamColumns + ` FROM teams WHERE ` + where
	if err := sqlx.GetContext(ctx, q, &team, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("team repository: get: %w", err)
	}

	members, err := listMembers(ctx, q, []uuid.UUID{team.ID})
	if err != nil {
		return nil, err
	}
	team.Members = members[team.ID]
	return &team, nil
}

func listMembers(ctx context.Context, q sqlx.QueryerContext, teamIDs []uuid.UUID) (map[uuid.UUID][]models.TeamMember, error) {
	query := `
		SELECT tm.team_id, tm.resource_id, r.name AS resource_name, tm.role_name, tm.seat, tm.score
		FROM team_members tm
		JOIN resources r ON r.id = tm.resource_id
		WHERE tm.team_id = ANY($1)
		ORDER BY tm.role_name, tm.seat
	`
	var rows []models.TeamMember
	if err := sqlx.SelectContext(ctx, q, &rows, query, pq.Array(teamIDs)); err != nil {
		return nil, fmt.Errorf("team repository: list members: %w", err)
	}

	out := make(map[uuid.UUID][]models.TeamMember, len(teamIDs))
	for _, m := range rows {
		out[m.TeamID] = append(out[m.TeamID], m)
	}
	return out, nil
}

// releaseProjectTeam возвращает участников команды проекта на скамейку и удаляет команду.
func releaseProjectTeam(ctx context.Context, tx *sqlx.Tx, orgID, projectID uuid.UUID) (*models.Team, error) {
	team, err := getTeam(ctx, tx, `project_id = $1 AND org_id = $2`, projectID, orgID)
	if err != nil {
		return nil, err
	}

	release := `
		UPDATE resources
		SET team_id = NULL, on_bench = TRUE, version = version + 1, updated_at = NOW()
		WHERE team_id = $1
	`
	if _, err := tx.ExecContext(ctx, release, team.ID); err != nil {
		return nil, fmt.Errorf("team repository: release resources: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, team.ID); err != nil {
		return nil, fmt.Errorf("team repository: delete team: %w", err)
	}
	return team, nil
}
