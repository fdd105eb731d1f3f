package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/patelvedant312/team-matching/internal/logger"
	"github.com/patelvedant312/team-matching/internal/matching"
	"github.com/patelvedant312/team-matching/internal/models"
	"github.com/patelvedant312/team-matching/internal/pkg/apperror"
	"github.com/patelvedant312/team-matching/internal/repository"
	"github.com/patelvedant312/team-matching/internal/repository/common"
)

// FormationStore выполняет цикл формирования команды атомарно и под блокировкой организации.
type FormationStore interface {
	InOrganization(ctx context.Context, orgID uuid.UUID, fn func(repository.FormationTx) error) error
}

// TeamRepository описывает чтение команд.
type TeamRepository interface {
	List(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]models.Team, error)
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Team, error)
	GetByProject(ctx context.Context, orgID, projectID uuid.UUID) (*models.Team, error)
}

// EventPublisher рассылает события подписчикам организации.
type EventPublisher interface {
	PublishToOrganization(orgID uuid.UUID, eventType string, payload interface{})
}

// MatchOverrides переопределяют параметры движка на один запуск.
type MatchOverrides struct {
	Weights        *matching.Weights `json:"weights,omitempty"`
	InfeasibleCost *float64          `json:"infeasible_cost,omitempty"`
	OrgScoping     *bool             `json:"org_scoping,omitempty"`
}

// FormationResult: сохранённая команда и метаданные запуска.
type FormationResult struct {
	Team   *models.Team     `json:"team"`
	Result *matching.Result `json:"result"`
}

// TeamFormationService вызывает движок подбора и фиксирует его результат.
type TeamFormationService struct {
	store     FormationStore
	teams     TeamRepository
	projects  ProjectRepository
	resources ResourceRepository
	engine    *matching.Engine
	events    EventPublisher
	log       logrus.FieldLogger
}

// NewTeamFormationService создаёт сервис. events может быть nil.
func NewTeamFormationService(
	store FormationStore,
	teams TeamRepository,
	projects ProjectRepository,
	resources ResourceRepository,
	engine *matching.Engine,
	events EventPublisher,
) *TeamFormationService {
	return &TeamFormationService{
		store:     store,
		teams:     teams,
		projects:  projects,
		resources: resources,
		engine:    engine,
		events:    events,
		log:       logger.Component("team_formation"),
	}
}

// FormTeam подбирает команду проекту и сохраняет её.
//
// Чтение пула, запуск движка и запись назначений выполняются в одной
// транзакции под блокировкой организации, поэтому два параллельных запроса
// не могут занять один и тот же ресурс. Если у проекта уже есть команда, её
// участники сначала возвращаются в пул. Ошибка движка откатывает всё.
func (s *TeamFormationService) FormTeam(ctx context.Context, orgID, projectID uuid.UUID, ov *MatchOverrides) (*FormationResult, error) {
	engine, err := s.engineFor(ov, true)
	if err != nil {
		return nil, err
	}

	var out FormationResult
	err = s.store.InOrganization(ctx, orgID, func(tx repository.FormationTx) error {
		project, err := tx.Project(ctx, projectID)
		if err != nil {
			return err
		}

		if _, err := tx.ReleaseTeam(ctx, projectID); err != nil && !errors.Is(err, repository.ErrTeamNotFound) {
			return err
		}

		pool, err := tx.Pool(ctx)
		if err != nil {
			return err
		}

		in, err := buildInput([]models.Project{*project}, pool)
		if err != nil {
			return apperror.Wrap(err, apperror.ErrCodeValidation, "сохранённые данные не читаются")
		}

		result, err := engine.Run(in)
		if err != nil {
			return err
		}

		team, err := teamFromResult(projectID, result)
		if err != nil {
			return err
		}
		if err := tx.SaveTeam(ctx, team); err != nil {
			return err
		}

		out = FormationResult{Team: team, Result: result}
		return nil
	})
	if err != nil {
		return nil, s.mapErr(err)
	}

	s.log.WithFields(logrus.Fields{
		"org_id":     orgID,
		"project_id": projectID,
		"run_id":     out.Result.RunID,
		"members":    len(out.Team.Members),
		"unfilled":   out.Result.UnfilledTotal(),
	}).Info("команда сформирована")

	s.publish(orgID, models.EventTeamFormed, out.Team)
	return &out, nil
}

// ReleaseTeam распускает команду проекта и возвращает её ресурсы в пул.
func (s *TeamFormationService) ReleaseTeam(ctx context.Context, orgID, projectID uuid.UUID) (*models.Team, error) {
	var released *models.Team
	err := s.store.InOrganization(ctx, orgID, func(tx repository.FormationTx) error {
		team, err := tx.ReleaseTeam(ctx, projectID)
		if err != nil {
			return err
		}
		released = team
		return nil
	})
	if err != nil {
		return nil, s.mapErr(err)
	}

	s.log.WithFields(logrus.Fields{"org_id": orgID, "project_id": projectID}).Info("команда распущена")
	s.publish(orgID, models.EventTeamReleased, released)
	return released, nil
}

// Preview подбирает команды сразу нескольким проектам без сохранения.
// Проекты и пул загружаются параллельно.
func (s *TeamFormationService) Preview(ctx context.Context, orgID uuid.UUID, projectIDs []uuid.UUID, ov *MatchOverrides) (*matching.Result, error) {
	if len(projectIDs) == 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "укажите хотя бы один проект")
	}
	engine, err := s.engineFor(ov, true)
	if err != nil {
		return nil, err
	}

	var (
		projects []models.Project
		pool     []models.Resource
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		projects, err = s.projects.GetByIDs(gctx, orgID, projectIDs)
		return err
	})
	g.Go(func() error {
		var err error
		pool, err = s.resources.ListPool(gctx, orgID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, s.mapErr(err)
	}

	in, err := buildInput(projects, pool)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, "сохранённые данные не читаются")
	}

	result, err := engine.Run(in)
	if err != nil {
		return nil, s.mapErr(err)
	}
	return result, nil
}

// Run выполняет подбор над данными из запроса, не обращаясь к хранилищу.
func (s *TeamFormationService) Run(in matching.Input, ov *MatchOverrides) (*matching.Result, error) {
	engine, err := s.engineFor(ov, false)
	if err != nil {
		return nil, err
	}
	result, err := engine.Run(in)
	if err != nil {
		return nil, s.mapErr(err)
	}
	return result, nil
}

// ListTeams возвращает команды организации.
func (s *TeamFormationService) ListTeams(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]models.Team, error) {
	teams, err := s.teams.List(ctx, orgID, limit, offset)
	if err != nil {
		return nil, s.mapErr(err)
	}
	return teams, nil
}

// GetTeam возвращает команду организации.
func (s *TeamFormationService) GetTeam(ctx context.Context, orgID, id uuid.UUID) (*models.Team, error) {
	team, err := s.teams.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, s.mapErr(err)
	}
	return team, nil
}

// engineFor возвращает движок с учётом переопределений. Для сохраняемых
// запусков область организации включена всегда.
func (s *TeamFormationService) engineFor(ov *MatchOverrides, forceOrgScoping bool) (*matching.Engine, error) {
	cfg := s.engine.Config()
	if ov != nil {
		if ov.Weights != nil {
			cfg.Weights = *ov.Weights
		}
		if ov.InfeasibleCost != nil {
			cfg.InfeasibleCost = *ov.InfeasibleCost
		}
		if ov.OrgScoping != nil {
			cfg.OrgScoping = *ov.OrgScoping
		}
	}
	if forceOrgScoping {
		cfg.OrgScoping = true
	}
	if cfg == s.engine.Config() {
		return s.engine, nil
	}

	engine, err := s.engine.WithConfig(cfg)
	if err != nil {
		return nil, s.mapErr(err)
	}
	return engine, nil
}

func (s *TeamFormationService) publish(orgID uuid.UUID, eventType string, payload interface{}) {
	if s.events == nil {
		return
	}
	s.events.PublishToOrganization(orgID, eventType, payload)
}

func (s *TeamFormationService) mapErr(err error) error {
	if _, ok := apperror.As(err); ok {
		return err
	}

	var verr *matching.ValidationError
	var serr *matching.SolverError
	switch {
	case errors.As(err, &verr):
		return apperror.Wrap(err, apperror.ErrCodeValidation, verr.Error())
	case errors.As(err, &serr):
		s.log.WithError(err).Error("ошибка решателя")
		return apperror.Wrap(err, apperror.ErrCodeMatching, "не удалось построить назначение")
	case errors.Is(err, repository.ErrProjectNotFound):
		return apperror.Wrap(err, apperror.ErrCodeNotFound, "проект не найден")
	case errors.Is(err, repository.ErrTeamNotFound):
		return apperror.ErrTeamNotFound
	case errors.Is(err, common.ErrVersionChanged), errors.Is(err, common.ErrAlreadyExists):
		return apperror.Wrap(err, apperror.ErrCodeConflict, "состав ресурсов изменился во время подбора, повторите запрос")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apperror.Wrap(err, apperror.ErrCodeInternal, "запрос прерван")
	}
	return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "ошибка хранилища")
}

func teamFromResult(projectID uuid.UUID, result *matching.Result) (*models.Team, error) {
	unfilled, err := json.Marshal(result.Unfilled)
	if err != nil {
		return nil, fmt.Errorf("team: unfilled: %w", err)
	}

	team := &models.Team{
		ID:        uuid.New(),
		ProjectID: projectID,
		RunID:     result.RunID,
		Unfilled:  unfilled,
		Members:   make([]models.TeamMember, 0, len(result.Assignments)),
	}
	for _, a := range result.Assignments {
		team.Members = append(team.Members, models.TeamMember{
			TeamID:       team.ID,
			ResourceID:   a.ResourceID,
			ResourceName: a.ResourceName,
			RoleName:     a.Role,
			Seat:         a.Seat,
			Score:        a.Score,
		})
	}
	return team, nil
}
