package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"

	"github.com/patelvedant312/team-matching/internal/matching"
	"github.com/patelvedant312/team-matching/internal/models"
	"github.com/patelvedant312/team-matching/internal/pkg/apperror"
	"github.com/patelvedant312/team-matching/internal/repository"
	"github.com/patelvedant312/team-matching/internal/repository/common"
	"github.com/patelvedant312/team-matching/internal/validation"
)

// ProjectRepository описывает хранилище проектов.
type ProjectRepository interface {
	List(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]models.Project, error)
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Project, error)
	GetByIDs(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) ([]models.Project, error)
	Create(ctx context.Context, p *models.Project) error
	Update(ctx context.Context, p *models.Project) error
	Delete(ctx context.Context, orgID, id uuid.UUID) error
}

// ProjectInput: данные проекта от клиента.
type ProjectInput struct {
	Name              string         `json:"name"`
	RequiredResources types.JSONText `json:"required_resources"`
	NumberOfDays      int            `json:"number_of_days"`
	StartDate         matching.Date  `json:"start_date"`
	Technology        []string       `json:"technology"`
	Domain            []string       `json:"domain"`
}

// ProjectService управляет проектами организации.
type ProjectService struct {
	repo ProjectRepository
}

// NewProjectService создаёт сервис.
func NewProjectService(repo ProjectRepository) *ProjectService {
	return &ProjectService{repo: repo}
}

// List возвращает проекты организации.
func (s *ProjectService) List(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]models.Project, error) {
	projects, err := s.repo.List(ctx, orgID, limit, offset)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось загрузить проекты")
	}
	return projects, nil
}

// Get возвращает проект организации.
func (s *ProjectService) Get(ctx context.Context, orgID, id uuid.UUID) (*models.Project, error) {
	p, err := s.repo.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, mapProjectErr(err)
	}
	return p, nil
}

// Create проверяет и сохраняет проект.
func (s *ProjectService) Create(ctx context.Context, orgID uuid.UUID, in ProjectInput) (*models.Project, error) {
	p, err := newProject(orgID, in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, mapProjectErr(err)
	}
	return p, nil
}

// Update изменяет проект. Уже сформированная команда не пересчитывается.
func (s *ProjectService) Update(ctx context.Context, orgID, id uuid.UUID, in ProjectInput) (*models.Project, error) {
	p, err := newProject(orgID, in)
	if err != nil {
		return nil, err
	}
	p.ID = id
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, mapProjectErr(err)
	}
	return p, nil
}

// Delete удаляет проект и освобождает ресурсы его команды.
func (s *ProjectService) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, orgID, id); err != nil {
		return mapProjectErr(err)
	}
	return nil
}

func newProject(orgID uuid.UUID, in ProjectInput) (*models.Project, error) {
	name := strings.TrimSpace(in.Name)
	if err := validation.ValidateName("название проекта", name); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateProjectDays(in.NumberOfDays); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if in.StartDate.IsZero() {
		return nil, apperror.New(apperror.ErrCodeValidation, "start_date обязателен")
	}

	raw := jsonOrDefault(in.RequiredResources, "[]")
	if _, err := validation.ParseRoleRequirements(raw); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	return &models.Project{
		OrgID:             orgID,
		Name:              name,
		RequiredResources: raw,
		NumberOfDays:      in.NumberOfDays,
		StartDate:         time.Date(in.StartDate.Year(), in.StartDate.Month(), in.StartDate.Day(), 0, 0, 0, 0, time.UTC),
		Technology:        pq.StringArray(nonNil(in.Technology)),
		Domain:            pq.StringArray(nonNil(in.Domain)),
	}, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func mapProjectErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrProjectNotFound):
		return apperror.Wrap(err, apperror.ErrCodeNotFound, "проект не найден")
	case errors.Is(err, common.ErrAlreadyExists):
		return apperror.Wrap(err, apperror.ErrCodeConflict, "проект с таким названием уже существует")
	}
	return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "ошибка хранилища проектов")
}
