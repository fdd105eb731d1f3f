package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"

	"github.com/patelvedant312/team-matching/internal/logger"
	"github.com/patelvedant312/team-matching/internal/matching"
	"github.com/patelvedant312/team-matching/internal/models"
	"github.com/patelvedant312/team-matching/internal/pkg/apperror"
	"github.com/patelvedant312/team-matching/internal/repository"
	"github.com/patelvedant312/team-matching/internal/repository/common"
	"github.com/patelvedant312/team-matching/internal/validation"
)

// ResourceRepository описывает хранилище ресурсов.
type ResourceRepository interface {
	List(ctx context.Context, orgID uuid.UUID, filter models.ResourceFilter) ([]models.Resource, error)
	ListPool(ctx context.Context, orgID uuid.UUID) ([]models.Resource, error)
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Resource, error)
	Create(ctx context.Context, res *models.Resource) error
	BulkCreate(ctx context.Context, resources []models.Resource) error
	Update(ctx context.Context, res *models.Resource) error
	Delete(ctx context.Context, orgID, id uuid.UUID) error
}

// ResourceInput: данные ресурса от клиента.
type ResourceInput struct {
	Name          string         `json:"name"`
	Rate          float64        `json:"rate"`
	Skills        types.JSONText `json:"skills"`
	PastJobTitles types.JSONText `json:"past_job_titles"`
	Domain        []string       `json:"domain"`
	AvailableDate *matching.Date `json:"available_date"`
	// Version обязателен при обновлении.
	Version int `json:"version"`
}

// MaxImportResources ограничивает размер одной загрузки.
const MaxImportResources = 5000

// ResourceService управляет пулом специалистов организации.
type ResourceService struct {
	repo ResourceRepository
}

// NewResourceService создаёт сервис.
func NewResourceService(repo ResourceRepository) *ResourceService {
	return &ResourceService{repo: repo}
}

// List возвращает ресурсы организации.
func (s *ResourceService) List(ctx context.Context, orgID uuid.UUID, filter models.ResourceFilter) ([]models.Resource, error) {
	resources, err := s.repo.List(ctx, orgID, filter)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось загрузить ресурсы")
	}
	return resources, nil
}

// Get возвращает ресурс организации.
func (s *ResourceService) Get(ctx context.Context, orgID, id uuid.UUID) (*models.Resource, error) {
	res, err := s.repo.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, mapResourceErr(err)
	}
	return res, nil
}

// Create проверяет и сохраняет новый ресурс. Новый ресурс всегда свободен.
func (s *ResourceService) Create(ctx context.Context, orgID uuid.UUID, in ResourceInput) (*models.Resource, error) {
	res, err := newResource(orgID, in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, res); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать ресурс")
	}
	return res, nil
}

// Update меняет профиль ресурса. Устаревшая версия даёт конфликт.
func (s *ResourceService) Update(ctx context.Context, orgID, id uuid.UUID, in ResourceInput) (*models.Resource, error) {
	res, err := newResource(orgID, in)
	if err != nil {
		return nil, err
	}
	res.ID = id
	res.Version = in.Version

	if err := s.repo.Update(ctx, res); err != nil {
		return nil, mapResourceErr(err)
	}
	return s.Get(ctx, orgID, id)
}

// Delete удаляет ресурс.
func (s *ResourceService) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, orgID, id); err != nil {
		return mapResourceErr(err)
	}
	return nil
}

// Import загружает JSON-массив ресурсов. Бинарные файлы отклоняются до разбора.
func (s *ResourceService) Import(ctx context.Context, orgID uuid.UUID, data []byte) ([]models.Resource, error) {
	if kind, _ := filetype.Match(data); kind != filetype.Unknown {
		return nil, apperror.New(apperror.ErrCodeValidation,
			fmt.Sprintf("ожидается JSON, получен файл типа %s", kind.MIME.Value))
	}

	var inputs []ResourceInput
	if err := json.Unmarshal(data, &inputs); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, "ожидается JSON-массив ресурсов")
	}
	if len(inputs) == 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "файл не содержит ресурсов")
	}
	if len(inputs) > MaxImportResources {
		return nil, apperror.New(apperror.ErrCodeValidation,
			fmt.Sprintf("за один раз можно загрузить не более %d ресурсов", MaxImportResources))
	}

	resources := make([]models.Resource, 0, len(inputs))
	for i, in := range inputs {
		res, err := newResource(orgID, in)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, fmt.Sprintf("ресурс #%d", i+1))
		}
		res.OnBench = true
		res.Version = 1
		resources = append(resources, *res)
	}

	if err := s.repo.BulkCreate(ctx, resources); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось импортировать ресурсы")
	}

	logger.L().WithFields(map[string]interface{}{
		"org_id": orgID,
		"count":  len(resources),
	}).Info("resources: импорт завершён")
	return resources, nil
}

func newResource(orgID uuid.UUID, in ResourceInput) (*models.Resource, error) {
	name := strings.TrimSpace(in.Name)
	if err := validation.ValidateName("имя ресурса", name); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateRate(in.Rate); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateSkills(in.Skills); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateExperience(in.PastJobTitles); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	res := &models.Resource{
		OrgID:         orgID,
		Name:          name,
		Rate:          in.Rate,
		Skills:        jsonOrDefault(in.Skills, "[]"),
		PastJobTitles: jsonOrDefault(in.PastJobTitles, "[]"),
		Domain:        pq.StringArray(nonNil(in.Domain)),
	}
	if in.AvailableDate != nil && !in.AvailableDate.IsZero() {
		t := in.AvailableDate.Time
		res.AvailableDate = &t
	}
	return res, nil
}

func mapResourceErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrResourceNotFound):
		return apperror.ErrResourceNotFound
	case errors.Is(err, common.ErrVersionChanged):
		return apperror.Wrap(err, apperror.ErrCodeConflict, "ресурс изменён другим запросом, обновите данные")
	}
	return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "ошибка хранилища ресурсов")
}
