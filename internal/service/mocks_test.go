package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/patelvedant312/team-matching/internal/models"
	"github.com/patelvedant312/team-matching/internal/repository"
)

type mockResourceRepo struct {
	mock.Mock
}

func (m *mockResourceRepo) List(ctx context.Context, orgID uuid.UUID, filter models.ResourceFilter) ([]models.Resource, error) {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).([]models.Resource), args.Error(1)
}

func (m *mockResourceRepo) ListPool(ctx context.Context, orgID uuid.UUID) ([]models.Resource, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Resource), args.Error(1)
}

func (m *mockResourceRepo) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Resource, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Resource), args.Error(1)
}

func (m *mockResourceRepo) Create(ctx context.Context, res *models.Resource) error {
	return m.Called(ctx, res).Error(0)
}

func (m *mockResourceRepo) BulkCreate(ctx context.Context, resources []models.Resource) error {
	return m.Called(ctx, resources).Error(0)
}

func (m *mockResourceRepo) Update(ctx context.Context, res *models.Resource) error {
	return m.Called(ctx, res).Error(0)
}

func (m *mockResourceRepo) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	return m.Called(ctx, orgID, id).Error(0)
}

type mockProjectRepo struct {
	mock.Mock
}

func (m *mockProjectRepo) List(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]models.Project, error) {
	args := m.Called(ctx, orgID, limit, offset)
	return args.Get(0).([]models.Project), args.Error(1)
}

func (m *mockProjectRepo) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Project, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *mockProjectRepo) GetByIDs(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) ([]models.Project, error) {
	args := m.Called(ctx, orgID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Project), args.Error(1)
}

func (m *mockProjectRepo) Create(ctx context.Context, p *models.Project) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProjectRepo) Update(ctx context.Context, p *models.Project) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProjectRepo) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	return m.Called(ctx, orgID, id).Error(0)
}

type mockTeamRepo struct {
	mock.Mock
}

func (m *mockTeamRepo) List(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]models.Team, error) {
	args := m.Called(ctx, orgID, limit, offset)
	return args.Get(0).([]models.Team), args.Error(1)
}

func (m *mockTeamRepo) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Team, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *mockTeamRepo) GetByProject(ctx context.Context, orgID, projectID uuid.UUID) (*models.Team, error) {
	args := m.Called(ctx, orgID, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

// mockFormationTx: транзакция формирования.
type mockFormationTx struct {
	mock.Mock
}

func (m *mockFormationTx) Project(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *mockFormationTx) Pool(ctx context.Context) ([]models.Resource, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Resource), args.Error(1)
}

func (m *mockFormationTx) ReleaseTeam(ctx context.Context, projectID uuid.UUID) (*models.Team, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *mockFormationTx) SaveTeam(ctx context.Context, team *models.Team) error {
	return m.Called(ctx, team).Error(0)
}

// fakeFormationStore вызывает fn с подготовленной транзакцией и
// запоминает, чем она закончилась.
type fakeFormationStore struct {
	tx      *mockFormationTx
	calls   int
	lastErr error
}

func (s *fakeFormationStore) InOrganization(ctx context.Context, orgID uuid.UUID, fn func(repository.FormationTx) error) error {
	s.calls++
	s.lastErr = fn(s.tx)
	return s.lastErr
}

type publishedEvent struct {
	orgID     uuid.UUID
	eventType string
	payload   interface{}
}

type recordingPublisher struct {
	events []publishedEvent
}

func (p *recordingPublisher) PublishToOrganization(orgID uuid.UUID, eventType string, payload interface{}) {
	p.events = append(p.events, publishedEvent{orgID: orgID, eventType: eventType, payload: payload})
}
