package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/patelvedant312/team-matching/internal/models"
	"github.com/patelvedant312/team-matching/internal/pkg/apperror"
	"github.com/patelvedant312/team-matching/internal/repository"
	"github.com/patelvedant312/team-matching/internal/repository/common"
)

func TestResourceService_Create(t *testing.T) {
	repo := new(mockResourceRepo)
	svc := NewResourceService(repo)
	ctx := context.Background()
	orgID := uuid.New()

	repo.On("Create", ctx, mock.MatchedBy(func(r *models.Resource) bool {
		return r.OrgID == orgID && r.Name == "Anna" && string(r.PastJobTitles) == "[]" && r.Domain != nil
	})).Return(nil)

	res, err := svc.Create(ctx, orgID, ResourceInput{
		Name:   " Anna ",
		Rate:   40,
		Skills: []byte(`["go: expert"]`),
	})
	require.NoError(t, err)
	assert.Equal(t, "Anna", res.Name)
	assert.Nil(t, res.AvailableDate)
	repo.AssertExpectations(t)
}

func TestResourceService_CreateValidation(t *testing.T) {
	repo := new(mockResourceRepo)
	svc := NewResourceService(repo)
	ctx := context.Background()

	cases := map[string]ResourceInput{
		"пустое имя":           {Name: " ", Rate: 10},
		"отрицательная ставка": {Name: "Anna", Rate: -5},
		"навыки не читаются":   {Name: "Anna", Rate: 10, Skills: []byte(`true`)},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(ctx, uuid.New(), in)
			assert.True(t, apperror.IsValidation(err))
		})
	}
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestResourceService_UpdateConflict(t *testing.T) {
	repo := new(mockResourceRepo)
	svc := NewResourceService(repo)
	ctx := context.Background()
	orgID, id := uuid.New(), uuid.New()

	repo.On("Update", ctx, mock.MatchedBy(func(r *models.Resource) bool {
		return r.ID == id && r.Version == 3
	})).Return(common.ErrVersionChanged)

	_, err := svc.Update(ctx, orgID, id, ResourceInput{Name: "Anna", Rate: 10, Version: 3})
	assert.True(t, apperror.IsConflict(err))
}

func TestResourceService_GetNotFound(t *testing.T) {
	repo := new(mockResourceRepo)
	svc := NewResourceService(repo)
	ctx := context.Background()
	orgID, id := uuid.New(), uuid.New()

	repo.On("GetByID", ctx, orgID, id).Return(nil, repository.ErrResourceNotFound)

	_, err := svc.Get(ctx, orgID, id)
	assert.True(t, apperror.IsNotFound(err))
}

func TestResourceService_Import(t *testing.T) {
	repo := new(mockResourceRepo)
	svc := NewResourceService(repo)
	ctx := context.Background()
	orgID := uuid.New()

	repo.On("BulkCreate", ctx, mock.MatchedBy(func(rs []models.Resource) bool {
		return len(rs) == 2 && rs[0].OnBench && rs[1].AvailableDate != nil
	})).Return(nil)

	data := []byte(`[
		{"name": "Anna", "rate": 40, "skills": ["go: expert"], "past_job_titles": {"Backend": 5}},
		{"name": "Boris", "rate": 25, "skills": "python: intermediate", "available_date": "2024-07-01"}
	]`)
	out, err := svc.Import(ctx, orgID, data)
	require.NoError(t, err)
	assert.Len(t, out, 2)
	repo.AssertExpectations(t)
}

func TestResourceService_ImportRejects(t *testing.T) {
	repo := new(mockResourceRepo)
	svc := NewResourceService(repo)
	ctx := context.Background()

	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D}
	cases := map[string][]byte{
		"бинарный файл":  png,
		"не массив":      []byte(`{"name": "Anna"}`),
		"пустой массив":  []byte(`[]`),
		"плохой элемент": []byte(`[{"name": "Anna", "rate": -1}]`),
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Import(ctx, uuid.New(), data)
			assert.True(t, apperror.IsValidation(err))
		})
	}
	repo.AssertNotCalled(t, "BulkCreate", mock.Anything, mock.Anything)
}
