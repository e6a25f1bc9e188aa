package project

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kristinefung/personal-website-sub000/internal/types"
)

type MockProjectRepo struct {
	mock.Mock
}

func (m *MockProjectRepo) Create(ctx context.Context, params CreateProjectParams, techIDs []uuid.UUID, createdBy *uuid.UUID) (*types.Project, error) {
	args := m.Called(ctx, params, techIDs, createdBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Project), args.Error(1)
}

func (m *MockProjectRepo) GetByID(ctx context.Context, id uuid.UUID) (*types.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Project), args.Error(1)
}

func (m *MockProjectRepo) GetAll(ctx context.Context, includeDeleted bool) ([]types.Project, error) {
	args := m.Called(ctx, includeDeleted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Project), args.Error(1)
}

func (m *MockProjectRepo) Update(ctx context.Context, id uuid.UUID, params UpdateProjectParams, updatedBy uuid.UUID) error {
	args := m.Called(ctx, id, params, updatedBy)
	return args.Error(0)
}

func (m *MockProjectRepo) ReplaceTechnologies(ctx context.Context, projectID uuid.UUID, techIDs []uuid.UUID) error {
	args := m.Called(ctx, projectID, techIDs)
	return args.Error(0)
}

func (m *MockProjectRepo) SoftDelete(ctx context.Context, id uuid.UUID, deletedBy uuid.UUID) error {
	args := m.Called(ctx, id, deletedBy)
	return args.Error(0)
}

func (m *MockProjectRepo) HardDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockTechnologyRepo struct {
	mock.Mock
}

func (m *MockTechnologyRepo) Create(ctx context.Context, name string, createdBy *uuid.UUID) (*types.Technology, error) {
	args := m.Called(ctx, name, createdBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Technology), args.Error(1)
}

func (m *MockTechnologyRepo) GetByID(ctx context.Context, id uuid.UUID) (*types.Technology, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Technology), args.Error(1)
}

func (m *MockTechnologyRepo) GetAll(ctx context.Context, includeDeleted bool) ([]types.Technology, error) {
	args := m.Called(ctx, includeDeleted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Technology), args.Error(1)
}

func (m *MockTechnologyRepo) Update(ctx context.Context, id uuid.UUID, name string, updatedBy uuid.UUID) error {
	args := m.Called(ctx, id, name, updatedBy)
	return args.Error(0)
}

func (m *MockTechnologyRepo) SoftDelete(ctx context.Context, id uuid.UUID, deletedBy uuid.UUID) error {
	args := m.Called(ctx, id, deletedBy)
	return args.Error(0)
}

func (m *MockTechnologyRepo) HardDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTechnologyRepo) EnsureByNames(ctx context.Context, names []string, createdBy *uuid.UUID) ([]types.Technology, error) {
	args := m.Called(ctx, names, createdBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Technology), args.Error(1)
}

func TestProjectServiceCreate(t *testing.T) {
	t.Run("ResolvesTechnologyNames", func(t *testing.T) {
		repo := new(MockProjectRepo)
		techRepo := new(MockTechnologyRepo)
		service := NewProjectService(repo, techRepo, slog.Default())

		ctx := context.Background()
		actor := uuid.New()
		reactID := uuid.New()
		nodeID := uuid.New()
		params := CreateProjectParams{
			Name:         "portfolio",
			Technologies: []string{"React", "Node.js"},
		}

		techRepo.On("EnsureByNames", ctx, []string{"React", "Node.js"}, &actor).
			Return([]types.Technology{
				{ID: reactID, Name: "React"},
				{ID: nodeID, Name: "Node.js"},
			}, nil).Once()
		repo.On("Create", ctx, params, []uuid.UUID{reactID, nodeID}, &actor).
			Return(&types.Project{ID: uuid.New(), Name: "portfolio"}, nil).Once()

		project, err := service.Create(ctx, params, &actor)

		assert.NoError(t, err)
		require.Len(t, project.Technologies, 2)
		assert.Equal(t, "React", project.Technologies[0].Name)
		repo.AssertExpectations(t)
		techRepo.AssertExpectations(t)
	})

	t.Run("EmptyNameRejected", func(t *testing.T) {
		repo := new(MockProjectRepo)
		techRepo := new(MockTechnologyRepo)
		service := NewProjectService(repo, techRepo, slog.Default())

		project, err := service.Create(context.Background(), CreateProjectParams{}, nil)

		assert.Nil(t, project)
		assert.ErrorIs(t, err, types.ErrBadRequest)
		repo.AssertNotCalled(t, "Create")
	})
}

func TestProjectServiceUpdate(t *testing.T) {
	t.Run("TechnologyListReplacesMappings", func(t *testing.T) {
		repo := new(MockProjectRepo)
		techRepo := new(MockTechnologyRepo)
		service := NewProjectService(repo, techRepo, slog.Default())

		ctx := context.Background()
		id := uuid.New()
		actor := uuid.New()
		goID := uuid.New()
		techs := []string{"Go"}
		params := UpdateProjectParams{Technologies: &techs}

		techRepo.On("EnsureByNames", ctx, techs, &actor).
			Return([]types.Technology{{ID: goID, Name: "Go"}}, nil).Once()
		repo.On("ReplaceTechnologies", ctx, id, []uuid.UUID{goID}).Return(nil).Once()

		err := service.Update(ctx, id, params, actor)

		assert.NoError(t, err)
		// Nothing else changed, so the scalar update query is skipped.
		repo.AssertNotCalled(t, "Update")
		repo.AssertExpectations(t)
		techRepo.AssertExpectations(t)
	})

	t.Run("NoFieldsRejected", func(t *testing.T) {
		repo := new(MockProjectRepo)
		techRepo := new(MockTechnologyRepo)
		service := NewProjectService(repo, techRepo, slog.Default())

		err := service.Update(context.Background(), uuid.New(), UpdateProjectParams{}, uuid.New())

		assert.ErrorIs(t, err, types.ErrBadRequest)
	})
}

func TestProjectServiceGetAllCaching(t *testing.T) {
	repo := new(MockProjectRepo)
	techRepo := new(MockTechnologyRepo)
	service := NewProjectService(repo, techRepo, slog.Default())

	ctx := context.Background()
	projects := []types.Project{{ID: uuid.New(), Name: "portfolio"}}

	// One DB hit serves repeated public listings.
	repo.On("GetAll", ctx, false).Return(projects, nil).Once()

	first, err := service.GetAll(ctx, false)
	assert.NoError(t, err)
	second, err := service.GetAll(ctx, false)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
	repo.AssertExpectations(t)

	// Mutations invalidate the cached listing.
	id := uuid.New()
	actor := uuid.New()
	repo.On("SoftDelete", ctx, id, actor).Return(nil).Once()
	repo.On("GetAll", ctx, false).Return([]types.Project{}, nil).Once()

	require.NoError(t, service.Delete(ctx, id, actor))

	after, err := service.GetAll(ctx, false)
	assert.NoError(t, err)
	assert.Empty(t, after)
	repo.AssertExpectations(t)

	// Admin listings bypass the cache entirely.
	repo.On("GetAll", ctx, true).Return(projects, nil).Twice()
	_, _ = service.GetAll(ctx, true)
	_, _ = service.GetAll(ctx, true)
	repo.AssertExpectations(t)
}
