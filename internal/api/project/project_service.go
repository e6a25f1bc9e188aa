package project

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/kristinefung/personal-website-sub000/internal/api/technology"
	"github.com/kristinefung/personal-website-sub000/internal/types"
)

const publicListCacheKey = "projects:public"

var _ ProjectService = (*ProjectServiceImpl)(nil)

// ProjectService orchestrates project CRUD, resolving technology names
// to rows and keeping the public listing cache coherent.
type ProjectService interface {
	Create(ctx context.Context, params CreateProjectParams, createdBy *uuid.UUID) (*types.Project, error)
	GetByID(ctx context.Context, id uuid.UUID) (*types.Project, error)
	GetAll(ctx context.Context, includeDeleted bool) ([]types.Project, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateProjectParams, updatedBy uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID, deletedBy uuid.UUID) error
}

type ProjectServiceImpl struct {
	logger   *slog.Logger
	repo     ProjectRepo
	techRepo technology.TechnologyRepo
	cache    *cache.Cache
}

func NewProjectService(repo ProjectRepo, techRepo technology.TechnologyRepo, logger *slog.Logger) *ProjectServiceImpl {
	return &ProjectServiceImpl{
		logger:   logger,
		repo:     repo,
		techRepo: techRepo,
		cache:    cache.New(5*time.Minute, 10*time.Minute),
	}
}

func (s *ProjectServiceImpl) Create(ctx context.Context, params CreateProjectParams, createdBy *uuid.UUID) (*types.Project, error) {
	l := s.logger.With(slog.String("method", "Create"), slog.String("name", params.Name))

	if params.Name == "" {
		return nil, fmt.Errorf("project name is required: %w", types.ErrBadRequest)
	}

	techIDs, techs, err := s.resolveTechnologies(ctx, params.Technologies, createdBy)
	if err != nil {
		return nil, err
	}

	project, err := s.repo.Create(ctx, params, techIDs, createdBy)
	if err != nil {
		return nil, err
	}
	project.Technologies = techs

	s.cache.Delete(publicListCacheKey)
	l.InfoContext(ctx, "Project created", slog.String("projectID", project.ID.String()))
	return project, nil
}

func (s *ProjectServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*types.Project, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ProjectServiceImpl) GetAll(ctx context.Context, includeDeleted bool) ([]types.Project, error) {
	// Only the public listing is cached; admin reads always hit the DB.
	if !includeDeleted {
		if cached, found := s.cache.Get(publicListCacheKey); found {
			if projects, ok := cached.([]types.Project); ok {
				return projects, nil
			}
		}
	}

	projects, err := s.repo.GetAll(ctx, includeDeleted)
	if err != nil {
		return nil, err
	}

	if !includeDeleted {
		s.cache.Set(publicListCacheKey, projects, cache.DefaultExpiration)
	}
	return projects, nil
}

func (s *ProjectServiceImpl) Update(ctx context.Context, id uuid.UUID, params UpdateProjectParams, updatedBy uuid.UUID) error {
	l := s.logger.With(slog.String("method", "Update"), slog.String("projectID", id.String()))

	if params.Name != nil && *params.Name == "" {
		return fmt.Errorf("project name cannot be empty: %w", types.ErrBadRequest)
	}

	if hasScalarFields(params) {
		if err := s.repo.Update(ctx, id, params, updatedBy); err != nil {
			return err
		}
	} else if params.Technologies == nil {
		l.WarnContext(ctx, "Update called with no fields")
		return fmt.Errorf("no fields to update: %w", types.ErrBadRequest)
	}

	if params.Technologies != nil {
		techIDs, _, err := s.resolveTechnologies(ctx, *params.Technologies, &updatedBy)
		if err != nil {
			return err
		}
		if err := s.repo.ReplaceTechnologies(ctx, id, techIDs); err != nil {
			return err
		}
	}

	s.cache.Delete(publicListCacheKey)
	l.InfoContext(ctx, "Project updated")
	return nil
}

func (s *ProjectServiceImpl) Delete(ctx context.Context, id uuid.UUID, deletedBy uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, id, deletedBy); err != nil {
		return err
	}
	s.cache.Delete(publicListCacheKey)
	s.logger.InfoContext(ctx, "Project deleted", slog.String("projectID", id.String()))
	return nil
}

func (s *ProjectServiceImpl) resolveTechnologies(ctx context.Context, names []string, actor *uuid.UUID) ([]uuid.UUID, []types.Technology, error) {
	if len(names) == 0 {
		return nil, nil, nil
	}
	techs, err := s.techRepo.EnsureByNames(ctx, names, actor)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve technologies: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(techs))
	for _, t := range techs {
		ids = append(ids, t.ID)
	}
	return ids, techs, nil
}

func hasScalarFields(p UpdateProjectParams) bool {
	return p.Name != nil || p.Description != nil || p.GithubURL != nil ||
		p.DemoURL != nil || p.ImagePath != nil || p.SortOrder != nil
}
