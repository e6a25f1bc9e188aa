package project

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kristinefung/personal-website-sub000/internal/types"
)

func newMockRepo(t *testing.T) (*PostgresProjectRepo, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresProjectRepo(mock, slog.Default()), mock
}

func projectRow(id uuid.UUID, name string, sortOrder int) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows([]string{
		"id", "name", "description", "github_url", "demo_url", "image_path",
		"sort_order", "created_at", "updated_at",
	}).AddRow(id, name, "a project", nil, nil, nil, sortOrder, now, now)
}

func TestProjectCreate(t *testing.T) {
	t.Run("SuccessWithTechnologies", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		projectID := uuid.New()
		techA := uuid.New()
		techB := uuid.New()
		actor := uuid.New()
		params := CreateProjectParams{Name: "portfolio", Description: "a project"}

		// Project insert and mapping inserts share one transaction.
		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO projects").
			WithArgs(params.Name, params.Description, params.GithubURL, params.DemoURL,
				params.ImagePath, params.SortOrder, &actor).
			WillReturnRows(projectRow(projectID, "portfolio", 0))
		mock.ExpectExec("INSERT INTO project_technologies").
			WithArgs(projectID, techA).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec("INSERT INTO project_technologies").
			WithArgs(projectID, techB).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()
		mock.ExpectRollback()

		project, err := repo.Create(context.Background(), params, []uuid.UUID{techA, techB}, &actor)

		assert.NoError(t, err)
		assert.Equal(t, projectID, project.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DuplicateNameRollsBack", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		params := CreateProjectParams{Name: "portfolio"}

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO projects").
			WillReturnError(&pgconn.PgError{Code: "23505"})
		mock.ExpectRollback()

		project, err := repo.Create(context.Background(), params, nil, nil)

		assert.Nil(t, project)
		assert.ErrorIs(t, err, types.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("MappingFailureRollsBack", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		projectID := uuid.New()
		techA := uuid.New()
		params := CreateProjectParams{Name: "portfolio", Description: "a project"}

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO projects").
			WillReturnRows(projectRow(projectID, "portfolio", 0))
		mock.ExpectExec("INSERT INTO project_technologies").
			WithArgs(projectID, techA).
			WillReturnError(errors.New("foreign key violation"))
		mock.ExpectRollback()

		project, err := repo.Create(context.Background(), params, []uuid.UUID{techA}, nil)

		assert.Nil(t, project)
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProjectGetAll(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	first := uuid.New()
	second := uuid.New()

	mock.ExpectQuery("ORDER BY sort_order, created_at DESC").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "description", "github_url", "demo_url", "image_path",
			"sort_order", "created_at", "updated_at", "deleted_at",
		}).
			AddRow(first, "first", "", nil, nil, nil, 1, now, now, nil).
			AddRow(second, "second", "", nil, nil, nil, 2, now, now, nil))
	mock.ExpectQuery("JOIN project_technologies").
		WithArgs(first).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "created_at", "updated_at"}).
			AddRow(uuid.New(), "Go", now, now))
	mock.ExpectQuery("JOIN project_technologies").
		WithArgs(second).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "created_at", "updated_at"}))

	projects, err := repo.GetAll(context.Background(), false)

	assert.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "first", projects[0].Name)
	require.Len(t, projects[0].Technologies, 1)
	assert.Empty(t, projects[1].Technologies)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectQuery("SELECT id, name, description").
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	project, err := repo.GetByID(context.Background(), id)

	assert.Nil(t, project)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectUpdate(t *testing.T) {
	t.Run("PartialFields", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		id := uuid.New()
		actor := uuid.New()
		name := "renamed"
		sortOrder := 5

		mock.ExpectExec("UPDATE projects SET name =").
			WithArgs(name, sortOrder, actor, pgxmock.AnyArg(), id).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.Update(context.Background(), id, UpdateProjectParams{
			Name:      &name,
			SortOrder: &sortOrder,
		}, actor)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		id := uuid.New()
		actor := uuid.New()
		name := "renamed"

		mock.ExpectExec("UPDATE projects SET name =").
			WithArgs(name, actor, pgxmock.AnyArg(), id).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.Update(context.Background(), id, UpdateProjectParams{Name: &name}, actor)

		assert.ErrorIs(t, err, types.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProjectReplaceTechnologies(t *testing.T) {
	t.Run("DeleteAndInsertInOneTx", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		projectID := uuid.New()
		techA := uuid.New()
		techB := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM project_technologies").
			WithArgs(projectID).
			WillReturnResult(pgxmock.NewResult("DELETE", 2))
		mock.ExpectExec("INSERT INTO project_technologies").
			WithArgs(projectID, techA).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec("INSERT INTO project_technologies").
			WithArgs(projectID, techB).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()
		mock.ExpectRollback()

		err := repo.ReplaceTechnologies(context.Background(), projectID, []uuid.UUID{techA, techB})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("InsertFailureRollsBack", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		projectID := uuid.New()
		techA := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM project_technologies").
			WithArgs(projectID).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mock.ExpectExec("INSERT INTO project_technologies").
			WithArgs(projectID, techA).
			WillReturnError(errors.New("foreign key violation"))
		mock.ExpectRollback()

		err := repo.ReplaceTechnologies(context.Background(), projectID, []uuid.UUID{techA})

		// The delete never commits on its own, so a failed insert
		// cannot leave the project without mappings.
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
