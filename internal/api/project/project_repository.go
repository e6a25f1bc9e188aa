package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	database "github.com/kristinefung/personal-website-sub000/app/db"
	"github.com/kristinefung/personal-website-sub000/internal/types"
)

var _ ProjectRepo = (*PostgresProjectRepo)(nil)

// ProjectRepo defines the contract for project persistence.
type ProjectRepo interface {
	// Create inserts a project and its technology mappings in one
	// transaction. Returns types.ErrConflict on a duplicate name.
	Create(ctx context.Context, params CreateProjectParams, techIDs []uuid.UUID, createdBy *uuid.UUID) (*types.Project, error)

	GetByID(ctx context.Context, id uuid.UUID) (*types.Project, error)
	GetAll(ctx context.Context, includeDeleted bool) ([]types.Project, error)

	// Update applies the non-nil fields of params and stamps
	// updated_by/updated_at. Technology replacement is separate.
	Update(ctx context.Context, id uuid.UUID, params UpdateProjectParams, updatedBy uuid.UUID) error

	// ReplaceTechnologies swaps the whole mapping set for the project.
	// Delete and insert run inside a single transaction so a crash
	// cannot leave the mapping set empty.
	ReplaceTechnologies(ctx context.Context, projectID uuid.UUID, techIDs []uuid.UUID) error

	SoftDelete(ctx context.Context, id uuid.UUID, deletedBy uuid.UUID) error
	HardDelete(ctx context.Context, id uuid.UUID) error
}

type PostgresProjectRepo struct {
	logger *slog.Logger
	db     database.DB
}

func NewPostgresProjectRepo(db database.DB, logger *slog.Logger) *PostgresProjectRepo {
	return &PostgresProjectRepo{
		logger: logger,
		db:     db,
	}
}

func (r *PostgresProjectRepo) Create(ctx context.Context, params CreateProjectParams, techIDs []uuid.UUID, createdBy *uuid.UUID) (*types.Project, error) {
	ctx, span := otel.Tracer("ProjectRepo").Start(ctx, "Create", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "projects"),
		attribute.String("project.name", params.Name),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "Create"), slog.String("name", params.Name))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("database error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var project types.Project
	err = tx.QueryRow(ctx,
		`INSERT INTO projects (name, description, github_url, demo_url, image_path, sort_order, created_by, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
         RETURNING id, name, description, github_url, demo_url, image_path, sort_order, created_at, updated_at`,
		params.Name, params.Description, params.GithubURL, params.DemoURL, params.ImagePath, params.SortOrder, createdBy,
	).Scan(&project.ID, &project.Name, &project.Description, &project.GithubURL,
		&project.DemoURL, &project.ImagePath, &project.SortOrder, &project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			l.WarnContext(ctx, "Attempted to create project with duplicate name", slog.Any("error", err))
			span.SetStatus(codes.Error, "Duplicate project name")
			return nil, fmt.Errorf("project %q already exists: %w", params.Name, types.ErrConflict)
		}
		l.ErrorContext(ctx, "Failed to insert project", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB INSERT failed")
		return nil, fmt.Errorf("database error creating project: %w", err)
	}

	for _, techID := range techIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO project_technologies (project_id, technology_id) VALUES ($1, $2)`,
			project.ID, techID); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("database error mapping project technology: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("database error committing project: %w", err)
	}

	span.SetStatus(codes.Ok, "Project created")
	return &project, nil
}

func (r *PostgresProjectRepo) GetByID(ctx context.Context, id uuid.UUID) (*types.Project, error) {
	ctx, span := otel.Tracer("ProjectRepo").Start(ctx, "GetByID", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "projects"),
	))
	defer span.End()

	var project types.Project
	err := r.db.QueryRow(ctx,
		`SELECT id, name, description, github_url, demo_url, image_path, sort_order, created_at, updated_at
         FROM projects
         WHERE id = $1 AND deleted_at IS NULL`,
		id).Scan(&project.ID, &project.Name, &project.Description, &project.GithubURL,
		&project.DemoURL, &project.ImagePath, &project.SortOrder, &project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("database error fetching project: %w", err)
	}

	techs, err := r.technologiesFor(ctx, project.ID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	project.Technologies = techs

	span.SetStatus(codes.Ok, "Project fetched")
	return &project, nil
}

func (r *PostgresProjectRepo) GetAll(ctx context.Context, includeDeleted bool) ([]types.Project, error) {
	ctx, span := otel.Tracer("ProjectRepo").Start(ctx, "GetAll", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "projects"),
	))
	defer span.End()

	query := `SELECT id, name, description, github_url, demo_url, image_path, sort_order, created_at, updated_at, deleted_at
              FROM projects`
	if !includeDeleted {
		query += ` WHERE deleted_at IS NULL`
	}
	query += ` ORDER BY sort_order, created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("database error fetching projects: %w", err)
	}
	defer rows.Close()

	var projects []types.Project
	for rows.Next() {
		var p types.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.GithubURL, &p.DemoURL,
			&p.ImagePath, &p.SortOrder, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("database error scanning project: %w", err)
		}
		projects = append(projects, p)
	}
	if err = rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("database error reading projects: %w", err)
	}

	for i := range projects {
		techs, err := r.technologiesFor(ctx, projects[i].ID)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		projects[i].Technologies = techs
	}

	span.SetStatus(codes.Ok, "Projects fetched")
	return projects, nil
}

func (r *PostgresProjectRepo) technologiesFor(ctx context.Context, projectID uuid.UUID) ([]types.Technology, error) {
	rows, err := r.db.Query(ctx,
		`SELECT t.id, t.name, t.created_at, t.updated_at
         FROM technologies t
         JOIN project_technologies pt ON t.id = pt.technology_id
         WHERE pt.project_id = $1 AND t.deleted_at IS NULL
         ORDER BY t.name`,
		projectID)
	if err != nil {
		return nil, fmt.Errorf("database error fetching project technologies: %w", err)
	}
	defer rows.Close()

	var techs []types.Technology
	for rows.Next() {
		var t types.Technology
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("database error scanning project technology: %w", err)
		}
		techs = append(techs, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("database error reading project technologies: %w", err)
	}
	return techs, nil
}

func (r *PostgresProjectRepo) Update(ctx context.Context, id uuid.UUID, params UpdateProjectParams, updatedBy uuid.UUID) error {
	ctx, span := otel.Tracer("ProjectRepo").Start(ctx, "Update", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "projects"),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "Update"), slog.String("projectID", id.String()))

	var setClauses []string
	var args []interface{}
	argID := 1

	if params.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", argID))
		args = append(args, *params.Name)
		argID++
	}
	if params.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", argID))
		args = append(args, *params.Description)
		argID++
	}
	if params.GithubURL != nil {
		setClauses = append(setClauses, fmt.Sprintf("github_url = $%d", argID))
		args = append(args, *params.GithubURL)
		argID++
	}
	if params.DemoURL != nil {
		setClauses = append(setClauses, fmt.Sprintf("demo_url = $%d", argID))
		args = append(args, *params.DemoURL)
		argID++
	}
	if params.ImagePath != nil {
		setClauses = append(setClauses, fmt.Sprintf("image_path = $%d", argID))
		args = append(args, *params.ImagePath)
		argID++
	}
	if params.SortOrder != nil {
		setClauses = append(setClauses, fmt.Sprintf("sort_order = $%d", argID))
		args = append(args, *params.SortOrder)
		argID++
	}

	if len(setClauses) == 0 {
		l.WarnContext(ctx, "Update called with no fields to update")
		span.SetStatus(codes.Ok, "No update fields provided")
		return nil
	}

	setClauses = append(setClauses, fmt.Sprintf("updated_by = $%d", argID))
	args = append(args, updatedBy)
	argID++
	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", argID))
	args = append(args, time.Now())
	argID++

	args = append(args, id)
	query := fmt.Sprintf("UPDATE projects SET %s WHERE id = $%d AND deleted_at IS NULL",
		strings.Join(setClauses, ", "), argID)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("project name already exists: %w", types.ErrConflict)
		}
		l.ErrorContext(ctx, "Failed to execute update query", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPDATE failed")
		return fmt.Errorf("database error updating project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "Project not found")
		return types.ErrNotFound
	}

	span.SetStatus(codes.Ok, "Project updated")
	return nil
}

func (r *PostgresProjectRepo) ReplaceTechnologies(ctx context.Context, projectID uuid.UUID, techIDs []uuid.UUID) error {
	ctx, span := otel.Tracer("ProjectRepo").Start(ctx, "ReplaceTechnologies", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "project_technologies"),
		attribute.Int("technology.count", len(techIDs)),
	))
	defer span.End()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("database error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM project_technologies WHERE project_id = $1`, projectID); err != nil {
		span.RecordError(err)
		return fmt.Errorf("database error clearing project technologies: %w", err)
	}

	for _, techID := range techIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO project_technologies (project_id, technology_id) VALUES ($1, $2)`,
			projectID, techID); err != nil {
			span.RecordError(err)
			return fmt.Errorf("database error inserting project technology: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("database error committing technology replacement: %w", err)
	}

	span.SetStatus(codes.Ok, "Technologies replaced")
	return nil
}

func (r *PostgresProjectRepo) SoftDelete(ctx context.Context, id uuid.UUID, deletedBy uuid.UUID) error {
	ctx, span := otel.Tracer("ProjectRepo").Start(ctx, "SoftDelete", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "projects"),
	))
	defer span.End()

	tag, err := r.db.Exec(ctx,
		`UPDATE projects SET deleted_at = now(), deleted_by = $1
         WHERE id = $2 AND deleted_at IS NULL`,
		deletedBy, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPDATE failed")
		return fmt.Errorf("database error soft-deleting project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}

	span.SetStatus(codes.Ok, "Project soft-deleted")
	return nil
}

func (r *PostgresProjectRepo) HardDelete(ctx context.Context, id uuid.UUID) error {
	ctx, span := otel.Tracer("ProjectRepo").Start(ctx, "HardDelete", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "DELETE"),
		attribute.String("db.sql.table", "projects"),
	))
	defer span.End()

	tag, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB DELETE failed")
		return fmt.Errorf("database error deleting project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}

	span.SetStatus(codes.Ok, "Project deleted")
	return nil
}
