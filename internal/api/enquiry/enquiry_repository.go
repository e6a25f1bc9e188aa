package enquiry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	database "github.com/kristinefung/personal-website-sub000/app/db"
	"github.com/kristinefung/personal-website-sub000/internal/types"
)

var _ EnquiryRepo = (*PostgresEnquiryRepo)(nil)

// CreateEnquiryParams carries a visitor contact submission. Name,
// subject and message are required; email and phone are optional.
type CreateEnquiryParams struct {
	Name    string  `json:"name"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Subject string  `json:"subject"`
	Message string  `json:"message"`
}

// EnquiryRepo defines the contract for enquiry persistence. Listings
// come back newest first.
type EnquiryRepo interface {
	Create(ctx context.Context, params CreateEnquiryParams) (*types.Enquiry, error)
	GetByID(ctx context.Context, id uuid.UUID) (*types.Enquiry, error)
	GetAll(ctx context.Context, includeDeleted bool) ([]types.Enquiry, error)
	SoftDelete(ctx context.Context, id uuid.UUID, deletedBy uuid.UUID) error
	HardDelete(ctx context.Context, id uuid.UUID) error
}

type PostgresEnquiryRepo struct {
	logger *slog.Logger
	db     database.DB
}

func NewPostgresEnquiryRepo(db database.DB, logger *slog.Logger) *PostgresEnquiryRepo {
	return &PostgresEnquiryRepo{
		logger: logger,
		db:     db,
	}
}

func (r *PostgresEnquiryRepo) Create(ctx context.Context, params CreateEnquiryParams) (*types.Enquiry, error) {
	ctx, span := otel.Tracer("EnquiryRepo").Start(ctx, "Create", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "enquiries"),
	))
	defer span.End()

	if params.Name == "" || params.Subject == "" || params.Message == "" {
		return nil, fmt.Errorf("name, subject and message are required: %w", types.ErrBadRequest)
	}

	var enquiry types.Enquiry
	err := r.db.QueryRow(ctx,
		`INSERT INTO enquiries (name, email, phone, subject, message, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5, now(), now())
         RETURNING id, name, email, phone, subject, message, created_at, updated_at`,
		params.Name, params.Email, params.Phone, params.Subject, params.Message,
	).Scan(&enquiry.ID, &enquiry.Name, &enquiry.Email, &enquiry.Phone,
		&enquiry.Subject, &enquiry.Message, &enquiry.CreatedAt, &enquiry.UpdatedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert enquiry", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB INSERT failed")
		return nil, fmt.Errorf("database error creating enquiry: %w", err)
	}

	span.SetStatus(codes.Ok, "Enquiry created")
	return &enquiry, nil
}

func (r *PostgresEnquiryRepo) GetByID(ctx context.Context, id uuid.UUID) (*types.Enquiry, error) {
	ctx, span := otel.Tracer("EnquiryRepo").Start(ctx, "GetByID", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "enquiries"),
	))
	defer span.End()

	var enquiry types.Enquiry
	err := r.db.QueryRow(ctx,
		`SELECT id, name, email, phone, subject, message, created_at, updated_at
         FROM enquiries
         WHERE id = $1 AND deleted_at IS NULL`,
		id).Scan(&enquiry.ID, &enquiry.Name, &enquiry.Email, &enquiry.Phone,
		&enquiry.Subject, &enquiry.Message, &enquiry.CreatedAt, &enquiry.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("database error fetching enquiry: %w", err)
	}

	span.SetStatus(codes.Ok, "Enquiry fetched")
	return &enquiry, nil
}

func (r *PostgresEnquiryRepo) GetAll(ctx context.Context, includeDeleted bool) ([]types.Enquiry, error) {
	ctx, span := otel.Tracer("EnquiryRepo").Start(ctx, "GetAll", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "enquiries"),
		attribute.Bool("enquiry.include_deleted", includeDeleted),
	))
	defer span.End()

	query := `SELECT id, name, email, phone, subject, message, created_at, updated_at, deleted_at
              FROM enquiries`
	if !includeDeleted {
		query += ` WHERE deleted_at IS NULL`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("database error fetching enquiries: %w", err)
	}
	defer rows.Close()

	var enquiries []types.Enquiry
	for rows.Next() {
		var e types.Enquiry
		if err := rows.Scan(&e.ID, &e.Name, &e.Email, &e.Phone, &e.Subject,
			&e.Message, &e.CreatedAt, &e.UpdatedAt, &e.DeletedAt); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("database error scanning enquiry: %w", err)
		}
		enquiries = append(enquiries, e)
	}
	if err = rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("database error reading enquiries: %w", err)
	}

	span.SetStatus(codes.Ok, "Enquiries fetched")
	return enquiries, nil
}

func (r *PostgresEnquiryRepo) SoftDelete(ctx context.Context, id uuid.UUID, deletedBy uuid.UUID) error {
	ctx, span := otel.Tracer("EnquiryRepo").Start(ctx, "SoftDelete", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "enquiries"),
	))
	defer span.End()

	tag, err := r.db.Exec(ctx,
		`UPDATE enquiries SET deleted_at = now(), deleted_by = $1
         WHERE id = $2 AND deleted_at IS NULL`,
		deletedBy, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPDATE failed")
		return fmt.Errorf("database error soft-deleting enquiry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}

	span.SetStatus(codes.Ok, "Enquiry soft-deleted")
	return nil
}

func (r *PostgresEnquiryRepo) HardDelete(ctx context.Context, id uuid.UUID) error {
	ctx, span := otel.Tracer("EnquiryRepo").Start(ctx, "HardDelete", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "DELETE"),
		attribute.String("db.sql.table", "enquiries"),
	))
	defer span.End()

	tag, err := r.db.Exec(ctx, `DELETE FROM enquiries WHERE id = $1`, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB DELETE failed")
		return fmt.Errorf("database error deleting enquiry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}

	span.SetStatus(codes.Ok, "Enquiry deleted")
	return nil
}
