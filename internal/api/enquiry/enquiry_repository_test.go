package enquiry

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kristinefung/personal-website-sub000/internal/types"
)

func newMockRepo(t *testing.T) (*PostgresEnquiryRepo, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresEnquiryRepo(mock, slog.Default()), mock
}

func TestEnquiryCreate(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		id := uuid.New()
		now := time.Now()
		email := "visitor@example.com"
		params := CreateEnquiryParams{
			Name:    "Visitor",
			Email:   &email,
			Subject: "Hello",
			Message: "Nice site",
		}

		mock.ExpectQuery("INSERT INTO enquiries").
			WithArgs(params.Name, params.Email, params.Phone, params.Subject, params.Message).
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "name", "email", "phone", "subject", "message", "created_at", "updated_at",
			}).AddRow(id, "Visitor", &email, nil, "Hello", "Nice site", now, now))

		enquiry, err := repo.Create(context.Background(), params)

		assert.NoError(t, err)
		assert.Equal(t, id, enquiry.ID)
		require.NotNil(t, enquiry.Email)
		assert.Equal(t, email, *enquiry.Email)
		assert.Nil(t, enquiry.Phone)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("MissingRequiredFields", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		enquiry, err := repo.Create(context.Background(), CreateEnquiryParams{
			Name: "Visitor", // no subject, no message
		})

		assert.Nil(t, enquiry)
		assert.ErrorIs(t, err, types.ErrBadRequest)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEnquiryGetAllSoftDeleteFilter(t *testing.T) {
	now := time.Now()
	cols := []string{"id", "name", "email", "phone", "subject", "message", "created_at", "updated_at", "deleted_at"}

	t.Run("DefaultExcludesDeleted", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(`WHERE deleted_at IS NULL\s+ORDER BY created_at DESC`).
			WillReturnRows(pgxmock.NewRows(cols).
				AddRow(uuid.New(), "Visitor", nil, nil, "Hello", "Nice site", now, now, nil))

		enquiries, err := repo.GetAll(context.Background(), false)

		assert.NoError(t, err)
		assert.Len(t, enquiries, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("IncludeDeleted", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		deletedAt := now.Add(-time.Hour)

		mock.ExpectQuery(`FROM enquiries\s+ORDER BY created_at DESC`).
			WillReturnRows(pgxmock.NewRows(cols).
				AddRow(uuid.New(), "Visitor", nil, nil, "Hello", "Nice site", now, now, nil).
				AddRow(uuid.New(), "Gone", nil, nil, "Spam", "Buy now", now, now, &deletedAt))

		enquiries, err := repo.GetAll(context.Background(), true)

		assert.NoError(t, err)
		require.Len(t, enquiries, 2)
		assert.NotNil(t, enquiries[1].DeletedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEnquirySoftDelete(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()
	actor := uuid.New()

	mock.ExpectExec("UPDATE enquiries SET deleted_at").
		WithArgs(actor, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.SoftDelete(context.Background(), id, actor)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
