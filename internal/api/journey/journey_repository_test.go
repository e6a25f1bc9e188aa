package journey

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

func newMockRepo(t *testing.T) (*PostgresJourneyRepo, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresJourneyRepo(mock, slog.Default()), mock
}

func TestJourneyCreate(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		id := uuid.New()
		now := time.Now()

		mock.ExpectQuery("INSERT INTO journeys").
			WithArgs("First job", "Wrote Go", 2023, 9, pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "title", "description", "year", "month", "created_at", "updated_at",
			}).AddRow(id, "First job", "Wrote Go", 2023, 9, now, now))

		journey, err := repo.Create(context.Background(), CreateJourneyParams{
			Title:       "First job",
			Description: "Wrote Go",
			Year:        2023,
			Month:       9,
		}, nil)

		assert.NoError(t, err)
		assert.Equal(t, id, journey.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("MonthOutOfRange", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		journey, err := repo.Create(context.Background(), CreateJourneyParams{
			Title: "Bad month",
			Year:  2023,
			Month: 13,
		}, nil)

		assert.Nil(t, journey)
		assert.ErrorIs(t, err, types.ErrBadRequest)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("MissingTitle", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		journey, err := repo.Create(context.Background(), CreateJourneyParams{Year: 2023, Month: 1}, nil)

		assert.Nil(t, journey)
		assert.ErrorIs(t, err, types.ErrBadRequest)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestJourneyGetAllOrdering(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	// Newest first: year desc, then month desc.
	mock.ExpectQuery(`ORDER BY year DESC, month DESC`).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "title", "description", "year", "month", "created_at", "updated_at", "deleted_at",
		}).
			AddRow(uuid.New(), "Senior", "", 2024, 6, now, now, nil).
			AddRow(uuid.New(), "Junior", "", 2021, 2, now, now, nil))

	journeys, err := repo.GetAll(context.Background(), false)

	assert.NoError(t, err)
	require.Len(t, journeys, 2)
	assert.Equal(t, 2024, journeys[0].Year)
	assert.Equal(t, 2021, journeys[1].Year)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJourneyUpdateMonthValidation(t *testing.T) {
	repo, mock := newMockRepo(t)
	badMonth := 0

	err := repo.Update(context.Background(), uuid.New(), UpdateJourneyParams{Month: &badMonth}, uuid.New())

	assert.ErrorIs(t, err, types.ErrBadRequest)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJourneySoftDeleteNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()
	actor := uuid.New()

	mock.ExpectExec("UPDATE journeys SET deleted_at").
		WithArgs(actor, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.SoftDelete(context.Background(), id, actor)

	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
