package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/interaction-dashboard-api/internal/models"
)

func newInteractionMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var interactionColumns = []string{"material_interaction_id", "start", "end", "person_short_name", "material_name"}

func TestInteractionRepositoryFetch(t *testing.T) {
	db, mock, cleanup := newInteractionMock(t)
	defer cleanup()
	repo := NewInteractionRepository(db)

	start := time.Date(2021, 3, 29, 5, 0, 0, 0, time.UTC)
	end := time.Date(2021, 3, 30, 4, 0, 0, 0, time.UTC)
	began := time.Date(2021, 3, 29, 14, 0, 0, 0, time.UTC)
	finished := began.Add(30 * time.Minute)

	rows := sqlmock.NewRows(interactionColumns).
		AddRow("mi-1", began, finished, "Flower Arranging", "Bells").
		AddRow("mi-2", began.Add(time.Hour), nil, nil, "Globe")
	query := interactionSelect + " ORDER BY mi.start ASC"
	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs(start, end).
		WillReturnRows(rows)

	records, err := repo.FetchInteractions(context.Background(), models.InteractionQuery{Start: start, End: end})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "mi-1", records[0].ID)
	require.NotNil(t, records[0].End)
	assert.True(t, finished.Equal(*records[0].End))
	assert.Equal(t, "Flower Arranging", *records[0].StudentName)
	assert.Nil(t, records[1].End)
	assert.Nil(t, records[1].StudentName)
	assert.Equal(t, "Globe", *records[1].MaterialName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInteractionRepositoryFetchWithIDFilters(t *testing.T) {
	db, mock, cleanup := newInteractionMock(t)
	defer cleanup()
	repo := NewInteractionRepository(db)

	start := time.Date(2021, 3, 1, 6, 0, 0, 0, time.UTC)
	end := time.Date(2021, 3, 2, 5, 0, 0, 0, time.UTC)
	query := models.InteractionQuery{Start: start, End: end, PersonIDs: []string{"p1"}, MaterialIDs: []string{"m1", "m2"}}

	sql := interactionSelect + " AND mi.person_id = ANY($3) AND mi.material_id = ANY($4) ORDER BY mi.start ASC"
	mock.ExpectQuery(regexp.QuoteMeta(sql)).
		WithArgs(start, end, pq.Array([]string{"p1"}), pq.Array([]string{"m1", "m2"})).
		WillReturnRows(sqlmock.NewRows(interactionColumns))

	records, err := repo.FetchInteractions(context.Background(), query)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInteractionRepositoryFetchError(t *testing.T) {
	db, mock, cleanup := newInteractionMock(t)
	defer cleanup()
	repo := NewInteractionRepository(db)

	mock.ExpectQuery("FROM material_interactions").WillReturnError(errors.New("connection reset"))

	_, err := repo.FetchInteractions(context.Background(), models.InteractionQuery{Start: time.Now(), End: time.Now()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query material interactions")
	assert.NoError(t, mock.ExpectationsWereMet())
}
