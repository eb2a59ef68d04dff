package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResultRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestResultRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newResultRepoMock(t)
	defer cleanup()

	repo := NewResultRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO results")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	result := &Result{
		RunID:              "run-1",
		Mode:               "normal",
		Instance:           "toy.ectt",
		WeightedViolations: 7,
	}
	require.NoError(t, repo.Create(context.Background(), result))
	assert.NotEmpty(t, result.ID)
	assert.False(t, result.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryCreateError(t *testing.T) {
	db, mock, cleanup := newResultRepoMock(t)
	defer cleanup()

	repo := NewResultRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO results")).
		WillReturnError(errors.New("disk full"))

	err := repo.Create(context.Background(), &Result{ID: "fixed", RunID: "run-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryListByRun(t *testing.T) {
	db, mock, cleanup := newResultRepoMock(t)
	defer cleanup()

	repo := NewResultRepository(db)
	rows := sqlmock.NewRows([]string{"id", "run_id", "mode", "instance", "fix_method", "weighted_violations", "local_search", "created_at"}).
		AddRow("a", "run-1", "ban", "toy.ectt", "greedy", 12, true, time.Now()).
		AddRow("b", "run-1", "ban", "toy.ectt", "memetic", 3, false, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, run_id, mode")).
		WithArgs("run-1").
		WillReturnRows(rows)

	results, err := repo.ListByRun(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "greedy", results[0].FixMethod)
	assert.Equal(t, 3, results[1].WeightedViolations)
	assert.True(t, results[0].LocalSearch)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryBest(t *testing.T) {
	db, mock, cleanup := newResultRepoMock(t)
	defer cleanup()

	repo := NewResultRepository(db)
	rows := sqlmock.NewRows([]string{"id", "instance", "weighted_violations"}).
		AddRow("a", "toy.ectt", 0)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, run_id, mode")).
		WithArgs("toy.ectt").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, run_id, mode")).
		WithArgs("missing.ectt").
		WillReturnError(sql.ErrNoRows)

	best, err := repo.Best(context.Background(), "toy.ectt")
	require.NoError(t, err)
	assert.Equal(t, "a", best.ID)

	_, err = repo.Best(context.Background(), "missing.ectt")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	require.NoError(t, mock.ExpectationsWereMet())
}
