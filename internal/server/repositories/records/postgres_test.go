package records

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/offsync/internal/common"
	"github.com/dmitrijs2005/offsync/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const upsertQ = `(?s)^INSERT\s+INTO\s+records\s*\(id,\s*fields\)\s*VALUES\s*\(\$1,\s*\$2\)\s*ON\s+CONFLICT\s*\(id\)\s*DO\s+UPDATE\s+SET\s+fields\s*=\s*EXCLUDED\.fields,\s*updated_at\s*=\s*now\(\)\s*$`

func TestUpsert_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(upsertQ).
		WithArgs("r-1", []byte(`{"name":"p1","note":"x"}`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(context.Background(), &models.Record{ID: "r-1", Fields: map[string]string{"note": "x", "name": "p1"}})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_Repeated(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rec := &models.Record{ID: "r-1", Fields: map[string]string{"name": "p1"}}
	for range 2 {
		mock.ExpectExec(upsertQ).
			WithArgs("r-1", []byte(`{"name":"p1"}`)).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	require.NoError(t, repo.Upsert(context.Background(), rec))
	require.NoError(t, repo.Upsert(context.Background(), rec))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(upsertQ).WillReturnError(errors.New("conn reset"))

	err := repo.Upsert(context.Background(), &models.Record{ID: "r-1", Fields: map[string]string{"name": "p1"}})
	require.ErrorContains(t, err, "db error")
}

const getQ = `(?s)^SELECT\s+id,\s*fields,\s*updated_at\s+FROM\s+records\s+WHERE\s+id\s*=\s*\$1\s*$`

func TestGet_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	ts := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(getQ).WithArgs("r-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "fields", "updated_at"}).
			AddRow("r-1", []byte(`{"name":"p1"}`), ts))

	got, err := repo.Get(context.Background(), "r-1")
	require.NoError(t, err)
	assert.Equal(t, &models.Record{ID: "r-1", Fields: map[string]string{"name": "p1"}, UpdatedAt: ts}, got)
}

func TestGet_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(getQ).WithArgs("nope").WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "nope")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGet_CorruptFields(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(getQ).WithArgs("r-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "fields", "updated_at"}).
			AddRow("r-1", []byte(`not json`), time.Now()))

	_, err := repo.Get(context.Background(), "r-1")
	require.ErrorContains(t, err, "decode fields")
}
