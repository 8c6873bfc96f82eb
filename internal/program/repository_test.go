package program

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMock(t *testing.T) (*Repository, *sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	return repo, sqlxDB, mock, func() { sqlxDB.Close() }
}

func TestCreateProgramWithRanks(t *testing.T) {
	repo, _, mock, closeFn := setupMock(t)
	defer closeFn()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO programs").
		WithArgs(1, "Brazilian Jiu-Jitsu").
		WillReturnRows(sqlmock.NewRows([]string{"id", "gym_id", "name", "created_at"}).
			AddRow(3, 1, "Brazilian Jiu-Jitsu", time.Now()))
	mock.ExpectExec("INSERT INTO program_ranks").
		WithArgs(3, "White", 1).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO program_ranks").
		WithArgs(3, "Blue", 2).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	p, err := repo.CreateProgram(context.Background(), 1, "Brazilian Jiu-Jitsu", []string{"White", "Blue"})
	require.NoError(t, err)
	assert.Equal(t, 3, p.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRanksOrdered(t *testing.T) {
	repo, _, mock, closeFn := setupMock(t)
	defer closeFn()

	mock.ExpectQuery("ORDER BY position ASC").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "program_id", "name", "position"}).
			AddRow(10, 3, "White", 1).
			AddRow(11, 3, "Blue", 2))

	ranks, err := repo.ListRanks(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, ranks, 2)
	assert.Equal(t, "White", ranks[0].Name)
	assert.Equal(t, 1, ranks[0].Position)
}

func TestRecordAttendanceExistingRank(t *testing.T) {
	_, db, mock, closeFn := setupMock(t)
	defer closeFn()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE user_ranks\\s+SET credits = credits \\+ 1").
		WithArgs(7, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE users\\s+SET attendance_count = attendance_count \\+ 1").
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	require.NoError(t, RecordAttendanceTx(context.Background(), tx, 7, 3))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordAttendanceSeedsFirstRank(t *testing.T) {
	_, db, mock, closeFn := setupMock(t)
	defer closeFn()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE user_ranks\\s+SET credits = credits \\+ 1").
		WithArgs(7, 3).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id\\s+FROM program_ranks").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
	mock.ExpectExec("INSERT INTO user_ranks").
		WithArgs(7, 3, 10).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE users\\s+SET status = 'active'").
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE users\\s+SET attendance_count = attendance_count \\+ 1").
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	require.NoError(t, RecordAttendanceTx(context.Background(), tx, 7, 3))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordAttendanceNoRanksDefined(t *testing.T) {
	_, db, mock, closeFn := setupMock(t)
	defer closeFn()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE user_ranks\\s+SET credits = credits \\+ 1").
		WithArgs(7, 3).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id\\s+FROM program_ranks").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	err = RecordAttendanceTx(context.Background(), tx, 7, 3)
	assert.ErrorIs(t, err, ErrNoRanksDefined)
	require.NoError(t, tx.Rollback())
}

func TestReverseAttendance(t *testing.T) {
	_, db, mock, closeFn := setupMock(t)
	defer closeFn()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE user_ranks\\s+SET credits = GREATEST\\(credits - 1, 0\\)").
		WithArgs(7, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE users\\s+SET attendance_count = GREATEST\\(attendance_count - 1, 0\\)").
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	require.NoError(t, ReverseAttendanceTx(context.Background(), tx, 7, 3))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}
