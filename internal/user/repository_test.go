package user

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userCols = []string{
	"id", "gym_id", "name", "email", "password_hash", "role", "status",
	"class_credits", "attendance_count", "converted_at", "created_at",
}

func setupMock(t *testing.T) (*Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	return repo, mock, func() { sqlxDB.Close() }
}

func userRow(id int, email string) *sqlmock.Rows {
	return sqlmock.NewRows(userCols).
		AddRow(id, 1, "Ana", email, "$2a$10$hash", "member", "prospect", 0, 0, nil, time.Now())
}

func TestCreate(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(1, "Ana", "ana@example.com", "$2a$10$hash", "member").
		WillReturnRows(userRow(7, "ana@example.com"))

	u, err := repo.Create(context.Background(), 1, "Ana", "ana@example.com", "$2a$10$hash", "member")
	require.NoError(t, err)
	assert.Equal(t, 7, u.ID)
	assert.Equal(t, StatusProspect, u.Status)
	assert.Nil(t, u.ConvertedAt)
}

func TestFindByEmail(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	mock.ExpectQuery("FROM users WHERE email = \\$1").
		WithArgs("ana@example.com").
		WillReturnRows(userRow(7, "ana@example.com"))

	u, err := repo.FindByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", u.Email)
}

func TestFindByEmailMissing(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	mock.ExpectQuery("FROM users WHERE email = \\$1").
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows(userCols))

	_, err := repo.FindByEmail(context.Background(), "nobody@example.com")
	assert.Error(t, err)
}

func TestFindByID(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	mock.ExpectQuery("FROM users WHERE id = \\$1").
		WithArgs(7).
		WillReturnRows(userRow(7, "ana@example.com"))

	u, err := repo.FindByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 7, u.ID)
}

func TestEmailExists(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.EmailExists(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
}
