package gym

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var classCols = []string{
	"id", "gym_id", "name", "start_time", "duration_minutes", "weekdays",
	"start_date", "max_capacity", "credit_cost", "drop_in_enabled",
	"allowed_plan_ids", "booking_window_days", "late_booking_minutes",
	"cancel_window_hours", "late_cancel_fee", "cancelled_dates",
	"recurrence_end_date", "program_id", "created_at",
}

func setupMock(t *testing.T) (*Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	return repo, mock, func() { sqlxDB.Close() }
}

func classRow(id int, name string) *sqlmock.Rows {
	return sqlmock.NewRows(classCols).AddRow(
		id, 1, name, "18:00", 60, "{monday,wednesday}",
		nil, 20, 1, true,
		"{}", nil, nil,
		nil, 0, "{}",
		nil, nil, time.Now(),
	)
}

func TestCreateGymDefaultsTimezone(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	mock.ExpectQuery("INSERT INTO gyms").
		WithArgs("North Mat", "Oslo", "UTC").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "location", "timezone", "created_at"}).
			AddRow(1, "North Mat", "Oslo", "UTC", time.Now()))

	g, err := repo.CreateGym(context.Background(), "North Mat", "Oslo", "")
	require.NoError(t, err)
	assert.Equal(t, "UTC", g.Timezone)
	assert.Equal(t, "Oslo", g.Address)
	assert.Equal(t, time.UTC, g.Location())
}

func TestGetGymByID(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	mock.ExpectQuery("FROM gyms").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "location", "timezone", "created_at"}).
			AddRow(1, "North Mat", "Oslo", "Europe/Oslo", time.Now()))

	g, err := repo.GetGymByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Europe/Oslo", g.Timezone)
}

func TestCreateClass(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	capacity := 20
	mock.ExpectQuery("INSERT INTO classes").
		WillReturnRows(classRow(5, "Fundamentals"))

	class, err := repo.CreateClass(context.Background(), 1, CreateClassRequest{
		Name:            "Fundamentals",
		StartTime:       "18:00",
		DurationMinutes: 60,
		Weekdays:        []string{"monday", "wednesday"},
		MaxCapacity:     &capacity,
		CreditCost:      1,
		DropInEnabled:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, class.ID)
	assert.Equal(t, []string{"monday", "wednesday"}, []string(class.Weekdays))
	require.NotNil(t, class.MaxCapacity)
	assert.Equal(t, 20, *class.MaxCapacity)
}

func TestGetClassByID(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	mock.ExpectQuery("FROM classes").
		WithArgs(5).
		WillReturnRows(classRow(5, "Fundamentals"))

	class, err := repo.GetClassByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "Fundamentals", class.Name)
}

func TestListClassesByGym(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	rows := classRow(5, "Fundamentals")
	rows.AddRow(
		6, 1, "Open Mat", "19:30", 90, "{friday}",
		nil, nil, 0, true,
		"{}", nil, nil,
		nil, 0, "{}",
		nil, nil, time.Now(),
	)
	mock.ExpectQuery("FROM classes\\s+WHERE gym_id = \\$1").
		WithArgs(1).
		WillReturnRows(rows)

	classes, err := repo.ListClassesByGym(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, classes, 2)
	assert.Nil(t, classes[1].MaxCapacity)
}

func TestCountBookedOn(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\)\\s+FROM attendance").
		WithArgs(5, "2026-09-07").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	count, err := repo.CountBookedOn(context.Background(), 5, "2026-09-07")
	require.NoError(t, err)
	assert.Equal(t, 12, count)
}

func TestCancelDate(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	mock.ExpectExec("SET cancelled_dates = array_append").
		WithArgs(5, "2026-09-07").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.CancelDate(context.Background(), 5, "2026-09-07")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
