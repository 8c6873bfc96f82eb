package gym

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listClassesRequest(t *testing.T, db *sqlx.DB, path string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := &Handler{repo: NewRepository(db)}
	router.GET("/gyms/:gymID/classes", h.ListClasses)

	req := httptest.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListClassesWithAvailability(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "sqlmock")
	defer sqlxDB.Close()

	// Monday class with capacity 20; Friday class never occurs on a Monday.
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
	mock.ExpectQuery("FROM gyms").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "location", "timezone", "created_at"}).
			AddRow(1, "North Mat", "Oslo", "UTC", time.Now()))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\)\\s+FROM attendance").
		WithArgs(5, "2026-09-07").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(18))

	w := listClassesRequest(t, sqlxDB,"/gyms/1/classes?date=2026-09-07")
	require.Equal(t, http.StatusOK, w.Code)

	var got []ClassWithAvailability
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Fundamentals", got[0].Name)
	assert.Equal(t, "2026-09-07", got[0].Date)
	assert.Equal(t, 18, got[0].BookedCount)
	require.NotNil(t, got[0].Available)
	assert.Equal(t, 2, *got[0].Available)
	assert.False(t, got[0].IsFull)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListClassesFullOccurrence(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "sqlmock")
	defer sqlxDB.Close()

	mock.ExpectQuery("FROM classes\\s+WHERE gym_id = \\$1").
		WithArgs(1).
		WillReturnRows(classRow(5, "Fundamentals"))
	mock.ExpectQuery("FROM gyms").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "location", "timezone", "created_at"}).
			AddRow(1, "North Mat", "Oslo", "UTC", time.Now()))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\)\\s+FROM attendance").
		WithArgs(5, "2026-09-07").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(20))

	w := listClassesRequest(t, sqlxDB,"/gyms/1/classes?date=2026-09-07")
	require.Equal(t, http.StatusOK, w.Code)

	var got []ClassWithAvailability
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.True(t, got[0].IsFull)
	require.NotNil(t, got[0].Available)
	assert.Equal(t, 0, *got[0].Available)
}

func TestListClassesWithoutDateReturnsTemplates(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "sqlmock")
	defer sqlxDB.Close()

	mock.ExpectQuery("FROM classes\\s+WHERE gym_id = \\$1").
		WithArgs(1).
		WillReturnRows(classRow(5, "Fundamentals"))

	w := listClassesRequest(t, sqlxDB,"/gyms/1/classes")
	require.Equal(t, http.StatusOK, w.Code)

	var got []Class
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
