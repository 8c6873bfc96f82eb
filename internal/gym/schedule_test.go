package gym

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestOccurrenceStart(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	class := &Class{StartTime: "18:30", DurationMinutes: 60}

	start, err := class.OccurrenceStart("2026-09-07", ny)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 7, 18, 30, 0, 0, ny), start)

	end, err := class.OccurrenceEnd("2026-09-07", ny)
	require.NoError(t, err)
	assert.Equal(t, start.Add(time.Hour), end)
}

func TestOccurrenceStartBadInput(t *testing.T) {
	class := &Class{StartTime: "18:30"}
	_, err := class.OccurrenceStart("not-a-date", time.UTC)
	assert.Error(t, err)

	class = &Class{StartTime: "late"}
	_, err = class.OccurrenceStart("2026-09-07", time.UTC)
	assert.Error(t, err)
}

func TestOccursOnRecurring(t *testing.T) {
	class := &Class{Weekdays: []string{"monday", "Wednesday"}}

	ok, err := class.OccursOn("2026-09-07", time.UTC) // Monday
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = class.OccursOn("2026-09-09", time.UTC) // Wednesday
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = class.OccursOn("2026-09-08", time.UTC) // Tuesday
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOccursOnSingleEvent(t *testing.T) {
	class := &Class{StartDate: strPtr("2026-09-12")}

	ok, err := class.OccursOn("2026-09-12", time.UTC)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = class.OccursOn("2026-09-13", time.UTC)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOccursOnCancelledDate(t *testing.T) {
	class := &Class{
		Weekdays:       []string{"monday"},
		CancelledDates: []string{"2026-09-07"},
	}

	ok, err := class.OccursOn("2026-09-07", time.UTC)
	require.NoError(t, err)
	assert.False(t, ok)

	// The following Monday is unaffected.
	ok, err = class.OccursOn("2026-09-14", time.UTC)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAfterRecurrenceEnd(t *testing.T) {
	class := &Class{
		Weekdays:          []string{"monday"},
		RecurrenceEndDate: strPtr("2026-09-07"),
	}

	after, err := class.AfterRecurrenceEnd("2026-09-07", time.UTC)
	require.NoError(t, err)
	assert.False(t, after, "end date is inclusive")

	after, err = class.AfterRecurrenceEnd("2026-09-08", time.UTC)
	require.NoError(t, err)
	assert.True(t, after)

	ok, err := class.OccursOn("2026-09-14", time.UTC)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGymLocationFallsBackToUTC(t *testing.T) {
	assert.Equal(t, time.UTC, (&Gym{}).Location())
	assert.Equal(t, time.UTC, (&Gym{Timezone: "Mars/Olympus"}).Location())

	tokyo := &Gym{Timezone: "Asia/Tokyo"}
	assert.Equal(t, "Asia/Tokyo", tokyo.Location().String())
}
