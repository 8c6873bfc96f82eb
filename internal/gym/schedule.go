package gym

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for class-instance dates.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date string in the given location.
func ParseDate(dateStr string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, dateStr, loc)
}

// OccurrenceStart computes the wall-clock start of the class instance on
// the given date. StartTime is "HH:MM" in the gym's timezone.
func (c *Class) OccurrenceStart(dateStr string, loc *time.Location) (time.Time, error) {
	day, err := ParseDate(dateStr, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid class date %q: %w", dateStr, err)
	}

	var hour, minute int
	if _, err := fmt.Sscanf(c.StartTime, "%d:%d", &hour, &minute); err != nil {
		return time.Time{}, fmt.Errorf("invalid class start time %q: %w", c.StartTime, err)
	}

	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc), nil
}

// OccurrenceEnd is OccurrenceStart plus the class duration.
func (c *Class) OccurrenceEnd(dateStr string, loc *time.Location) (time.Time, error) {
	start, err := c.OccurrenceStart(dateStr, loc)
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(time.Duration(c.DurationMinutes) * time.Minute), nil
}

// OccursOn reports whether the class template materializes on the given
// date: the weekday matches the recurrence (or the single-event start date
// equals it), the date is not cancelled, and it does not fall past the
// recurrence end.
func (c *Class) OccursOn(dateStr string, loc *time.Location) (bool, error) {
	day, err := ParseDate(dateStr, loc)
	if err != nil {
		return false, fmt.Errorf("invalid class date %q: %w", dateStr, err)
	}

	if c.IsDateCancelled(dateStr) {
		return false, nil
	}
	if after, err := c.AfterRecurrenceEnd(dateStr, loc); err != nil || after {
		return false, err
	}

	if len(c.Weekdays) > 0 {
		weekday := strings.ToLower(day.Weekday().String())
		for _, w := range c.Weekdays {
			if strings.EqualFold(strings.TrimSpace(w), weekday) {
				return true, nil
			}
		}
		return false, nil
	}

	if c.StartDate != nil {
		return *c.StartDate == dateStr, nil
	}

	return false, nil
}

// IsDateCancelled reports whether the date was struck from the recurrence.
func (c *Class) IsDateCancelled(dateStr string) bool {
	for _, d := range c.CancelledDates {
		if d == dateStr {
			return true
		}
	}
	return false
}

// AfterRecurrenceEnd reports whether the date falls strictly after the
// inclusive recurrence cutoff.
func (c *Class) AfterRecurrenceEnd(dateStr string, loc *time.Location) (bool, error) {
	if c.RecurrenceEndDate == nil || *c.RecurrenceEndDate == "" {
		return false, nil
	}

	day, err := ParseDate(dateStr, loc)
	if err != nil {
		return false, err
	}
	end, err := ParseDate(*c.RecurrenceEndDate, loc)
	if err != nil {
		return false, fmt.Errorf("invalid recurrence end date %q: %w", *c.RecurrenceEndDate, err)
	}

	return day.After(end), nil
}

// Location resolves the gym's timezone, falling back to UTC on bad data.
func (g *Gym) Location() *time.Location {
	if g.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(g.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
