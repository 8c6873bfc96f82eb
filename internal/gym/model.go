package gym

import (
	"time"

	"github.com/lib/pq"
)

type Gym struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Address   string    `db:"location" json:"location"`
	Timezone  string    `db:"timezone" json:"timezone"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Class is a recurring (or single-event) class template. Weekdays holds
// lowercase weekday names for recurring classes; StartDate is set instead
// for one-off events. MaxCapacity nil means unbounded.
type Class struct {
	ID              int            `db:"id" json:"id"`
	GymID           int            `db:"gym_id" json:"gym_id"`
	Name            string         `db:"name" json:"name"`
	StartTime       string         `db:"start_time" json:"start_time"` // "HH:MM"
	DurationMinutes int            `db:"duration_minutes" json:"duration_minutes"`
	Weekdays        pq.StringArray `db:"weekdays" json:"weekdays"`
	StartDate       *string        `db:"start_date" json:"start_date,omitempty"`
	MaxCapacity     *int           `db:"max_capacity" json:"max_capacity,omitempty"`
	CreditCost      int            `db:"credit_cost" json:"credit_cost"`
	DropInEnabled   bool           `db:"drop_in_enabled" json:"drop_in_enabled"`
	AllowedPlanIDs  pq.Int64Array  `db:"allowed_plan_ids" json:"allowed_plan_ids"`

	BookingWindowDays  *int `db:"booking_window_days" json:"booking_window_days,omitempty"`
	LateBookingMinutes *int `db:"late_booking_minutes" json:"late_booking_minutes,omitempty"`
	CancelWindowHours  *int `db:"cancel_window_hours" json:"cancel_window_hours,omitempty"`
	LateCancelFee      int  `db:"late_cancel_fee" json:"late_cancel_fee"`

	CancelledDates    pq.StringArray `db:"cancelled_dates" json:"cancelled_dates"`
	RecurrenceEndDate *string        `db:"recurrence_end_date" json:"recurrence_end_date,omitempty"`
	ProgramID         *int           `db:"program_id" json:"program_id,omitempty"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
}

type ClassWithAvailability struct {
	Class
	Date        string `json:"date"`
	BookedCount int    `json:"booked_count"`
	Available   *int   `json:"available,omitempty"`
	IsFull      bool   `json:"is_full"`
}

type CreateGymRequest struct {
	Name     string `json:"name" binding:"required"`
	Location string `json:"location" binding:"required"`
	Timezone string `json:"timezone"`
}

type CreateClassRequest struct {
	Name               string   `json:"name" binding:"required"`
	StartTime          string   `json:"start_time" binding:"required"`
	DurationMinutes    int      `json:"duration_minutes" binding:"required,min=1"`
	Weekdays           []string `json:"weekdays"`
	StartDate          *string  `json:"start_date,omitempty"`
	MaxCapacity        *int     `json:"max_capacity,omitempty"`
	CreditCost         int      `json:"credit_cost" binding:"gte=0"`
	DropInEnabled      bool     `json:"drop_in_enabled"`
	AllowedPlanIDs     []int64  `json:"allowed_plan_ids"`
	BookingWindowDays  *int     `json:"booking_window_days,omitempty"`
	LateBookingMinutes *int     `json:"late_booking_minutes,omitempty"`
	CancelWindowHours  *int     `json:"cancel_window_hours,omitempty"`
	LateCancelFee      int      `json:"late_cancel_fee"`
	RecurrenceEndDate  *string  `json:"recurrence_end_date,omitempty"`
	ProgramID          *int     `json:"program_id,omitempty"`
}
