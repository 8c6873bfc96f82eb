package booking

import "time"

type Status string

const (
	StatusBooked     Status = "booked"
	StatusWaitlisted Status = "waitlisted"
	StatusAttended   Status = "attended"
	StatusCancelled  Status = "cancelled"
)

// Active reports whether the record blocks a new booking for the same key.
func (s Status) Active() bool {
	return s == StatusBooked || s == StatusWaitlisted || s == StatusAttended
}

// OccupiesSeat reports whether the record counts against class capacity.
func (s Status) OccupiesSeat() bool {
	return s == StatusBooked || s == StatusAttended
}

type BookingType string

const (
	TypeMembership BookingType = "membership"
	TypeCredit     BookingType = "credit"
	TypeComp       BookingType = "comp"
	TypeAdminComp  BookingType = "admin_comp"
	TypeDropIn     BookingType = "drop_in"
)

// RulesSnapshot freezes the class cancellation/lateness policy at booking
// time. Later rule edits must not change the commitment already made.
type RulesSnapshot struct {
	BookingWindowDays  *int `db:"snapshot_booking_window_days" json:"booking_window_days,omitempty"`
	LateBookingMinutes *int `db:"snapshot_late_booking_minutes" json:"late_booking_minutes,omitempty"`
	CancelWindowHours  *int `db:"snapshot_cancel_window_hours" json:"cancel_window_hours,omitempty"`
	LateCancelFee      int  `db:"snapshot_late_cancel_fee" json:"late_cancel_fee"`
}

// Attendance is one member's relationship to one class instance,
// identified by (class_id, class_date, user_id). Records are updated in
// place across cancel/re-book cycles, never deleted.
type Attendance struct {
	ID          int         `db:"id" json:"id"`
	GymID       int         `db:"gym_id" json:"gym_id"`
	ClassID     int         `db:"class_id" json:"class_id"`
	ClassDate   string      `db:"class_date" json:"class_date"`
	UserID      int         `db:"user_id" json:"user_id"`
	Status      Status      `db:"status" json:"status"`
	BookingType BookingType `db:"booking_type" json:"booking_type"`
	CostUsed    int         `db:"cost_used" json:"cost_used"`

	RulesSnapshot

	BookedAt             time.Time  `db:"booked_at" json:"booked_at"`
	CheckedInAt          *time.Time `db:"checked_in_at" json:"checked_in_at,omitempty"`
	CancelledAt          *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
	Refunded             bool       `db:"refunded" json:"refunded"`
	RefundAmount         int        `db:"refund_amount" json:"refund_amount"`
	LateCancel           bool       `db:"late_cancel" json:"late_cancel"`
	LateCancelFeeApplied int        `db:"late_cancel_fee_applied" json:"late_cancel_fee_applied"`
	PromotedAt           *time.Time `db:"promoted_at" json:"promoted_at,omitempty"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at" json:"updated_at"`
}

// RosterEntry is one row of a class-instance roster.
type RosterEntry struct {
	Attendance
	UserName  string `db:"user_name" json:"user_name"`
	UserEmail string `db:"user_email" json:"user_email"`
}

// DayCount is one bucket of the attendance analytics aggregation.
type DayCount struct {
	Bucket    string `db:"bucket" json:"bucket"`
	Booked    int    `db:"booked" json:"booked"`
	Attended  int    `db:"attended" json:"attended"`
	Cancelled int    `db:"cancelled" json:"cancelled"`
}

// BookOptions carries caller intent for one booking attempt. Force and
// WaiveCost are only honored for staff callers.
type BookOptions struct {
	BookingType BookingType
	Force       bool
	WaiveCost   bool
	IsStaff     bool
	Now         time.Time
}

// CancelOptions carries caller intent for one cancellation.
// RefundOverride, when non-nil, replaces the safe-cancel evaluation.
// ChargeFee debits the snapshot late-cancel fee from the member's credits.
// RequestedBy, when non-zero, restricts the cancellation to that
// member's own bookings.
type CancelOptions struct {
	IsStaff        bool
	RefundOverride *bool
	ChargeFee      bool
	RequestedBy    int
	Now            time.Time
}

type BookResult struct {
	Success     bool        `json:"success"`
	Status      Status      `json:"status,omitempty"`
	BookingType BookingType `json:"booking_type,omitempty"`
	CostUsed    int         `json:"cost_used"`
	Recovered   bool        `json:"recovered"`
	Error       string      `json:"error,omitempty"`
}

type CancelResult struct {
	Success      bool   `json:"success"`
	Refunded     bool   `json:"refunded"`
	RefundAmount int    `json:"refund_amount"`
	LateCancel   bool   `json:"late_cancel"`
	FeeApplied   int    `json:"fee_applied"`
	Promoted     int    `json:"promoted"`
	Error        string `json:"error,omitempty"`
}

type WaitlistResult struct {
	Success  bool   `json:"success"`
	Promoted int    `json:"promoted"`
	Error    string `json:"error,omitempty"`
}
