package gym

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const classColumns = `id, gym_id, name, start_time, duration_minutes, weekdays, start_date, max_capacity,
		credit_cost, drop_in_enabled, allowed_plan_ids, booking_window_days, late_booking_minutes,
		cancel_window_hours, late_cancel_fee, cancelled_dates, recurrence_end_date, program_id, created_at`

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateGym(ctx context.Context, name, location, timezone string) (*Gym, error) {
	if timezone == "" {
		timezone = "UTC"
	}

	g := &Gym{}
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO gyms (name, location, timezone)
		VALUES ($1, $2, $3)
		RETURNING id, name, location, timezone, created_at
	`, name, location, timezone).StructScan(g)

	return g, err
}

func (r *Repository) GetGymByID(ctx context.Context, id int) (*Gym, error) {
	g := &Gym{}
	err := r.db.GetContext(ctx, g, `
		SELECT id, name, location, timezone, created_at
		FROM gyms
		WHERE id = $1
	`, id)

	return g, err
}

func (r *Repository) GetAllGyms(ctx context.Context) ([]Gym, error) {
	gyms := []Gym{}
	err := r.db.SelectContext(ctx, &gyms, `
		SELECT id, name, location, timezone, created_at
		FROM gyms
		ORDER BY name ASC
	`)

	return gyms, err
}

func (r *Repository) CreateClass(ctx context.Context, gymID int, req CreateClassRequest) (*Class, error) {
	class := &Class{}
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO classes (
			gym_id, name, start_time, duration_minutes, weekdays, start_date, max_capacity,
			credit_cost, drop_in_enabled, allowed_plan_ids, booking_window_days,
			late_booking_minutes, cancel_window_hours, late_cancel_fee, recurrence_end_date, program_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING `+classColumns+`
	`,
		gymID, req.Name, req.StartTime, req.DurationMinutes,
		pq.StringArray(req.Weekdays), req.StartDate, req.MaxCapacity,
		req.CreditCost, req.DropInEnabled, pq.Int64Array(req.AllowedPlanIDs),
		req.BookingWindowDays, req.LateBookingMinutes, req.CancelWindowHours,
		req.LateCancelFee, req.RecurrenceEndDate, req.ProgramID,
	).StructScan(class)

	return class, err
}

func (r *Repository) GetClassByID(ctx context.Context, id int) (*Class, error) {
	class := &Class{}
	err := r.db.GetContext(ctx, class, `
		SELECT `+classColumns+`
		FROM classes
		WHERE id = $1
	`, id)

	return class, err
}

func (r *Repository) ListClassesByGym(ctx context.Context, gymID int) ([]Class, error) {
	classes := []Class{}
	err := r.db.SelectContext(ctx, &classes, `
		SELECT `+classColumns+`
		FROM classes
		WHERE gym_id = $1
		ORDER BY start_time ASC, name ASC
	`, gymID)

	return classes, err
}

// CountBookedOn counts seats taken for one class occurrence. Waitlisted
// and cancelled records do not hold a seat.
func (r *Repository) CountBookedOn(ctx context.Context, classID int, dateStr string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*)
		FROM attendance
		WHERE class_id = $1 AND class_date = $2 AND status IN ('booked', 'attended')
	`, classID, dateStr)
	return count, err
}

// CancelDate strikes a single occurrence date from the recurrence.
func (r *Repository) CancelDate(ctx context.Context, classID int, dateStr string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE classes
		SET cancelled_dates = array_append(cancelled_dates, $2)
		WHERE id = $1 AND NOT ($2 = ANY(cancelled_dates))
	`, classID, dateStr)
	return err
}
