package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"matbook/internal/credit"
	"matbook/internal/gym"
	"matbook/internal/membership"
	"matbook/internal/program"
	"matbook/internal/user"
)

const attendanceColumns = `id, gym_id, class_id, class_date, user_id, status, booking_type, cost_used,
		snapshot_booking_window_days, snapshot_late_booking_minutes, snapshot_cancel_window_hours, snapshot_late_cancel_fee,
		booked_at, checked_in_at, cancelled_at, refunded, refund_amount, late_cancel, late_cancel_fee_applied,
		promoted_at, created_at, updated_at`

const userColumns = `id, gym_id, name, email, password_hash, role, status, class_credits, attendance_count, converted_at, created_at`

const classColumns = `id, gym_id, name, start_time, duration_minutes, weekdays, start_date, max_capacity,
		credit_cost, drop_in_enabled, allowed_plan_ids, booking_window_days, late_booking_minutes,
		cancel_window_hours, late_cancel_fee, cancelled_dates, recurrence_end_date, program_id, created_at`

var errNotInTransaction = errors.New("operation requires a transaction")

// repository implements Store over sqlx. A nil tx reads through the pool;
// WithTx yields a tx-bound copy so the whole booking pipeline shares one
// database transaction.
type repository struct {
	db *sqlx.DB
	tx *sqlx.Tx
}

func NewRepository(db *sqlx.DB) Store {
	return &repository{db: db}
}

func (r *repository) ext() sqlx.ExtContext {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *repository) WithTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error {
	if r.tx != nil {
		// Already transactional; nest by reusing the same tx.
		return fn(ctx, r)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(ctx, &repository{db: r.db, tx: tx}); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repository) GetGym(ctx context.Context, id int) (*gym.Gym, error) {
	g := &gym.Gym{}
	err := sqlx.GetContext(ctx, r.ext(), g, `
		SELECT id, name, location, timezone, created_at FROM gyms WHERE id = $1
	`, id)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (r *repository) GetClass(ctx context.Context, id int) (*gym.Class, error) {
	class := &gym.Class{}
	err := sqlx.GetContext(ctx, r.ext(), class, `
		SELECT `+classColumns+` FROM classes WHERE id = $1
	`, id)
	if err != nil {
		return nil, err
	}
	return class, nil
}

// GetClassForUpdate locks the class row. This is the serialize point for
// concurrent bookings against the same instance: two attempts for the
// last open seat queue on this lock, and the second observes the first
// one's roster write.
func (r *repository) GetClassForUpdate(ctx context.Context, id int) (*gym.Class, error) {
	if r.tx == nil {
		return nil, errNotInTransaction
	}

	class := &gym.Class{}
	err := sqlx.GetContext(ctx, r.tx, class, `
		SELECT `+classColumns+` FROM classes WHERE id = $1 FOR UPDATE
	`, id)
	if err != nil {
		return nil, err
	}
	return class, nil
}

func (r *repository) GetUser(ctx context.Context, id int) (*user.User, error) {
	u := &user.User{}
	err := sqlx.GetContext(ctx, r.ext(), u, `
		SELECT `+userColumns+` FROM users WHERE id = $1
	`, id)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repository) GetUserForUpdate(ctx context.Context, id int) (*user.User, error) {
	if r.tx == nil {
		return nil, errNotInTransaction
	}

	u := &user.User{}
	err := sqlx.GetContext(ctx, r.tx, u, `
		SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE
	`, id)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repository) ListUserMemberships(ctx context.Context, userID, gymID int) ([]membership.UserMembership, error) {
	memberships := []membership.UserMembership{}
	err := sqlx.SelectContext(ctx, r.ext(), &memberships, `
		SELECT id, user_id, gym_id, plan_id, status, created_at
		FROM user_memberships
		WHERE user_id = $1 AND gym_id = $2
		ORDER BY created_at DESC
	`, userID, gymID)
	return memberships, err
}

func (r *repository) GetPlan(ctx context.Context, id int) (*membership.Plan, error) {
	plan := &membership.Plan{}
	err := sqlx.GetContext(ctx, r.ext(), plan, `
		SELECT id, gym_id, name, weekly_limit, public, price_cents, created_at
		FROM membership_plans
		WHERE id = $1
	`, id)
	if err != nil {
		return nil, err
	}
	return plan, nil
}

func (r *repository) ListPublicPlans(ctx context.Context, gymID int) ([]membership.Plan, error) {
	plans := []membership.Plan{}
	err := sqlx.SelectContext(ctx, r.ext(), &plans, `
		SELECT id, gym_id, name, weekly_limit, public, price_cents, created_at
		FROM membership_plans
		WHERE gym_id = $1 AND public = TRUE
		ORDER BY price_cents ASC
	`, gymID)
	return plans, err
}

func (r *repository) GetAttendanceByID(ctx context.Context, id int) (*Attendance, error) {
	rec := &Attendance{}
	err := sqlx.GetContext(ctx, r.ext(), rec, `
		SELECT `+attendanceColumns+` FROM attendance WHERE id = $1
	`, id)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *repository) GetAttendanceForKey(ctx context.Context, classID int, dateStr string, userID int) (*Attendance, error) {
	rec := &Attendance{}
	err := sqlx.GetContext(ctx, r.ext(), rec, `
		SELECT `+attendanceColumns+`
		FROM attendance
		WHERE class_id = $1 AND class_date = $2 AND user_id = $3
	`, classID, dateStr, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// UpsertAttendance writes the attendance record for the deterministic
// (class, date, member) identity. A re-book after cancellation reuses the
// row, clearing the cancellation audit fields.
func (r *repository) UpsertAttendance(ctx context.Context, rec *Attendance) (*Attendance, error) {
	saved := &Attendance{}
	err := sqlx.GetContext(ctx, r.ext(), saved, `
		INSERT INTO attendance (
			gym_id, class_id, class_date, user_id, status, booking_type, cost_used,
			snapshot_booking_window_days, snapshot_late_booking_minutes,
			snapshot_cancel_window_hours, snapshot_late_cancel_fee,
			booked_at, checked_in_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (class_id, class_date, user_id) DO UPDATE SET
			status = EXCLUDED.status,
			booking_type = EXCLUDED.booking_type,
			cost_used = EXCLUDED.cost_used,
			snapshot_booking_window_days = EXCLUDED.snapshot_booking_window_days,
			snapshot_late_booking_minutes = EXCLUDED.snapshot_late_booking_minutes,
			snapshot_cancel_window_hours = EXCLUDED.snapshot_cancel_window_hours,
			snapshot_late_cancel_fee = EXCLUDED.snapshot_late_cancel_fee,
			booked_at = EXCLUDED.booked_at,
			checked_in_at = EXCLUDED.checked_in_at,
			cancelled_at = NULL,
			refunded = FALSE,
			refund_amount = 0,
			late_cancel = FALSE,
			late_cancel_fee_applied = 0,
			promoted_at = NULL,
			updated_at = NOW()
		RETURNING `+attendanceColumns,
		rec.GymID, rec.ClassID, rec.ClassDate, rec.UserID, rec.Status, rec.BookingType, rec.CostUsed,
		rec.BookingWindowDays, rec.LateBookingMinutes, rec.CancelWindowHours, rec.LateCancelFee,
		rec.BookedAt, rec.CheckedInAt,
	)
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (r *repository) MarkCancelled(ctx context.Context, id int, at time.Time, refunded bool, refundAmount int, lateCancel bool, feeApplied int) error {
	_, err := r.ext().ExecContext(ctx, `
		UPDATE attendance
		SET status = 'cancelled',
		    cancelled_at = $2,
		    refunded = $3,
		    refund_amount = $4,
		    late_cancel = $5,
		    late_cancel_fee_applied = $6,
		    updated_at = NOW()
		WHERE id = $1
	`, id, at, refunded, refundAmount, lateCancel, feeApplied)
	return err
}

func (r *repository) MarkAttended(ctx context.Context, id int, at time.Time) error {
	_, err := r.ext().ExecContext(ctx, `
		UPDATE attendance
		SET status = 'attended',
		    checked_in_at = $2,
		    updated_at = NOW()
		WHERE id = $1
	`, id, at)
	return err
}

func (r *repository) PromoteToBooked(ctx context.Context, id int, at time.Time) error {
	_, err := r.ext().ExecContext(ctx, `
		UPDATE attendance
		SET status = 'booked',
		    promoted_at = $2,
		    updated_at = NOW()
		WHERE id = $1 AND status = 'waitlisted'
	`, id, at)
	return err
}

func (r *repository) CountActive(ctx context.Context, classID int, dateStr string) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, r.ext(), &count, `
		SELECT COUNT(*)
		FROM attendance
		WHERE class_id = $1 AND class_date = $2 AND status IN ('booked', 'attended')
	`, classID, dateStr)
	return count, err
}

// ListWaitlisted returns the waitlist in promotion order: earliest
// booking first.
func (r *repository) ListWaitlisted(ctx context.Context, classID int, dateStr string) ([]Attendance, error) {
	waiters := []Attendance{}
	err := sqlx.SelectContext(ctx, r.ext(), &waiters, `
		SELECT `+attendanceColumns+`
		FROM attendance
		WHERE class_id = $1 AND class_date = $2 AND status = 'waitlisted'
		ORDER BY booked_at ASC, id ASC
	`, classID, dateStr)
	return waiters, err
}

func (r *repository) ApplyCredits(ctx context.Context, userID, amount int, entryType credit.EntryType, description, createdBy string, force bool) error {
	if r.tx == nil {
		return errNotInTransaction
	}
	return credit.ApplyTx(ctx, r.tx, userID, amount, entryType, description, createdBy, force)
}

func (r *repository) RecordProgression(ctx context.Context, userID, programID int) error {
	if r.tx == nil {
		return errNotInTransaction
	}
	return program.RecordAttendanceTx(ctx, r.tx, userID, programID)
}

func (r *repository) ReverseProgression(ctx context.Context, userID, programID int) error {
	if r.tx == nil {
		return errNotInTransaction
	}
	return program.ReverseAttendanceTx(ctx, r.tx, userID, programID)
}

// CountWeeklyUsage counts bookings consuming the member's weekly
// allotment: booked, attended, and late-cancelled records.
func (r *repository) CountWeeklyUsage(ctx context.Context, userID int, weekStart, weekEnd string) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, r.ext(), &count, `
		SELECT COUNT(*)
		FROM attendance
		WHERE user_id = $1
		  AND class_date BETWEEN $2 AND $3
		  AND (status IN ('booked', 'attended') OR (status = 'cancelled' AND late_cancel))
	`, userID, weekStart, weekEnd)
	return count, err
}

func (r *repository) GetRoster(ctx context.Context, classID int, dateStr string) ([]RosterEntry, error) {
	roster := []RosterEntry{}
	err := sqlx.SelectContext(ctx, r.ext(), &roster, `
		SELECT
			a.id, a.gym_id, a.class_id, a.class_date, a.user_id, a.status, a.booking_type, a.cost_used,
			a.snapshot_booking_window_days, a.snapshot_late_booking_minutes,
			a.snapshot_cancel_window_hours, a.snapshot_late_cancel_fee,
			a.booked_at, a.checked_in_at, a.cancelled_at, a.refunded, a.refund_amount,
			a.late_cancel, a.late_cancel_fee_applied, a.promoted_at, a.created_at, a.updated_at,
			u.name AS user_name,
			u.email AS user_email
		FROM attendance a
		JOIN users u ON a.user_id = u.id
		WHERE a.class_id = $1 AND a.class_date = $2 AND a.status <> 'cancelled'
		ORDER BY a.booked_at ASC
	`, classID, dateStr)
	return roster, err
}

func (r *repository) ListMemberHistory(ctx context.Context, userID, limit, offset int) ([]Attendance, error) {
	if limit <= 0 {
		limit = 50
	}

	history := []Attendance{}
	err := sqlx.SelectContext(ctx, r.ext(), &history, `
		SELECT `+attendanceColumns+`
		FROM attendance
		WHERE user_id = $1
		ORDER BY class_date DESC, booked_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return history, err
}

func (r *repository) GetAttendanceCountsByDay(ctx context.Context, gymID int, from, to string) ([]DayCount, error) {
	counts := []DayCount{}
	err := sqlx.SelectContext(ctx, r.ext(), &counts, `
		SELECT
			class_date AS bucket,
			COUNT(*) FILTER (WHERE status = 'booked')    AS booked,
			COUNT(*) FILTER (WHERE status = 'attended')  AS attended,
			COUNT(*) FILTER (WHERE status = 'cancelled') AS cancelled
		FROM attendance
		WHERE gym_id = $1 AND class_date BETWEEN $2 AND $3
		GROUP BY class_date
		ORDER BY bucket
	`, gymID, from, to)
	return counts, err
}
