package booking

import (
	"context"
	"time"

	"matbook/internal/credit"
	"matbook/internal/gym"
	"matbook/internal/membership"
	"matbook/internal/user"
)

// Store is the persistence seam for the booking engine. WithTx runs fn
// against a transaction-scoped Store: reads inside fn see a consistent
// snapshot and every write commits atomically or not at all. The
// ForUpdate reads take row locks and are only valid inside WithTx.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error

	GetGym(ctx context.Context, id int) (*gym.Gym, error)
	GetClass(ctx context.Context, id int) (*gym.Class, error)
	GetClassForUpdate(ctx context.Context, id int) (*gym.Class, error)
	GetUser(ctx context.Context, id int) (*user.User, error)
	GetUserForUpdate(ctx context.Context, id int) (*user.User, error)
	ListUserMemberships(ctx context.Context, userID, gymID int) ([]membership.UserMembership, error)
	GetPlan(ctx context.Context, id int) (*membership.Plan, error)
	ListPublicPlans(ctx context.Context, gymID int) ([]membership.Plan, error)

	GetAttendanceByID(ctx context.Context, id int) (*Attendance, error)
	// GetAttendanceForKey returns nil, nil when no record exists for the
	// deterministic (classID, dateStr, userID) identity.
	GetAttendanceForKey(ctx context.Context, classID int, dateStr string, userID int) (*Attendance, error)
	UpsertAttendance(ctx context.Context, rec *Attendance) (*Attendance, error)
	MarkCancelled(ctx context.Context, id int, at time.Time, refunded bool, refundAmount int, lateCancel bool, feeApplied int) error
	MarkAttended(ctx context.Context, id int, at time.Time) error
	PromoteToBooked(ctx context.Context, id int, at time.Time) error

	CountActive(ctx context.Context, classID int, dateStr string) (int, error)
	ListWaitlisted(ctx context.Context, classID int, dateStr string) ([]Attendance, error)

	ApplyCredits(ctx context.Context, userID, amount int, entryType credit.EntryType, description, createdBy string, force bool) error
	RecordProgression(ctx context.Context, userID, programID int) error
	ReverseProgression(ctx context.Context, userID, programID int) error

	CountWeeklyUsage(ctx context.Context, userID int, weekStart, weekEnd string) (int, error)
	GetRoster(ctx context.Context, classID int, dateStr string) ([]RosterEntry, error)
	ListMemberHistory(ctx context.Context, userID, limit, offset int) ([]Attendance, error)
	GetAttendanceCountsByDay(ctx context.Context, gymID int, from, to string) ([]DayCount, error)
}
