package membership

import "time"

// Plan is a membership tier owned by a gym. WeeklyLimit caps how many
// classes a week the plan entitles a member to; nil or zero means unlimited.
type Plan struct {
	ID          int       `db:"id" json:"id"`
	GymID       int       `db:"gym_id" json:"gym_id"`
	Name        string    `db:"name" json:"name"`
	WeeklyLimit *int      `db:"weekly_limit" json:"weekly_limit,omitempty"`
	Public      bool      `db:"public" json:"public"`
	PriceCents  int64     `db:"price_cents" json:"price_cents"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// UserMembership links a member to a plan. Status comes from the billing
// system and is matched case-insensitively against active/trialing.
type UserMembership struct {
	ID        int       `db:"id" json:"id"`
	UserID    int       `db:"user_id" json:"user_id"`
	GymID     int       `db:"gym_id" json:"gym_id"`
	PlanID    int       `db:"plan_id" json:"plan_id"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type CreatePlanRequest struct {
	Name        string `json:"name" binding:"required"`
	WeeklyLimit *int   `json:"weekly_limit,omitempty"`
	Public      bool   `json:"public"`
	PriceCents  int64  `json:"price_cents" binding:"gte=0"`
}
