package membership

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreatePlan(ctx context.Context, gymID int, name string, weeklyLimit *int, public bool, priceCents int64) (*Plan, error) {
	plan := &Plan{}
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO membership_plans (gym_id, name, weekly_limit, public, price_cents)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, gym_id, name, weekly_limit, public, price_cents, created_at
	`, gymID, name, weeklyLimit, public, priceCents).StructScan(plan)

	return plan, err
}

func (r *Repository) GetPlan(ctx context.Context, id int) (*Plan, error) {
	plan := &Plan{}
	err := r.db.GetContext(ctx, plan, `
		SELECT id, gym_id, name, weekly_limit, public, price_cents, created_at
		FROM membership_plans
		WHERE id = $1
	`, id)

	return plan, err
}

func (r *Repository) ListPublicPlans(ctx context.Context, gymID int) ([]Plan, error) {
	plans := []Plan{}
	err := r.db.SelectContext(ctx, &plans, `
		SELECT id, gym_id, name, weekly_limit, public, price_cents, created_at
		FROM membership_plans
		WHERE gym_id = $1 AND public = TRUE
		ORDER BY price_cents ASC
	`, gymID)

	return plans, err
}

func (r *Repository) ListUserMemberships(ctx context.Context, userID, gymID int) ([]UserMembership, error) {
	memberships := []UserMembership{}
	err := r.db.SelectContext(ctx, &memberships, `
		SELECT id, user_id, gym_id, plan_id, status, created_at
		FROM user_memberships
		WHERE user_id = $1 AND gym_id = $2
		ORDER BY created_at DESC
	`, userID, gymID)

	return memberships, err
}

func (r *Repository) AssignMembership(ctx context.Context, userID, gymID, planID int, status string) (*UserMembership, error) {
	m := &UserMembership{}
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO user_memberships (user_id, gym_id, plan_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, gym_id, plan_id, status, created_at
	`, userID, gymID, planID, status).StructScan(m)

	return m, err
}
